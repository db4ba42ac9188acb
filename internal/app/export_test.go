package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper/internal/config"
	"scalper/internal/normalize"
	"scalper/internal/scraper"
	"scalper/internal/storage"
	_ "scalper/internal/storage/sqlite"
)

func TestExportToSQLite(t *testing.T) {
	cfg := config.Defaults().Storage
	cfg.DSN = filepath.Join(t.TempDir(), "results.db")

	items := []scraper.ResultItem{
		{URL: "https://a.test", Name: "Title", Value: normalize.Text("A")},
		{URL: "https://a.test", Name: "Price", SelectorIndex: 1, Value: normalize.Number(3, "3")},
	}
	run := storage.NewRun("demo", time.Now())

	saved, err := Export(context.Background(), cfg, nil, run, items)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	// второй запуск дописывает в ту же таблицу
	saved, err = Export(context.Background(), cfg, nil, storage.NewRun("demo", time.Now()), items)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	repo, err := storage.Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()

	count, err := repo.CountRun(context.Background(), run.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestExportUnknownDriver(t *testing.T) {
	cfg := config.Defaults().Storage
	cfg.Driver = "oracle"

	_, err := Export(context.Background(), cfg, nil, storage.NewRun("demo", time.Now()), nil)
	assert.ErrorContains(t, err, "failed to open oracle storage")
}
