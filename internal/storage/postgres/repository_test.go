package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper/internal/storage"
)

func TestCopyRowMatchesColumns(t *testing.T) {
	row := storage.ResultRow{
		RunID:     "0b6f3c1e-8f7a-4a53-9d2a-3d8c1f2e4b5a",
		StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Name:      "Price",
		Kind:      "number",
		Text:      "$1.5k",
		Number:    sql.NullFloat64{Float64: 1500, Valid: true},
	}

	values := copyRow(row)
	require.Len(t, values, len(columns))

	number, ok := values[10].(*float64)
	require.True(t, ok)
	require.NotNil(t, number)
	assert.Equal(t, 1500.0, *number)

	row.Number = sql.NullFloat64{}
	assert.Nil(t, copyRow(row)[10])
}

func TestCreateTableSQL(t *testing.T) {
	q := createTableSQL("scalper_results")
	assert.Contains(t, q, "CREATE TABLE IF NOT EXISTS scalper_results")
	assert.Contains(t, q, "CONSTRAINT scalper_results_position UNIQUE")
	for _, col := range columns {
		assert.Contains(t, q, col)
	}
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, storage.Drivers(), "postgres")
}
