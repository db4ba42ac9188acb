package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"scalper/internal/checksum"
	"scalper/internal/config"
	"scalper/internal/observability"
	"scalper/internal/scraper"
)

// Run идентифицирует один запуск batch при выгрузке.
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	ConfigName string
}

func NewRun(configName string, startedAt time.Time) Run {
	return Run{
		ID:         uuid.New(),
		StartedAt:  startedAt.UTC(),
		ConfigName: configName,
	}
}

// ResultRow представляет один ResultItem для сохранения в БД
type ResultRow struct {
	RunID         string
	StartedAt     time.Time
	ConfigName    string
	URL           string
	SourceIndex   int
	ParamIndex    int
	SelectorIndex int
	Name          string
	Kind          string // text | number | error
	Text          string
	Number        sql.NullFloat64
	Error         string
	CheckSum      string // SHA256 строки (64 символа hex)
}

// BuildRows превращает результат запуска в строки выгрузки, сохраняя порядок.
func BuildRows(run Run, items []scraper.ResultItem) []ResultRow {
	gen := checksum.NewGenerator()
	rows := make([]ResultRow, 0, len(items))

	for _, item := range items {
		row := ResultRow{
			RunID:         run.ID.String(),
			StartedAt:     run.StartedAt,
			ConfigName:    run.ConfigName,
			URL:           item.URL,
			SourceIndex:   item.SourceIndex,
			ParamIndex:    item.ParamIndex,
			SelectorIndex: item.SelectorIndex,
			Name:          item.Name,
		}

		switch {
		case !item.OK():
			row.Kind = "error"
			row.Error = item.Err.Error()
		default:
			row.Kind = item.Value.Kind.String()
			row.Text = item.Value.Raw
			if item.Value.IsNumber() {
				row.Number = sql.NullFloat64{Float64: item.Value.Number, Valid: true}
			}
		}

		row.CheckSum = gen.GenerateRowHash(checksum.Row{
			URL:   row.URL,
			Name:  row.Name,
			Kind:  row.Kind,
			Value: row.Text,
			Error: row.Error,
		})
		rows = append(rows, row)
	}

	return rows
}

// Repository интерфейс для выгрузки результатов
type Repository interface {
	// EnsureSchema создаёт таблицу результатов, если её нет
	EnsureSchema(ctx context.Context) error

	// SaveResults сохраняет строки одного запуска в одной транзакции, возвращает число вставленных
	SaveResults(ctx context.Context, rows []ResultRow) (int, error)

	// CountRun получает количество строк, сохранённых для запуска
	CountRun(ctx context.Context, runID string) (int, error)

	Close() error
}

// OpenFunc открывает репозиторий конкретного драйвера.
type OpenFunc func(ctx context.Context, cfg config.StorageConfig, logger *observability.Logger) (Repository, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]OpenFunc{}
)

// Register вызывается из init() пакетов-драйверов.
func Register(driver string, open OpenFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[driver]; dup {
		panic(fmt.Sprintf("storage: driver %q registered twice", driver))
	}
	registry[driver] = open
}

// Open открывает репозиторий по storage.driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *observability.Logger) (Repository, error) {
	registryMu.RLock()
	open, ok := registry[cfg.Driver]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown storage driver %q (registered: %v)", cfg.Driver, Drivers())
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return open(ctx, cfg, logger)
}

func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
