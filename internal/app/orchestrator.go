package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"scalper/internal/config"
	"scalper/internal/observability"
	"scalper/internal/scraper"
)

// ErrAllItemsFailed означает, что ни один элемент запуска не извлечён.
var ErrAllItemsFailed = errors.New("all items failed")

type Orchestrator struct {
	cfg       *config.Config
	logger    *observability.Logger
	extractor *scraper.Extractor
}

func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	extractor *scraper.Extractor,
) *Orchestrator {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Orchestrator{
		cfg:       cfg,
		logger:    logger,
		extractor: extractor,
	}
}

type RunStats struct {
	Resources int
	Items     int
	Failed    int
	Elapsed   time.Duration
}

// AllFailed истинно, только если были элементы и все они с ошибкой.
func (s RunStats) AllFailed() bool {
	return s.Items > 0 && s.Failed == s.Items
}

func Summarize(items []scraper.ResultItem) RunStats {
	stats := RunStats{Items: len(items)}
	for _, item := range items {
		if !item.OK() {
			stats.Failed++
		}
	}
	return stats
}

// Run разворачивает ресурсы, параллельно запускает извлечение и собирает результат
// в порядке ресурс → параметр → селектор независимо от порядка завершения.
// Ошибка возвращается только для конфигурации (до любого запроса) и при прерывании.
func (o *Orchestrator) Run(ctx context.Context, conf *scraper.Configuration, params scraper.Params) ([]scraper.ResultItem, RunStats, error) {
	if err := config.ValidateResources(conf); err != nil {
		return nil, RunStats{}, err
	}

	resolved, err := scraper.Resolve(conf.Resources, params)
	if err != nil {
		return nil, RunStats{}, err
	}

	return o.extractAll(ctx, conf, resolved)
}

func (o *Orchestrator) extractAll(ctx context.Context, conf *scraper.Configuration, resolved []scraper.ResolvedResource) ([]scraper.ResultItem, RunStats, error) {
	start := time.Now()

	o.logger.Info("Starting batch",
		"config", conf.Name,
		"resources", len(conf.Resources),
		"resolved", len(resolved),
		"concurrency", o.cfg.Batch.Concurrency,
	)

	runCtx := ctx
	if deadline := o.cfg.GetBatchDeadline(); deadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	// каждая горутина пишет только в свой слот
	slots := make([][]scraper.ResultItem, len(resolved))

	var g errgroup.Group
	g.SetLimit(o.cfg.Batch.Concurrency)
	for i, res := range resolved {
		selectors := conf.Resources[res.SourceIndex].Selectors
		g.Go(func() error {
			slots[i] = o.extractor.Extract(runCtx, res, selectors)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		o.logger.Warn("Batch interrupted", "error", err)
		return nil, RunStats{}, fmt.Errorf("batch interrupted: %w", err)
	}

	items := make([]scraper.ResultItem, 0, len(resolved))
	for _, slot := range slots {
		items = append(items, slot...)
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Less(items[b])
	})

	stats := Summarize(items)
	stats.Resources = len(resolved)
	stats.Elapsed = time.Since(start)

	o.logger.Info("Batch completed",
		"config", conf.Name,
		"resolved", stats.Resources,
		"items", stats.Items,
		"failed", stats.Failed,
		"elapsed_ms", stats.Elapsed.Milliseconds(),
	)

	return items, stats, nil
}

// Grab запускает один селектор на одном URL. URL берётся как есть: %% в нём не плейсхолдер.
func (o *Orchestrator) Grab(ctx context.Context, rawURL, selector string) (scraper.ResultItem, error) {
	if err := validateGrabURL(rawURL); err != nil {
		return scraper.ResultItem{}, scraper.NewConfigError(0, scraper.ErrInvalidResource, err.Error())
	}
	if err := scraper.ValidateSelector(selector); err != nil {
		return scraper.ResultItem{}, scraper.NewConfigError(0, scraper.ErrInvalidSelector, fmt.Sprintf("%q", selector))
	}

	conf := &scraper.Configuration{
		Resources: []scraper.ResourceSpec{{
			URL:       rawURL,
			Selectors: []scraper.SelectorSpec{{Name: selector, Selector: selector}},
		}},
	}

	items, _, err := o.extractAll(ctx, conf, []scraper.ResolvedResource{{URL: rawURL}})
	if err != nil {
		return scraper.ResultItem{}, err
	}
	if len(items) != 1 {
		return scraper.ResultItem{}, fmt.Errorf("grab produced %d items, expected 1", len(items))
	}
	return items[0], nil
}

func validateGrabURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", rawURL)
	}
	return nil
}
