package scraper

import (
	"context"

	"scalper/internal/normalize"
	"scalper/internal/observability"
)

// FetchFunc загружает документ по URL. Любая ошибка превращается в FetchFailed.
type FetchFunc func(ctx context.Context, url string) (body []byte, contentType string, err error)

// Extractor извлекает значения всех селекторов одного ресурса.
type Extractor struct {
	fetch  FetchFunc
	parse  ParseFunc
	logger *observability.Logger
}

func NewExtractor(fetch FetchFunc, logger *observability.Logger) *Extractor {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Extractor{
		fetch:  fetch,
		parse:  ParseHTML,
		logger: logger,
	}
}

// WithParser подменяет разбор документа (вычислитель селекторов).
func (e *Extractor) WithParser(parse ParseFunc) *Extractor {
	cp := *e
	cp.parse = parse
	return &cp
}

// Extract возвращает ровно один ResultItem на каждый селектор, в порядке селекторов,
// даже если загрузка или разбор страницы не удались.
func (e *Extractor) Extract(ctx context.Context, res ResolvedResource, selectors []SelectorSpec) []ResultItem {
	items := make([]ResultItem, len(selectors))
	for i, s := range selectors {
		items[i] = ResultItem{
			SourceIndex:   res.SourceIndex,
			ParamIndex:    res.ParamIndex,
			SelectorIndex: i,
			URL:           res.URL,
			Name:          s.Name,
		}
	}

	if len(items) == 0 {
		return items
	}

	body, contentType, err := e.fetch(ctx, res.URL)
	if err != nil {
		e.logger.Warn("Fetch failed",
			"url", res.URL,
			"source", res.SourceIndex,
			"error", err,
		)
		return failAll(items, newExtractionError(FetchFailed, err.Error()))
	}

	doc, err := e.parse(body, contentType)
	if err != nil {
		e.logger.Warn("Malformed document",
			"url", res.URL,
			"content_type", contentType,
			"error", err,
		)
		return failAll(items, newExtractionError(MalformedDocument, err.Error()))
	}

	for i, s := range selectors {
		text, found := doc.Select(s.Selector)
		if !found {
			items[i].Err = newExtractionError(SelectorNotFound, s.Selector)
			e.logger.Debug("Selector not found",
				"url", res.URL,
				"name", s.Name,
				"selector", s.Selector,
			)
			continue
		}
		items[i].Value = normalize.Normalize(text)
	}

	return items
}

func failAll(items []ResultItem, cause *ExtractionError) []ResultItem {
	for i := range items {
		items[i].Err = &ExtractionError{Kind: cause.Kind, Reason: cause.Reason}
	}
	return items
}
