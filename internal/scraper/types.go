package scraper

import (
	"strings"

	"scalper/internal/normalize"
)

// Placeholder подставляется в шаблон URL значением параметра.
const Placeholder = "%%"

// SelectorSpec описывает именованный CSS-селектор.
type SelectorSpec struct {
	Name     string `toml:"name" json:"name" yaml:"name"`
	Selector string `toml:"selector" json:"selector" yaml:"selector"`
}

// ResourceSpec хранит шаблон URL и упорядоченный список селекторов.
type ResourceSpec struct {
	URL       string         `toml:"url" json:"url" yaml:"url"`
	Selectors []SelectorSpec `toml:"selectors" json:"selectors" yaml:"selectors"`
}

func (r ResourceSpec) HasPlaceholder() bool {
	return strings.Contains(r.URL, Placeholder)
}

// Configuration загружается один раз за запуск и дальше не меняется.
type Configuration struct {
	Name        string         `toml:"name,omitempty" json:"name,omitempty" yaml:"name,omitempty"`
	Description string         `toml:"description,omitempty" json:"description,omitempty" yaml:"description,omitempty"`
	Resources   []ResourceSpec `toml:"resources" json:"resources" yaml:"resources"`
}

// NeedsParameters сообщает, есть ли хотя бы один шаблон с плейсхолдером.
func (c Configuration) NeedsParameters() bool {
	for _, r := range c.Resources {
		if r.HasPlaceholder() {
			return true
		}
	}
	return false
}

// ResolvedResource хранит конкретный URL для одного прохода извлечения.
type ResolvedResource struct {
	URL         string
	SourceIndex int
	ParamIndex  int
}

// ResultItem хранит результат одного селектора для одного ресурса. Значимо ровно одно из Value/Err.
type ResultItem struct {
	SourceIndex   int
	ParamIndex    int
	SelectorIndex int
	URL           string
	Name          string
	Value         normalize.Value
	Err           *ExtractionError
}

func (r ResultItem) OK() bool {
	return r.Err == nil
}

// Less задаёт порядок вывода: ресурс → параметр → селектор.
func (r ResultItem) Less(other ResultItem) bool {
	if r.SourceIndex != other.SourceIndex {
		return r.SourceIndex < other.SourceIndex
	}
	if r.ParamIndex != other.ParamIndex {
		return r.ParamIndex < other.ParamIndex
	}
	return r.SelectorIndex < other.SelectorIndex
}
