package scraper

import (
	"strings"
)

type paramsMode int

const (
	modeNone paramsMode = iota
	modeOne
	modeList
)

// Params описывает, чем заполнять плейсхолдер: ничем, одним общим значением или списком.
type Params struct {
	mode   paramsMode
	values []string
}

func NoParams() Params {
	return Params{mode: modeNone}
}

func OneParam(p string) Params {
	return Params{mode: modeOne, values: []string{p}}
}

func ListParams(ps ...string) Params {
	return Params{mode: modeList, values: append([]string(nil), ps...)}
}

func (p Params) templateValues() []string {
	switch p.mode {
	case modeOne:
		return p.values[:1]
	case modeList:
		return p.values
	default:
		return nil
	}
}

// Resolve раскрывает шаблоны URL: ресурсы во внешнем цикле, параметры во внутреннем.
// Шаблоны без плейсхолдера раскрываются ровно один раз, сколько бы параметров ни передали.
func Resolve(resources []ResourceSpec, params Params) ([]ResolvedResource, error) {
	if len(resources) == 0 {
		return nil, NewConfigError(-1, ErrEmptyConfiguration, "")
	}

	values := params.templateValues()
	resolved := make([]ResolvedResource, 0, len(resources))

	for i, res := range resources {
		if !res.HasPlaceholder() {
			resolved = append(resolved, ResolvedResource{URL: res.URL, SourceIndex: i})
			continue
		}
		if len(values) == 0 {
			return nil, NewConfigError(i, ErrMissingParameter, res.URL)
		}
		for j, v := range values {
			resolved = append(resolved, ResolvedResource{
				URL:         strings.ReplaceAll(res.URL, Placeholder, v),
				SourceIndex: i,
				ParamIndex:  j,
			})
		}
	}

	return resolved, nil
}
