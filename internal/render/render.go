package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"scalper/internal/normalize"
	"scalper/internal/scraper"
)

// Options управляет табличным выводом.
type Options struct {
	// MaxCellChars обрезает длинные значения; 0 отключает обрезку.
	MaxCellChars int
}

// ErrorMarker возвращает видимую замену значения для элемента с ошибкой.
func ErrorMarker(err *scraper.ExtractionError) string {
	return fmt.Sprintf("<error: %s>", err.Error())
}

// Display возвращает то, что видит пользователь: текст, исходный текст числа или маркер ошибки.
func Display(item scraper.ResultItem) string {
	if !item.OK() {
		return ErrorMarker(item.Err)
	}
	return item.Value.String()
}

// Table пишет двухколоночную таблицу Name | Value. Строки с ошибками не пропускаются.
func Table(w io.Writer, items []scraper.ResultItem, opts Options) error {
	re := lipgloss.NewRenderer(w)

	headerStyle := re.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := re.NewStyle().Padding(0, 1)
	errorStyle := cellStyle.Foreground(lipgloss.Color("#F38BA8"))

	failed := make([]bool, len(items))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(re.NewStyle().Foreground(lipgloss.Color("#45475A"))).
		Headers("Name", "Value")

	for i, item := range items {
		failed[i] = !item.OK()
		t.Row(
			normalize.Truncate(item.Name, opts.MaxCellChars),
			normalize.Truncate(Display(item), opts.MaxCellChars),
		)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row >= 0 && row < len(failed) && failed[row] && col == 1:
			return errorStyle
		default:
			return cellStyle
		}
	})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

type jsonItem struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Error string `json:"error,omitempty"`
}

// JSON пишет массив {name, value[, error]} в порядке результата.
// Числа выводятся числами, текст строкой, у ошибок в value пишется маркер ошибки.
func JSON(w io.Writer, items []scraper.ResultItem) error {
	out := make([]jsonItem, 0, len(items))
	for _, item := range items {
		if !item.OK() {
			out = append(out, jsonItem{
				Name:  item.Name,
				Value: ErrorMarker(item.Err),
				Error: item.Err.Error(),
			})
			continue
		}
		out = append(out, jsonItem{Name: item.Name, Value: item.Value})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return nil
}
