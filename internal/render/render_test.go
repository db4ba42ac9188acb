package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper/internal/normalize"
	"scalper/internal/scraper"
)

func sampleItems() []scraper.ResultItem {
	return []scraper.ResultItem{
		{Name: "Title", Value: normalize.Text("Example Domain")},
		{Name: "Downloads", SelectorIndex: 1, Value: normalize.Number(2519.25e9, "2,519.25B")},
		{Name: "Missing", SelectorIndex: 2, Err: &scraper.ExtractionError{Kind: scraper.SelectorNotFound, Reason: "h2"}},
	}
}

func TestDisplay(t *testing.T) {
	items := sampleItems()
	assert.Equal(t, "Example Domain", Display(items[0]))
	assert.Equal(t, "2,519.25B", Display(items[1]))
	assert.Equal(t, "<error: selector not found: h2>", Display(items[2]))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, sampleItems(), Options{}))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// рамка, заголовок, разделитель, три строки, рамка
	require.Len(t, lines, 7)
	assert.Contains(t, lines[1], "Name")
	assert.Contains(t, lines[1], "Value")
	assert.Contains(t, lines[3], "Title")
	assert.Contains(t, lines[3], "Example Domain")
	assert.Contains(t, lines[4], "2,519.25B")
	assert.Contains(t, lines[5], "Missing")
	assert.Contains(t, lines[5], "<error: selector not found: h2>")
}

func TestTableTruncates(t *testing.T) {
	items := []scraper.ResultItem{
		{Name: "Body", Value: normalize.Text("the quick brown fox jumps over the lazy dog")},
	}

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, items, Options{MaxCellChars: 16}))
	assert.Contains(t, buf.String(), "the quick…")
	assert.NotContains(t, buf.String(), "brown")
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, nil, Options{}))
	assert.Contains(t, buf.String(), "Name")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleItems()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)

	assert.Equal(t, map[string]any{"name": "Title", "value": "Example Domain"}, got[0])
	assert.Equal(t, map[string]any{"name": "Downloads", "value": 2519.25e9}, got[1])
	assert.Equal(t, map[string]any{
		"name":  "Missing",
		"value": "<error: selector not found: h2>",
		"error": "selector not found: h2",
	}, got[2])

	assert.Contains(t, buf.String(), `"value": 2519250000000`)
}

func TestJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
