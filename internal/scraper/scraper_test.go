package scraper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examplePage = `<!doctype html>
<html>
<head>
	<title>Example Domain</title>
	<meta property="og:title" content="  Example OG  ">
	<style>h1 { color: red }</style>
</head>
<body>
	<div>
		<h1>
			Example Domain
		</h1>
		<p class="price">$1,299.99</p>
		<p class="mixed">Hello <b>World</b><script>var x = 1;</script></p>
		<span class="empty"></span>
		<ul><li>first</li><li>second</li></ul>
	</div>
</body>
</html>`

func TestHTMLDocumentSelect(t *testing.T) {
	doc, err := ParseHTML([]byte(examplePage), "text/html; charset=utf-8")
	require.NoError(t, err)

	tests := []struct {
		selector string
		want     string
		found    bool
	}{
		{"h1", "Example Domain", true},
		{"body > div > h1", "Example Domain", true},
		{"p.price", "$1,299.99", true},
		{"p.mixed", "Hello World", true},
		{"ul > li", "first", true},
		{"meta[property='og:title']", "Example OG", true},
		{"span.empty", "", true},
		{"h2", "", false},
		{"body > div > h2", "", false},
	}

	for _, tt := range tests {
		got, found := doc.Select(tt.selector)
		assert.Equal(t, tt.found, found, tt.selector)
		assert.Equal(t, tt.want, got, tt.selector)
	}
}

func TestParseHTMLContentTypes(t *testing.T) {
	accepted := []string{"", "text/html", "TEXT/HTML; charset=windows-1251", "application/xhtml+xml", "text/plain"}
	for _, ct := range accepted {
		_, err := ParseHTML([]byte("<p>x</p>"), ct)
		assert.NoError(t, err, ct)
	}

	rejected := []string{"application/json", "image/png", "not a media type;;"}
	for _, ct := range rejected {
		_, err := ParseHTML([]byte("{}"), ct)
		assert.Error(t, err, ct)
	}
}

func TestValidateSelector(t *testing.T) {
	assert.NoError(t, ValidateSelector("body > div > h1"))
	assert.NoError(t, ValidateSelector("#search > div:nth-child(2) a[href]"))

	for _, bad := range []string{"", "   ", "div >", "[[", "p:unknown-pseudo"} {
		err := ValidateSelector(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, ErrInvalidSelector), bad)
	}
}
