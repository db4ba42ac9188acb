package scraper

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"scalper/internal/normalize"
)

// Document представляет разобранную страницу, по которой вычисляются селекторы.
type Document interface {
	// Select возвращает текст первого совпадения или false, если совпадений нет.
	Select(selector string) (string, bool)
}

// ParseFunc превращает тело ответа в Document.
type ParseFunc func(body []byte, contentType string) (Document, error)

type HTMLDocument struct {
	doc *goquery.Document
}

var htmlMediaTypes = map[string]bool{
	"text/html":             true,
	"application/xhtml+xml": true,
	"text/plain":            true,
}

// ParseHTML разбирает тело ответа. Пустой Content-Type считается HTML.
func ParseHTML(body []byte, contentType string) (Document, error) {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, fmt.Errorf("invalid content type %q: %w", contentType, err)
		}
		if !htmlMediaTypes[mediaType] {
			return nil, fmt.Errorf("unsupported content type: %s", mediaType)
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &HTMLDocument{doc: doc}, nil
}

func (d *HTMLDocument) Select(selector string) (string, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}

	if text := nodeText(sel.Get(0)); text != "" {
		return text, true
	}
	// Пустой текст: пробуем атрибуты (meta content, ссылки, картинки)
	for _, attr := range []string{"content", "value", "href", "src"} {
		if v, exists := sel.Attr(attr); exists && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", true
}

// nodeText собирает текстовые узлы элемента, каждый без лишних пробелов, через один пробел.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := normalize.CollapseSpaces(n.Data); t != "" {
				parts = append(parts, t)
			}
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// ValidateSelector проверяет синтаксис CSS-селектора.
func ValidateSelector(selector string) error {
	if strings.TrimSpace(selector) == "" {
		return fmt.Errorf("%w: empty selector", ErrInvalidSelector)
	}
	if _, err := cascadia.Compile(selector); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSelector, selector, err)
	}
	return nil
}
