package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Row содержит поля выгружаемой строки, от которых зависит хеш.
type Row struct {
	URL   string
	Name  string
	Kind  string // text | number | error
	Value string
	Error string
}

// GenerateRowHash генерирует SHA256 хеш строки результата
// Формула: SHA256(url|name|kind|value|error)
func (g *Generator) GenerateRowHash(row Row) string {
	content := strings.Join([]string{row.URL, row.Name, row.Kind, row.Value, row.Error}, "|")

	hash := sha256.Sum256([]byte(content))

	return fmt.Sprintf("%x", hash)
}

// VerifyRowHash проверяет соответствие хеша
func (g *Generator) VerifyRowHash(expectedHash string, row Row) bool {
	return g.GenerateRowHash(row) == expectedHash
}
