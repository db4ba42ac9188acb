package normalize

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

type Kind int

const (
	KindText Kind = iota
	KindNumber
)

func (k Kind) String() string {
	if k == KindNumber {
		return "number"
	}
	return "text"
}

// Value хранит нормализованное значение селектора, текст или число.
// Raw всегда хранит обрезанный исходный текст, чтобы вывести число так, как оно было на странице.
// Decimal: точная десятичная запись числа, Number: ближайший float64.
type Value struct {
	Kind    Kind
	Raw     string
	Number  float64
	Decimal string
}

func Text(s string) Value {
	return Value{Kind: KindText, Raw: s}
}

func Number(n float64, raw string) Value {
	return Value{Kind: KindNumber, Raw: raw, Number: n, Decimal: strconv.FormatFloat(n, 'f', -1, 64)}
}

func (v Value) IsNumber() bool {
	return v.Kind == KindNumber
}

// String возвращает отображаемую форму значения.
func (v Value) String() string {
	return v.Raw
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber {
		return json.Marshal(json.Number(v.Decimal))
	}
	return json.Marshal(v.Raw)
}

var (
	unsignedDecimal = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)
	spaceRun        = regexp.MustCompile(`\s+`)

	magnitudes = map[byte]int64{
		'k': 1_000, 'K': 1_000,
		'm': 1_000_000, 'M': 1_000_000,
		'b': 1_000_000_000, 'B': 1_000_000_000,
	}

	quotePairs = map[rune]rune{
		'"':  '"',
		'\'': '\'',
		'“':  '”',
		'‘':  '’',
		'«':  '»',
		'„':  '“',
	}
)

// Normalize превращает текст совпадения в типизированное значение. Никогда не падает:
// всё, что не разбирается как число, возвращается как Text(обрезанный текст).
func Normalize(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	r, ok := parseNumber(trimmed)
	if !ok {
		return Text(trimmed)
	}
	// число вне диапазона float64 нельзя ни выгрузить, ни сравнить: оставляем текстом
	f, _ := r.Float64()
	if math.IsInf(f, 0) {
		return Text(trimmed)
	}
	return Value{Kind: KindNumber, Raw: trimmed, Number: f, Decimal: decimalString(r)}
}

// decimalString форматирует конечную десятичную дробь без лишних нулей.
func decimalString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	// знаменатель имеет вид 2^a * 5^b, цифр после точки нужно max(a, b)
	return strings.TrimRight(r.FloatString(max(factorCount(r.Denom(), 2), factorCount(r.Denom(), 5))), "0")
}

func factorCount(n *big.Int, p int64) int {
	n = new(big.Int).Set(n)
	bp := big.NewInt(p)
	rem := new(big.Int)
	count := 0
	for n.Sign() != 0 {
		q, m := new(big.Int).QuoRem(n, bp, rem)
		if m.Sign() != 0 {
			break
		}
		n = q
		count++
	}
	return count
}

func parseNumber(s string) (*big.Rat, bool) {
	// Full-width digits and symbols fold to ASCII; other compatibility forms (superscripts) stay as is.
	s = strings.TrimSpace(width.Narrow.String(s))
	s = stripQuotes(s)

	sign, s := takeSign(s)
	s, hadCurrency := stripCurrency(s)
	if hadCurrency && sign == "" {
		sign, s = takeSign(s)
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	multiplier := int64(1)
	if n := len(s); n > 0 {
		if m, ok := magnitudes[s[n-1]]; ok {
			multiplier = m
			s = strings.TrimSpace(s[:n-1])
		}
	}

	s, ok := removeGrouping(s)
	if !ok || !unsignedDecimal.MatchString(s) {
		return nil, false
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	r.Mul(r, new(big.Rat).SetInt64(multiplier))
	if sign == "-" {
		r.Neg(r)
	}
	return r, true
}

func stripQuotes(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	closing, ok := quotePairs[first]
	if !ok || len(s) <= size {
		return s
	}
	last, lastSize := utf8.DecodeLastRuneInString(s)
	if last != closing {
		return s
	}
	return strings.TrimSpace(s[size : len(s)-lastSize])
}

func takeSign(s string) (string, string) {
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return s[:1], strings.TrimSpace(s[1:])
	}
	return "", s
}

func stripCurrency(s string) (string, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.Is(unicode.Sc, r) {
		return s, false
	}
	return strings.TrimSpace(s[size:]), true
}

// removeGrouping убирает разделители разрядов (`,` и `_`) в целой части.
// Разделитель допустим только между двумя цифрами; в дробной части он запрещён.
// После запятой идёт ровно три цифры, иначе запятая может оказаться десятичной ("1,5").
func removeGrouping(s string) (string, bool) {
	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}
	if strings.ContainsAny(frac, ",_") {
		return "", false
	}

	groups := strings.Split(intPart, ",")
	for _, g := range groups[1:] {
		if len(g) != 3 || !isDigit(g[0]) || !isDigit(g[1]) || !isDigit(g[2]) {
			return "", false
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(intPart); i++ {
		c := intPart[i]
		if c == ',' || c == '_' {
			if i == 0 || i == len(intPart)-1 || !isDigit(intPart[i-1]) || !isDigit(intPart[i+1]) {
				return "", false
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String() + frac, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// CollapseSpaces заменяет NBSP и любые последовательности пробелов одним пробелом.
func CollapseSpaces(text string) string {
	text = strings.ReplaceAll(text, "\u00A0", " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}

// Truncate обрезает текст до max символов по последнему пробелу; при max <= 0 текст не меняется.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	truncated := string(runes[:max-1])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		return truncated[:lastSpace] + "…"
	}
	return truncated + "…"
}
