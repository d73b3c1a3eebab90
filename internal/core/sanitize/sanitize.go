package sanitize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxTextLen é o teto de caracteres de qualquer campo textual importado.
const MaxTextLen = 200

// ParseAmount converte valores monetários em convenção brasileira (1.234,56)
// ou anglo (1,234.56) para float64. Entrada vazia ou inválida vira 0.
//
// A decisão de formato compara as POSIÇÕES da última vírgula e do último
// ponto: vírgula depois do ponto indica decimal brasileiro; caso contrário
// as vírgulas são tratadas como separador de milhar.
func ParseAmount(val string) float64 {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	if lastComma > lastDot {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if neg {
		f = -f
	}
	return f
}

// Text coerção padrão de célula: trim e truncamento em MaxTextLen caracteres.
func Text(val string) string {
	return TextN(val, MaxTextLen)
}

// TextN trunca em maxLen caracteres (runes, não bytes).
func TextN(val string, maxLen int) string {
	s := strings.TrimSpace(val)
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// ForCSV remove caracteres de controle embutidos antes de escrever uma célula.
// Tabs e quebras de linha são descartados; demais controles viram espaço.
func ForCSV(s string) string {
	if s == "" {
		return ""
	}

	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if r == '\r' || r == '\n' || r == '\t' {
			continue
		}
		if r < 32 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize remove acentos (NFD), sobe para maiúsculas e colapsa tudo que não
// for alfanumérico. Usado para busca e sugestão insensíveis a acento.
func Normalize(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
