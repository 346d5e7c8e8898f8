package stringsx

import (
	"strings"
	"unicode"
)

// FirstNonEmpty returns the first string in vals that is non-empty when trimmed.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// translit maps common non-ASCII runes to their closest ASCII spelling.
var translit = map[rune]string{
	'ä': "ae", 'ö': "oe", 'ü': "ue", 'ß': "ss",
	'Ä': "Ae", 'Ö': "Oe", 'Ü': "Ue",
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'å': "a", 'ā': "a",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e", 'ē': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i", 'ī': "i",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ø': "o", 'ō': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ū': "u",
	'À': "A", 'Á': "A", 'Â': "A", 'Ã': "A", 'Å': "A",
	'È': "E", 'É': "E", 'Ê': "E", 'Ë': "E",
	'Ì': "I", 'Í': "I", 'Î': "I", 'Ï': "I",
	'Ò': "O", 'Ó': "O", 'Ô': "O", 'Õ': "O", 'Ø': "O",
	'Ù': "U", 'Ú': "U", 'Û': "U",
	'ç': "c", 'Ç': "C", 'ñ': "n", 'Ñ': "N",
	'ý': "y", 'ÿ': "y", 'æ': "ae", 'Æ': "Ae", 'œ': "oe", 'Œ': "Oe",
	'š': "s", 'Š': "S", 'ž': "z", 'Ž': "Z", 'č': "c", 'Č': "C",
	'ł': "l", 'Ł': "L", 'đ': "d", 'Đ': "D",
}

// Transliterate converts a string to its closest ASCII equivalent. Runes
// without a known spelling that remain non-ASCII are dropped.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
			continue
		}
		if repl, ok := translit[r]; ok {
			b.WriteString(repl)
		}
	}
	return b.String()
}
