// Package template implements the placeholder mini-language used for label
// generation and bulk modifications. A template is a plain string with
// `{field}` placeholders; a placeholder may prefix the field name with one of
// a fixed set of functions, e.g. `{lower:author}`. There is no general
// expression evaluation.
package template

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"litdb/src/internal/stringsx"
)

// LookupFunc resolves a field name to its string value. The boolean reports
// whether the field exists.
type LookupFunc func(name string) (string, bool)

// funcs is the fixed set of string functions available in placeholders.
var funcs = map[string]func(string) string{
	"lower":    strings.ToLower,
	"upper":    strings.ToUpper,
	"title":    title,
	"translit": stringsx.Transliterate,
}

func title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// Eval substitutes all placeholders in tmpl using lookup. An undefined field
// resolves to the empty string and logs a warning; evaluation never fails.
func Eval(tmpl string, lookup LookupFunc) string {
	var b strings.Builder
	b.Grow(len(tmpl))
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		closing := strings.IndexByte(tmpl[open:], '}')
		if closing < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		closing += open
		b.WriteString(tmpl[:open])
		b.WriteString(resolve(tmpl[open+1:closing], lookup))
		tmpl = tmpl[closing+1:]
	}
}

func resolve(placeholder string, lookup LookupFunc) string {
	name := placeholder
	var fn func(string) string
	if i := strings.IndexByte(placeholder, ':'); i >= 0 {
		f, ok := funcs[placeholder[:i]]
		if !ok {
			slog.Warn("unknown template function, substituting empty string",
				"function", placeholder[:i], "placeholder", placeholder)
			return ""
		}
		fn = f
		name = placeholder[i+1:]
	}
	val, ok := lookup(strings.TrimSpace(name))
	if !ok {
		slog.Warn("undefined template field, substituting empty string", "field", name)
		val = ""
	}
	if fn != nil {
		val = fn(val)
	}
	return val
}
