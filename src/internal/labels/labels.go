// Package labels derives and manipulates the unique entry labels.
package labels

import (
	"fmt"
	"strconv"
	"strings"

	"litdb/src/internal/schema"
	"litdb/src/internal/stringsx"
	"litdb/src/internal/template"
)

// DefaultTemplate keeps an already assigned label, transliterated.
const DefaultTemplate = "{translit:label}"

// Format evaluates the label template against the entry's fields and
// normalizes the result to the safe label character set. Missing fields
// substitute the empty string.
func Format(e *schema.Entry, tmpl string) string {
	raw := template.Eval(tmpl, func(name string) (string, bool) {
		v, ok := e.Get(name)
		if !ok {
			return "", false
		}
		return v.String(), true
	})
	return Normalize(raw)
}

// Normalize transliterates non-ASCII characters to their closest ASCII
// equivalent and removes everything outside [A-Za-z0-9_-].
func Normalize(s string) string {
	s = stringsx.Transliterate(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SuffixKind selects the enumeration alphabet used to disambiguate labels.
type SuffixKind int

const (
	SuffixAlpha   SuffixKind = iota // a, b, c, ...
	SuffixCapital                   // A, B, C, ...
	SuffixNumeric                   // 1, 2, 3, ...
)

// ParseSuffixKind maps a configuration string to a SuffixKind.
func ParseSuffixKind(s string) (SuffixKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "alpha":
		return SuffixAlpha, nil
	case "capital":
		return SuffixCapital, nil
	case "numeric":
		return SuffixNumeric, nil
	}
	return SuffixAlpha, fmt.Errorf("unknown label suffix kind %q", s)
}

// Enumerate returns the n-th suffix (1-based) in the kind's alphabet.
// Alphabetic kinds wrap into multi-character suffixes past their 26th value.
func (k SuffixKind) Enumerate(n int) string {
	if n < 1 {
		n = 1
	}
	switch k {
	case SuffixNumeric:
		return strconv.Itoa(n)
	case SuffixCapital:
		return alphaSuffix(n, 'A')
	default:
		return alphaSuffix(n, 'a')
	}
}

func alphaSuffix(n int, base rune) string {
	var b []rune
	for n > 0 {
		n--
		b = append([]rune{base + rune(n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// Reverse converts a suffix string back to its 1-based ordinal, or an error
// when the string is not a valid suffix of this kind.
func (k SuffixKind) Reverse(suffix string) (int, error) {
	if suffix == "" {
		return 0, fmt.Errorf("empty suffix")
	}
	switch k {
	case SuffixNumeric:
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%q is not a numeric suffix", suffix)
		}
		return n, nil
	case SuffixCapital:
		return reverseAlpha(suffix, 'A')
	default:
		return reverseAlpha(suffix, 'a')
	}
}

func reverseAlpha(suffix string, base rune) (int, error) {
	n := 0
	for _, r := range suffix {
		if r < base || r > base+25 {
			return 0, fmt.Errorf("%q is not an alphabetic suffix", suffix)
		}
		n = n*26 + int(r-base) + 1
	}
	return n, nil
}

// Suffix combines a separator and an enumeration alphabet.
type Suffix struct {
	Separator string
	Kind      SuffixKind
}

// DefaultSuffix is an underscore separator with lowercase letters.
var DefaultSuffix = Suffix{Separator: "_", Kind: SuffixAlpha}

// Apply returns label + separator + n-th suffix.
func (s Suffix) Apply(label string, n int) string {
	return label + s.Separator + s.Kind.Enumerate(n)
}

// Trim splits a possibly suffixed label into its root and the suffix
// ordinal. Labels without a valid suffix return (label, 0).
func (s Suffix) Trim(label string) (string, int) {
	idx := strings.LastIndex(label, s.Separator)
	if idx <= 0 || idx == len(label)-len(s.Separator) {
		return label, 0
	}
	n, err := s.Kind.Reverse(label[idx+len(s.Separator):])
	if err != nil {
		return label, 0
	}
	return label[:idx], n
}
