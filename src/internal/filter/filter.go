// Package filter selects entries by predicate expressions over field values.
package filter

import (
	"fmt"
	"strings"

	"litdb/src/internal/schema"
)

// Predicate matches one field against a value.
type Predicate struct {
	Field  string
	Value  string
	Negate bool  // invert the match
	Exact  bool  // full-value match instead of substring
}

// Parse reads a predicate from its command-line form: "field=value" matches,
// "field!=value" negates, "field==value" requires the full value.
func Parse(s string) (Predicate, error) {
	if field, value, ok := strings.Cut(s, "!="); ok && strings.TrimSpace(field) != "" {
		return Predicate{Field: strings.TrimSpace(field), Value: value, Negate: true}, nil
	}
	if field, value, ok := strings.Cut(s, "=="); ok && strings.TrimSpace(field) != "" {
		return Predicate{Field: strings.TrimSpace(field), Value: value, Exact: true}, nil
	}
	field, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(field) == "" {
		return Predicate{}, fmt.Errorf("filter must have the form field=value or field!=value, got %q", s)
	}
	return Predicate{Field: strings.TrimSpace(field), Value: value}, nil
}

// ParseAll parses a list of command-line predicates.
func ParseAll(args []string) ([]Predicate, error) {
	out := make([]Predicate, 0, len(args))
	for _, a := range args {
		p, err := Parse(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Match reports whether the entry satisfies the predicate. List fields match
// when any element matches.
func (p Predicate) Match(e *schema.Entry) bool {
	v, ok := e.Get(p.Field)
	if !ok {
		return p.Negate
	}
	hit := false
	switch v.Kind {
	case schema.KindList:
		for _, item := range v.List {
			if p.matchString(item) {
				hit = true
				break
			}
		}
	case schema.KindPeople:
		for _, person := range v.People {
			if p.matchString(person.String()) {
				hit = true
				break
			}
		}
	default:
		hit = p.matchString(v.String())
	}
	return hit != p.Negate
}

func (p Predicate) matchString(s string) bool {
	if p.Exact {
		return strings.EqualFold(s, p.Value)
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(p.Value))
}

// Select returns the labels of all entries matching the predicates, in the
// entries' own order. With or set a single predicate match suffices;
// otherwise all predicates must match.
func Select(entries []*schema.Entry, preds []Predicate, or bool) []string {
	var out []string
	for _, e := range entries {
		if matches(e, preds, or) {
			out = append(out, e.Label)
		}
	}
	return out
}

func matches(e *schema.Entry, preds []Predicate, or bool) bool {
	if len(preds) == 0 {
		return true
	}
	for _, p := range preds {
		hit := p.Match(e)
		if or && hit {
			return true
		}
		if !or && !hit {
			return false
		}
	}
	return !or
}
