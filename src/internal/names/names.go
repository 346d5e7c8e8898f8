// Package names parses human name strings into structured people records.
package names

import (
	"strings"

	"litdb/src/internal/schema"
)

// Parse splits one full name into a person. It accepts "Family, Given Names"
// or "Given Names Family"; a single word is taken as the family name.
func Parse(name string) schema.Person {
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.Person{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return schema.Person{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)}
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return schema.Person{Family: parts[0]}
	}
	return schema.Person{
		Family: parts[len(parts)-1],
		Given:  strings.Join(parts[:len(parts)-1], " "),
	}
}

// ParseList splits a name list on " and " and parses each element.
func ParseList(s string) []schema.Person {
	var out []schema.Person
	for _, part := range strings.Split(s, " and ") {
		if p := Parse(part); p.Family != "" || p.Given != "" {
			out = append(out, p)
		}
	}
	return out
}
