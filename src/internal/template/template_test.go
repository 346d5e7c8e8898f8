package template

import "testing"

func lookup(fields map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := fields[name]
		return v, ok
	}
}

func TestEval(t *testing.T) {
	fields := map[string]string{"author": "knuth", "year": "1984", "title": "the TEXBOOK", "venue": "über ÉCOLE"}
	cases := []struct{ tmpl, want string }{
		{"{author}{year}", "knuth1984"},
		{"literal only", "literal only"},
		{"{upper:author}-{year}", "KNUTH-1984"},
		{"{title:title}", "The Texbook"},
		{"{lower:title}", "the texbook"},
		{"{title:venue}", "Über École"},
		{"pre {author} post", "pre knuth post"},
		{"{unterminated", "{unterminated"},
	}
	for _, c := range cases {
		if got := Eval(c.tmpl, lookup(fields)); got != c.want {
			t.Fatalf("Eval(%q)=%q want %q", c.tmpl, got, c.want)
		}
	}
}

func TestEvalUndefined(t *testing.T) {
	if got := Eval("{missing}x", lookup(nil)); got != "x" {
		t.Fatalf("undefined field should substitute empty: %q", got)
	}
	if got := Eval("{bogus:author}", lookup(map[string]string{"author": "a"})); got != "" {
		t.Fatalf("unknown function should substitute empty: %q", got)
	}
}

func TestEvalTranslit(t *testing.T) {
	if got := Eval("{translit:name}", lookup(map[string]string{"name": "Grüße"})); got != "Gruesse" {
		t.Fatalf("translit: %q", got)
	}
}
