package labels

import (
	"testing"

	"litdb/src/internal/schema"
)

func TestFormat(t *testing.T) {
	e := schema.New("ignored")
	e.Set("author", schema.PeopleValue(schema.Person{Family: "Müller", Given: "Jörg"}))
	e.Set("year", schema.IntValue(2021))
	e.Set("title", schema.StringValue("On Things & Stuff"))

	cases := []struct {
		tmpl string
		want string
	}{
		{"{author}{year}", "MuellerJoerg2021"},
		{"{lower:title}", "onthingsstuff"},
		{"{year}-{missing}", "2021-"},
		{DefaultTemplate, "ignored"},
	}
	for _, c := range cases {
		if got := Format(e, c.tmpl); got != c.want {
			t.Fatalf("Format(%q)=%q want %q", c.tmpl, got, c.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Fröhlich 2019 ", "Froehlich2019"},
		{"a/b\\c:d", "abcd"},
		{"keep_under-score", "keep_under-score"},
		{"日本語", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestEnumerateReverse(t *testing.T) {
	cases := []struct {
		kind SuffixKind
		n    int
		want string
	}{
		{SuffixAlpha, 1, "a"},
		{SuffixAlpha, 26, "z"},
		{SuffixAlpha, 27, "aa"},
		{SuffixCapital, 2, "B"},
		{SuffixNumeric, 12, "12"},
	}
	for _, c := range cases {
		got := c.kind.Enumerate(c.n)
		if got != c.want {
			t.Fatalf("Enumerate(%d)=%q want %q", c.n, got, c.want)
		}
		back, err := c.kind.Reverse(got)
		if err != nil || back != c.n {
			t.Fatalf("Reverse(%q)=%d,%v want %d", got, back, err, c.n)
		}
	}
	if _, err := SuffixAlpha.Reverse("B"); err == nil {
		t.Fatalf("capital suffix should not parse as alpha")
	}
	if _, err := SuffixNumeric.Reverse("0"); err == nil {
		t.Fatalf("numeric suffixes start at 1")
	}
}

func TestSuffixApplyTrim(t *testing.T) {
	s := DefaultSuffix
	if got := s.Apply("Label", 2); got != "Label_b" {
		t.Fatalf("Apply: %q", got)
	}
	root, n := s.Trim("Label_b")
	if root != "Label" || n != 2 {
		t.Fatalf("Trim: %q %d", root, n)
	}
	root, n = s.Trim("Label")
	if root != "Label" || n != 0 {
		t.Fatalf("unsuffixed Trim: %q %d", root, n)
	}
	root, n = s.Trim("Label_Supp")
	if root != "Label_Supp" || n != 0 {
		t.Fatalf("invalid suffix must not trim: %q %d", root, n)
	}

	num := Suffix{Separator: ".", Kind: SuffixNumeric}
	if got := num.Apply("X", 3); got != "X.3" {
		t.Fatalf("numeric Apply: %q", got)
	}
	root, n = num.Trim("X.3")
	if root != "X" || n != 3 {
		t.Fatalf("numeric Trim: %q %d", root, n)
	}
}

func TestParseSuffixKind(t *testing.T) {
	for in, want := range map[string]SuffixKind{"": SuffixAlpha, "alpha": SuffixAlpha, "CAPITAL": SuffixCapital, "numeric": SuffixNumeric} {
		got, err := ParseSuffixKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseSuffixKind(%q)=%v,%v", in, got, err)
		}
	}
	if _, err := ParseSuffixKind("roman"); err == nil {
		t.Fatalf("unknown kind should error")
	}
}
