package filter

import (
	"testing"

	"litdb/src/internal/schema"
)

func entries() []*schema.Entry {
	a := schema.New("A2019")
	a.Set("title", schema.StringValue("Quantum Chemistry Review"))
	a.Set("year", schema.IntValue(2019))
	a.Set("tags", schema.ListValue("quantum", "review"))
	b := schema.New("B2021")
	b.Set("title", schema.StringValue("Classical Methods"))
	b.Set("year", schema.IntValue(2021))
	b.Set("author", schema.PeopleValue(schema.Person{Family: "Smith", Given: "Ada"}))
	return []*schema.Entry{a, b}
}

func TestParse(t *testing.T) {
	p, err := Parse("title=quantum")
	if err != nil || p.Field != "title" || p.Value != "quantum" || p.Negate || p.Exact {
		t.Fatalf("%+v %v", p, err)
	}
	p, err = Parse("year!=2019")
	if err != nil || !p.Negate {
		t.Fatalf("%+v %v", p, err)
	}
	p, err = Parse("label==A2019")
	if err != nil || !p.Exact || p.Value != "A2019" {
		t.Fatalf("%+v %v", p, err)
	}
	if _, err := Parse("no separator"); err == nil {
		t.Fatalf("missing = should error")
	}
}

func TestSelect(t *testing.T) {
	es := entries()
	cases := []struct {
		filters []string
		or      bool
		want    []string
	}{
		{[]string{"title=quantum"}, false, []string{"A2019"}},
		{[]string{"year!=2019"}, false, []string{"B2021"}},
		{[]string{"tags=review"}, false, []string{"A2019"}},
		{[]string{"author=smith"}, false, []string{"B2021"}},
		{[]string{"title=quantum", "year=2019"}, false, []string{"A2019"}},
		{[]string{"title=quantum", "year=2021"}, false, nil},
		{[]string{"title=quantum", "year=2021"}, true, []string{"A2019", "B2021"}},
		{[]string{"label==A"}, false, nil},
		{[]string{"label==a2019"}, false, []string{"A2019"}},
		{nil, false, []string{"A2019", "B2021"}},
	}
	for _, c := range cases {
		preds, err := ParseAll(c.filters)
		if err != nil {
			t.Fatalf("parse %v: %v", c.filters, err)
		}
		got := Select(es, preds, c.or)
		if len(got) != len(c.want) {
			t.Fatalf("Select(%v, or=%v)=%v want %v", c.filters, c.or, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("Select(%v, or=%v)=%v want %v", c.filters, c.or, got, c.want)
			}
		}
	}
}

func TestMatchAbsentField(t *testing.T) {
	es := entries()
	p, _ := Parse("author=smith")
	if p.Match(es[0]) {
		t.Fatalf("absent field must not match")
	}
	n, _ := Parse("author!=smith")
	if !n.Match(es[0]) {
		t.Fatalf("negated filter matches entries lacking the field")
	}
}
