package modify

import (
	"os"
	"path/filepath"
	"testing"

	"litdb/src/internal/database"
	"litdb/src/internal/labels"
	"litdb/src/internal/schema"
)

func newStore(t *testing.T, entries ...*schema.Entry) *database.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "literature.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := database.Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, e := range entries {
		if err := s.Insert(e); err != nil {
			t.Fatalf("insert %s: %v", e.Label, err)
		}
	}
	return s
}

func newEngine(s *database.Store) *Engine {
	return &Engine{Store: s, Suffix: labels.DefaultSuffix}
}

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor("tags:reviewed", Append)
	if err != nil || d.Field != "tags" || d.Template != "reviewed" || d.Mode != Append {
		t.Fatalf("%+v %v", d, err)
	}
	d, err = ParseDescriptor("note:see: the appendix", Overwrite)
	if err != nil || d.Template != "see: the appendix" {
		t.Fatalf("only the first colon splits: %+v %v", d, err)
	}
	if _, err := ParseDescriptor("no-colon", Overwrite); err == nil {
		t.Fatalf("missing colon should error")
	}
	if _, err := ParseDescriptor(":value", Overwrite); err == nil {
		t.Fatalf("empty field should error")
	}
}

func TestAppendToList(t *testing.T) {
	a := schema.New("A")
	a.Set("tags", schema.ListValue("quantum"))
	b := schema.New("B") // no tags field at all
	store := newStore(t, a, b)

	d := Descriptor{Field: "tags", Template: "reviewed", Mode: Append}
	results := newEngine(store).Apply(d, []string{"A", "B"}, Options{})
	for _, r := range results {
		if r.Err != nil || r.Skipped {
			t.Fatalf("result: %+v", r)
		}
	}
	got, _ := a.Get("tags")
	if got.Kind != schema.KindList || len(got.List) != 2 || got.List[1] != "reviewed" {
		t.Fatalf("A tags: %+v", got)
	}
	got, _ = b.Get("tags")
	if got.Kind != schema.KindList || len(got.List) != 1 || got.List[0] != "reviewed" {
		t.Fatalf("absent field should become a one-element list: %+v", got)
	}
}

func TestAppendNumericAndString(t *testing.T) {
	e := schema.New("E")
	e.Set("year", schema.IntValue(2000))
	e.Set("title", schema.StringValue("base"))
	store := newStore(t, e)
	en := newEngine(store)

	en.Apply(Descriptor{Field: "year", Template: "5", Mode: Append}, []string{"E"}, Options{})
	if v, _ := e.Get("year"); v.Int != 2005 {
		t.Fatalf("year: %+v", v)
	}
	en.Apply(Descriptor{Field: "year", Template: "5", Mode: Remove}, []string{"E"}, Options{})
	if v, _ := e.Get("year"); v.Int != 2000 {
		t.Fatalf("year after remove: %+v", v)
	}
	en.Apply(Descriptor{Field: "title", Template: " extended", Mode: Append}, []string{"E"}, Options{})
	if v, _ := e.Get("title"); v.Str != "base extended" {
		t.Fatalf("title: %+v", v)
	}

	res := en.Apply(Descriptor{Field: "year", Template: "x", Mode: Append}, []string{"E"}, Options{})
	if res[0].Err == nil {
		t.Fatalf("non-numeric append to int must fail")
	}
	if v, _ := e.Get("year"); v.Int != 2000 {
		t.Fatalf("failed append must not change the field: %+v", v)
	}
}

func TestRemoveEmptyDeletesField(t *testing.T) {
	e := schema.New("E")
	e.Set("tags", schema.ListValue("x"))
	store := newStore(t, e)

	res := newEngine(store).Apply(Descriptor{Field: "tags", Template: "", Mode: Remove}, []string{"E"}, Options{})
	if res[0].Err != nil {
		t.Fatalf("remove: %+v", res[0])
	}
	if _, ok := e.Get("tags"); ok {
		t.Fatalf("field should be gone")
	}
}

func TestOverwriteWithTemplate(t *testing.T) {
	e := schema.New("E")
	e.Set("author", schema.StringValue("Knuth"))
	e.Set("year", schema.IntValue(1984))
	store := newStore(t, e)

	res := newEngine(store).Apply(Descriptor{Field: "summary", Template: "{author} ({year})", Mode: Overwrite}, []string{"E"}, Options{})
	if res[0].Err != nil {
		t.Fatalf("overwrite: %+v", res[0])
	}
	if v, _ := e.Get("summary"); v.Str != "Knuth (1984)" {
		t.Fatalf("summary: %+v", v)
	}
}

func TestNoopSkipped(t *testing.T) {
	e := schema.New("E")
	e.Set("title", schema.StringValue("same"))
	store := newStore(t, e)

	res := newEngine(store).Apply(Descriptor{Field: "title", Template: "same", Mode: Overwrite}, []string{"E"}, Options{})
	if !res[0].Skipped {
		t.Fatalf("identical value should be skipped: %+v", res[0])
	}
}

func TestDryRunLeavesDatabaseUntouched(t *testing.T) {
	e := schema.New("E")
	e.Set("tags", schema.ListValue("a"))
	store := newStore(t, e)
	if err := store.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	before, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	res := newEngine(store).Apply(Descriptor{Field: "tags", Template: "b", Mode: Append}, []string{"E"}, Options{Dry: true})
	if res[0].Err != nil || res[0].Skipped || res[0].Preview == "" {
		t.Fatalf("dry result: %+v", res[0])
	}
	if v, _ := e.Get("tags"); len(v.List) != 1 {
		t.Fatalf("dry run mutated the entry: %+v", v)
	}
	after, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("dry run changed the database file")
	}
}

func TestPerEntryIndependence(t *testing.T) {
	a := schema.New("A")
	a.Set("year", schema.IntValue(2000))
	b := schema.New("B")
	b.Set("year", schema.PeopleValue(schema.Person{Family: "Wrong"}))
	c := schema.New("C")
	c.Set("year", schema.IntValue(2010))
	store := newStore(t, a, b, c)

	results := newEngine(store).Apply(Descriptor{Field: "year", Template: "1", Mode: Append}, []string{"A", "B", "C"}, Options{})
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("A/C should succeed: %+v", results)
	}
	if results[1].Err == nil {
		t.Fatalf("B should fail: %+v", results[1])
	}
	if va, _ := a.Get("year"); va.Int != 2001 {
		t.Fatalf("A: %+v", va)
	}
	if vc, _ := c.Get("year"); vc.Int != 2011 {
		t.Fatalf("one failing entry must not stop the rest: %+v", vc)
	}
}

func TestRenameViaLabelField(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "Old2020.pdf")
	if err := os.WriteFile(pdf, []byte("x"), 0o644); err != nil {
		t.Fatalf("touch: %v", err)
	}
	e := schema.New("Old2020")
	e.Set("author", schema.StringValue("New"))
	e.Set("year", schema.IntValue(2020))
	e.Files = []string{pdf}
	store := newStore(t, e)

	res := newEngine(store).Apply(Descriptor{Field: "label", Template: "{author}{year}", Mode: Overwrite}, []string{"Old2020"}, Options{})
	if res[0].Err != nil {
		t.Fatalf("rename: %+v", res[0])
	}
	if res[0].NewLabel != "New2020" || !store.Has("New2020") || store.Has("Old2020") {
		t.Fatalf("labels: %v", store.Labels())
	}
	moved := filepath.Join(dir, "New2020.pdf")
	if _, err := os.Stat(moved); err != nil {
		t.Fatalf("file not relocated: %v", err)
	}
	if e.Files[0] != moved {
		t.Fatalf("entry path: %v", e.Files)
	}
}

func TestRenameCollisionDisambiguates(t *testing.T) {
	taken := schema.New("Smith2020")
	e := schema.New("Old")
	e.Set("author", schema.StringValue("Smith"))
	e.Set("year", schema.IntValue(2020))
	store := newStore(t, taken, e)

	res := newEngine(store).Apply(Descriptor{Field: "label", Template: "{author}{year}", Mode: Overwrite}, []string{"Old"}, Options{})
	if res[0].Err != nil {
		t.Fatalf("rename: %+v", res[0])
	}
	if res[0].NewLabel != "Smith2020_a" || !store.Has("Smith2020_a") {
		t.Fatalf("collision must disambiguate: %+v %v", res[0], store.Labels())
	}
}

func TestEmptyLabelRejected(t *testing.T) {
	e := schema.New("E")
	store := newStore(t, e)
	res := newEngine(store).Apply(Descriptor{Field: "label", Template: "{missing}", Mode: Overwrite}, []string{"E"}, Options{})
	if res[0].Err == nil {
		t.Fatalf("empty label must be rejected")
	}
	if !store.Has("E") {
		t.Fatalf("store must be unchanged")
	}
}

func TestDryRenameMovesNoFiles(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "Old2020.pdf")
	if err := os.WriteFile(pdf, []byte("x"), 0o644); err != nil {
		t.Fatalf("touch: %v", err)
	}
	e := schema.New("Old2020")
	e.Set("author", schema.StringValue("New"))
	e.Set("year", schema.IntValue(2020))
	e.Files = []string{pdf}
	store := newStore(t, e)

	res := newEngine(store).Apply(Descriptor{Field: "label", Template: "{author}{year}", Mode: Overwrite}, []string{"Old2020"}, Options{Dry: true})
	if res[0].Err != nil {
		t.Fatalf("dry rename: %+v", res[0])
	}
	if res[0].NewLabel != "New2020" {
		t.Fatalf("preview label: %+v", res[0])
	}
	if !store.Has("Old2020") || store.Has("New2020") {
		t.Fatalf("dry rename must not touch the store: %v", store.Labels())
	}
	if _, err := os.Stat(pdf); err != nil {
		t.Fatalf("file must stay in place: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "New2020.pdf")); !os.IsNotExist(err) {
		t.Fatalf("no file may appear at the new path: %v", err)
	}
	if e.Files[0] != pdf {
		t.Fatalf("entry path must be unchanged: %v", e.Files)
	}
}
