package relocate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"litdb/src/internal/schema"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRelocate(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "Label1.pdf")
	supp := filepath.Join(dir, "Label1_supp.pdf")
	other := filepath.Join(dir, "unrelated.pdf")
	note := filepath.Join(dir, "Label1.md")
	for _, p := range []string{pdf, supp, other, note} {
		touch(t, p)
	}
	e := schema.New("Label1")
	e.Files = []string{pdf, supp, other}
	e.Notes = note

	if err := Relocate(e, "Label1", "Label2", false); err != nil {
		t.Fatalf("relocate: %v", err)
	}
	for _, p := range []string{
		filepath.Join(dir, "Label2.pdf"),
		filepath.Join(dir, "Label2_supp.pdf"),
		filepath.Join(dir, "Label2.md"),
		other,
	} {
		if !exists(p) {
			t.Fatalf("missing %s", p)
		}
	}
	if exists(pdf) || exists(supp) || exists(note) {
		t.Fatalf("old files should be gone")
	}
	if e.Files[0] != filepath.Join(dir, "Label2.pdf") || e.Files[1] != filepath.Join(dir, "Label2_supp.pdf") {
		t.Fatalf("entry paths not rewritten: %v", e.Files)
	}
	if e.Files[2] != other {
		t.Fatalf("non-matching path must stay: %v", e.Files)
	}
	if e.Notes != filepath.Join(dir, "Label2.md") {
		t.Fatalf("note path not rewritten: %q", e.Notes)
	}
}

func TestRelocatePreserve(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "L.pdf")
	touch(t, pdf)
	e := schema.New("L")
	e.Files = []string{pdf}
	if err := Relocate(e, "L", "M", true); err != nil {
		t.Fatalf("preserve: %v", err)
	}
	if !exists(pdf) || e.Files[0] != pdf {
		t.Fatalf("preserve must not touch anything: %v", e.Files)
	}
}

func TestRelocateRollsBackOnFailure(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "L.pdf")
	b := filepath.Join(dir, "L_supp.pdf")
	touch(t, a)
	touch(t, b)
	e := schema.New("L")
	e.Files = []string{a, b}

	failErr := fmt.Errorf("disk full")
	orig := renameFile
	renameFile = func(from, to string) error {
		if from == b {
			return failErr
		}
		return os.Rename(from, to)
	}
	defer func() { renameFile = orig }()

	err := Relocate(e, "L", "M", false)
	if !errors.Is(err, failErr) {
		t.Fatalf("want wrapped failure, got %v", err)
	}
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("want *Failure, got %T", err)
	}
	if len(f.RolledBack) != 1 || len(f.RollbackErrs) != 0 {
		t.Fatalf("rollback report: %+v", f)
	}
	// All files are back under their original names.
	if !exists(a) || !exists(b) || exists(filepath.Join(dir, "M.pdf")) {
		t.Fatalf("rollback incomplete")
	}
	if e.Files[0] != a || e.Files[1] != b {
		t.Fatalf("entry paths must be untouched on failure: %v", e.Files)
	}
}

func TestRelocateRefusesExistingTarget(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "L.pdf")
	clash := filepath.Join(dir, "M.pdf")
	touch(t, a)
	touch(t, clash)
	e := schema.New("L")
	e.Files = []string{a}

	err := Relocate(e, "L", "M", false)
	if err == nil {
		t.Fatalf("existing target must fail the batch")
	}
	if !exists(a) {
		t.Fatalf("source must survive")
	}
}

func TestPlan(t *testing.T) {
	e := schema.New("L")
	e.Files = []string{"/lib/L.pdf", "/lib/Lx.pdf"}
	got := Plan(e, "L", "M")
	if len(got) != 1 || got[0][0] != "/lib/L.pdf" || got[0][1] != "/lib/M.pdf" {
		t.Fatalf("plan: %v", got)
	}
}
