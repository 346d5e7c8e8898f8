package exportcmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"litdb/src/internal/importer"
)

func setupLibrary(t *testing.T, seed string) {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "literature.yaml")
	if err := os.WriteFile(db, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Setenv("HOME", dir)
	t.Setenv("LITDB_DATABASE", db)
	t.Setenv("LITDB_CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("LITDB_GIT", "false")
}

const seed = `A2019:
  title: Quantum Chemistry
---
B2021:
  title: Classical Methods
`

func TestExportFilteredToFile(t *testing.T) {
	setupLibrary(t, seed)
	target := filepath.Join(t.TempDir(), "out.yaml")

	cmd := New()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"-o", target, "title=quantum"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "1 entries exported") {
		t.Fatalf("output: %q", out.String())
	}

	// The export is importable again.
	entries, err := importer.YAML{}.Import(target)
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if len(entries) != 1 || entries[0].Label != "A2019" {
		t.Fatalf("entries: %+v", entries)
	}
}

func TestExportSelectionToStdout(t *testing.T) {
	setupLibrary(t, seed)
	cmd := New()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"-s", "B2021"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "B2021:") || strings.Contains(out.String(), "A2019:") {
		t.Fatalf("output: %q", out.String())
	}
}
