package libmap

import (
	"os"
	"path/filepath"
	"testing"

	"vela/deps"
)

func writeMap(t *testing.T, dir, toml string) string {
	t.Helper()
	path := filepath.Join(dir, "vela-libs.toml")
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatalf("failed to write test library map: %v", err)
	}
	return path
}

func TestLoadResolvesGlobsRelativeToMapDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "alu"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "alu", "adder.hdl"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	mapPath := writeMap(t, dir, `
[[library]]
name = "alu_lib"
files = ["alu/*.hdl"]
priority = 1
default = false
`)

	entries, err := Load(mapPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 library entry, got %d", len(entries))
	}
	if entries[0].Name != "alu_lib" || len(entries[0].Files) != 1 {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.hdl"), []byte(""), 0o644)

	mapPath := writeMap(t, dir, `
[[library]]
name = "alu_lib"
files = ["*.hdl"]

[[library]]
name = "alu_lib"
files = ["*.hdl"]
`)

	if _, err := Load(mapPath); err == nil {
		t.Fatal("expected an error for a duplicate library name")
	}
}

func TestLoadRejectsMultipleDefaults(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.hdl"), []byte(""), 0o644)

	mapPath := writeMap(t, dir, `
[[library]]
name = "alu_lib"
files = ["*.hdl"]
default = true

[[library]]
name = "cpu_lib"
files = ["*.hdl"]
default = true
`)

	if _, err := Load(mapPath); err == nil {
		t.Fatal("expected an error when more than one library is marked default")
	}
}

func TestLoadRejectsEmptyGlobMatch(t *testing.T) {
	dir := t.TempDir()

	mapPath := writeMap(t, dir, `
[[library]]
name = "alu_lib"
files = ["nothing_here/*.hdl"]
`)

	if _, err := Load(mapPath); err == nil {
		t.Fatal("expected an error when a library's globs match no files")
	}
}

func TestRegisterAllBuildsLookupMap(t *testing.T) {
	libs := deps.NewRegistry("work")
	entries := []*Entry{
		{Name: "alu_lib", Files: []string{"a.hdl"}, Priority: 1},
		{Name: "cpu_lib", Files: []string{"b.hdl"}, Priority: 2},
	}

	registered := RegisterAll(libs, entries)
	if len(registered) != 2 {
		t.Fatalf("expected 2 registered libraries, got %d", len(registered))
	}

	rl, ok := registered["alu_lib"]
	if !ok || rl.Library.Name != "alu_lib" || len(rl.Files) != 1 {
		t.Fatalf("unexpected registration for alu_lib: %+v", rl)
	}

	if _, ok := libs.Lookup("alu_lib"); !ok {
		t.Fatal("expected alu_lib to be registered in the deps.Registry")
	}
}
