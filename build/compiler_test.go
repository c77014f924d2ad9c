package build

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vela/deps"
	"vela/logging"
	"vela/resolve"
	"vela/sem"
)

func init() {
	logging.Initialize("", "silent")
}

func writeLibraryMap(t *testing.T, toml string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.hdl"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "vela-libs.toml")
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompilerLoadLibrariesRegistersDefinitions(t *testing.T) {
	mapPath := writeLibraryMap(t, `
[[library]]
name = "alu_lib"
files = ["*.hdl"]
`)

	c := NewCompiler(resolve.DefaultCompilationOptions(), nil)

	var loadedFiles []string
	load := func(lib *deps.SourceLibrary, files []string) ([]*sem.Definition, []*sem.ConfigBlock, error) {
		loadedFiles = files
		return []*sem.Definition{{Kind: sem.DefModule, Name: "adder", SourceLibrary: lib}}, nil, nil
	}

	if err := c.LoadLibraries(mapPath, load); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loadedFiles) != 1 {
		t.Fatalf("expected the loader to receive the resolved file list, got %v", loadedFiles)
	}

	lib, ok := c.Libs.Lookup("alu_lib")
	if !ok {
		t.Fatal("expected alu_lib to be registered")
	}
	if len(c.Defs.DefinitionsIn(lib)) != 1 {
		t.Fatalf("expected one definition registered under alu_lib, got %d", len(c.Defs.DefinitionsIn(lib)))
	}
}

func TestCompilerLoadLibrariesPropagatesLoaderError(t *testing.T) {
	mapPath := writeLibraryMap(t, `
[[library]]
name = "alu_lib"
files = ["*.hdl"]
`)

	c := NewCompiler(resolve.DefaultCompilationOptions(), nil)
	load := func(lib *deps.SourceLibrary, files []string) ([]*sem.Definition, []*sem.ConfigBlock, error) {
		return nil, nil, errors.New("parse failure")
	}

	if err := c.LoadLibraries(mapPath, load); err == nil {
		t.Fatal("expected the loader's error to propagate")
	}
}

func TestCompilerLoadLibrariesRejectsMissingMap(t *testing.T) {
	c := NewCompiler(resolve.DefaultCompilationOptions(), nil)
	load := func(lib *deps.SourceLibrary, files []string) ([]*sem.Definition, []*sem.ConfigBlock, error) {
		return nil, nil, nil
	}

	if err := c.LoadLibraries("/does/not/exist.toml", load); err == nil {
		t.Fatal("expected a missing library map to be an error")
	}
}

func TestCompilerElaborateProducesTops(t *testing.T) {
	c := NewCompiler(resolve.DefaultCompilationOptions(), nil)
	work := c.Libs.Default()
	c.Defs.RegisterDefinition(work, &sem.Definition{Kind: sem.DefModule, Name: "top", SourceLibrary: work})

	tops, ok := c.Elaborate()
	if !ok {
		t.Fatal("expected elaboration with no diagnostics to report success")
	}
	if len(tops) != 1 || tops[0].Name != "top" {
		t.Fatalf("expected the single unreferenced module to be the sole top, got %+v", tops)
	}
}

func TestCompilerCompileEndToEnd(t *testing.T) {
	mapPath := writeLibraryMap(t, `
[[library]]
name = "alu_lib"
files = ["*.hdl"]
`)

	c := NewCompiler(resolve.DefaultCompilationOptions(), nil)
	load := func(lib *deps.SourceLibrary, files []string) ([]*sem.Definition, []*sem.ConfigBlock, error) {
		return []*sem.Definition{{Kind: sem.DefModule, Name: "adder", SourceLibrary: lib}}, nil, nil
	}

	tops, ok := c.Compile(mapPath, "", load)
	if !ok {
		t.Fatal("expected the end-to-end compile to succeed")
	}
	if len(tops) != 1 || tops[0].Name != "adder" {
		t.Fatalf("expected `adder` to be the sole implicit top, got %+v", tops)
	}
}
