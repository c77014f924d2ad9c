package resolve

import (
	"testing"

	"vela/sem"
)

func TestPackageExportResolverWildcardOfWildcards(t *testing.T) {
	pkg := &sem.Definition{Name: "util", Exports: []*sem.ExportDecl{{Wildcard: true}}}
	r := NewPackageExportResolver(nil, nil)

	exp, err := r.Resolve(pkg, "other", "Foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp == nil {
		t.Fatal("expected `export *::*` to grant visibility regardless of source package or name")
	}
}

func TestPackageExportResolverNamedExport(t *testing.T) {
	pkg := &sem.Definition{Name: "util", Exports: []*sem.ExportDecl{
		{FromPackage: "math", Name: "Add"},
	}}
	r := NewPackageExportResolver(nil, nil)

	if exp, _ := r.Resolve(pkg, "math", "Add"); exp == nil {
		t.Fatal("expected the exact `export math::Add` to match")
	}
	if exp, _ := r.Resolve(pkg, "math", "Sub"); exp != nil {
		t.Fatal("did not expect a differently-named import to be re-exported")
	}
	if exp, _ := r.Resolve(pkg, "other", "Add"); exp != nil {
		t.Fatal("did not expect a same-named import from a different package to be re-exported")
	}
}

func TestPackageExportResolverForceElaboratesOnce(t *testing.T) {
	pkg := &sem.Definition{Name: "util"}
	calls := 0
	r := NewPackageExportResolver(func(p *sem.Definition) { calls++ }, nil)

	if _, err := r.Resolve(pkg, "x", "Y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Resolve(pkg, "x", "Y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the package body to be force-elaborated exactly once, got %d calls", calls)
	}
	if pkg.Color != sem.ColorBlack || !pkg.ForceElaborated {
		t.Fatalf("expected the package to end Black and ForceElaborated, got color=%v forceElaborated=%v", pkg.Color, pkg.ForceElaborated)
	}
}

func TestPackageExportResolverDetectsCycle(t *testing.T) {
	pkg := &sem.Definition{Name: "a", Color: sem.ColorGrey}
	r := NewPackageExportResolver(nil, nil)

	_, err := r.Resolve(pkg, "b", "X")
	if err == nil {
		t.Fatal("expected a cyclic export error when the package is already Grey")
	}
	if _, ok := err.(*CyclicExportError); !ok {
		t.Fatalf("expected a *CyclicExportError, got %T", err)
	}
	if pkg.Color != sem.ColorBlack {
		t.Fatalf("expected the cyclic package to be marked Black after detection, got %v", pkg.Color)
	}
}
