package resolve

import (
	"fmt"

	"vela/logging"
	"vela/sem"
)

// PackageExportResolver handles package export visibility: on first lookup
// of a name not directly declared in a package, force-elaborate that
// package's body (wildcard imports inside it may discover new exports),
// then decide whether the name is visible through `export *::*`,
// `export P::*`, or `export P::name` declarations.
//
// The cycle guard is a three-color DFS over the package import graph, the
// same shape used for detecting self-referential type definitions: a
// package is White before it is visited, Grey while its own
// force-elaboration is in flight, and Black once finished. Encountering a
// Grey package during force-elaboration means the import graph cycles back
// on itself; the resolver reports it once and treats the reference as
// unresolved rather than recursing forever.
type PackageExportResolver struct {
	// ElaborateBody force-elaborates a package's own definition so its
	// wildcard imports can be discovered; supplied by the Elaborator so
	// this resolver does not need to import it back (avoiding a cycle).
	ElaborateBody func(pkg *sem.Definition)

	LogContext *logging.LogContext
}

// NewPackageExportResolver builds a resolver that delegates force
// elaboration to elaborateBody.
func NewPackageExportResolver(elaborateBody func(pkg *sem.Definition), lctx *logging.LogContext) *PackageExportResolver {
	return &PackageExportResolver{ElaborateBody: elaborateBody, LogContext: lctx}
}

// CyclicExportError reports a package-import cycle discovered while
// force-elaborating to resolve an export.
type CyclicExportError struct {
	Package string
}

func (e *CyclicExportError) Error() string {
	return fmt.Sprintf("cyclic package export involving `%s`", e.Package)
}

// Resolve decides whether name, imported into pkg from some source, may be
// re-exported to an importer outside pkg. Returns the ExportDecl that
// grants visibility, or nil if none does.
func (r *PackageExportResolver) Resolve(pkg *sem.Definition, fromPackage, name string) (*sem.ExportDecl, error) {
	if err := r.ensureElaborated(pkg); err != nil {
		return nil, err
	}

	for _, exp := range pkg.Exports {
		if exp.FromPackage == "" && exp.Wildcard {
			return exp, nil // export *::*
		}
		if exp.FromPackage == fromPackage && exp.Wildcard {
			return exp, nil // export P::*
		}
		if exp.FromPackage == fromPackage && !exp.Wildcard && exp.Name == name {
			return exp, nil // export P::name
		}
	}

	return nil, nil
}

// ensureElaborated forces pkg's body to elaborate exactly once, applying
// the three-color cycle guard.
func (r *PackageExportResolver) ensureElaborated(pkg *sem.Definition) error {
	switch pkg.Color {
	case sem.ColorBlack:
		return nil
	case sem.ColorGrey:
		logging.LogCompileError(r.LogContext, fmt.Sprintf("cyclic package export involving `%s`", pkg.Name), logging.LMKLookup, pkg.Position)
		pkg.Color = sem.ColorBlack
		return &CyclicExportError{Package: pkg.Name}
	}

	pkg.Color = sem.ColorGrey
	if !pkg.ForceElaborated && r.ElaborateBody != nil {
		r.ElaborateBody(pkg)
		pkg.ForceElaborated = true
	}
	pkg.Color = sem.ColorBlack
	return nil
}
