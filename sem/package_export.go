package sem

import "vela/logging"

// PackageImport is one import line inside a package body: either a
// wildcard import of everything another package exports, or an explicit
// import of one name.
type PackageImport struct {
	FromPackage string
	Wildcard    bool
	Name        string // unused when Wildcard is set

	Position *logging.TextPosition
}

// ExportDecl is one `export` declaration inside a package body:
// `export *::*` re-exports everything imported from anywhere,
// `export P::*` re-exports everything imported from package P, and
// `export P::name` re-exports one specific name imported from P.
type ExportDecl struct {
	FromPackage string // "" means the wildcard-of-wildcards form, export *::*
	Wildcard    bool
	Name        string

	Position *logging.TextPosition
}

// PackageColor tags a package's position in the three-color export-cycle
// guard used by PackageExportResolver.
type PackageColor int

const (
	ColorWhite PackageColor = iota
	ColorGrey
	ColorBlack
)
