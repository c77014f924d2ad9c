package common

const (
	// UnitFileExtension is the conventional extension for a parsed design
	// unit source file referenced in diagnostics and library globs.
	UnitFileExtension = ".hdl"

	// LibraryMapFileName is the default name of the library map file
	// consulted by the driver before elaboration.
	LibraryMapFileName = "vela-libs.toml"

	// Version is the elaborator's version string.
	Version = "0.1.0"

	// DefaultLibraryName is the name of the library used for design units
	// that are not assigned to a named library by the library map.
	DefaultLibraryName = "work"
)

// InstallPath is the path to the vela installation directory (standard
// package sources, cached tables, etc.), set from the VELA_PATH environment
// variable by the driver.
var InstallPath = ""
