// Package build ties the collaborator-facing pieces (library map loading,
// source parsing) to the elaboration core (deps, registry, sem, resolve)
// into the single orchestration object the driver calls.
//
// Compiler mirrors the shape of a conventional front-end driver: a small
// struct holding the shared state for one compilation, a staged Compile
// method that reports success/failure, and named phases the CLI can show
// progress for. Parsing itself stays outside this package and outside the
// elaboration core entirely -- Compiler accepts already-parsed Definitions
// and ConfigBlocks through a LibraryLoader callback the driver supplies.
package build

import (
	"fmt"

	"vela/common"
	"vela/deps"
	"vela/libmap"
	"vela/logging"
	"vela/registry"
	"vela/resolve"
	"vela/sem"
)

// LibraryLoader turns the resolved file list for one library into the
// Definitions and ConfigBlocks it declares. The elaboration core never
// calls this itself; Compiler.LoadLibraries invokes it once per library in
// the order the library map declared them.
type LibraryLoader func(lib *deps.SourceLibrary, files []string) ([]*sem.Definition, []*sem.ConfigBlock, error)

// Compiler is the data structure responsible for maintaining the state of
// one elaboration run: the library registry, the populated
// DefinitionRegistry, and the Elaborator/PackageExportResolver pair built
// from them once loading completes.
type Compiler struct {
	Libs *deps.Registry
	Defs *registry.DefinitionRegistry
	Opts resolve.CompilationOptions

	LogContext *logging.LogContext

	elab    *resolve.Elaborator
	exports *resolve.PackageExportResolver
}

// NewCompiler creates a Compiler with an empty library registry seeded with
// the sentinel default library, ready to load a library map.
func NewCompiler(opts resolve.CompilationOptions, lctx *logging.LogContext) *Compiler {
	libs := deps.NewRegistry(common.DefaultLibraryName)
	return &Compiler{
		Libs:       libs,
		Defs:       registry.NewDefinitionRegistry(libs),
		Opts:       opts,
		LogContext: lctx,
	}
}

// LoadLibraries reads the library map at mapPath, registers every library
// it declares (in declaration order, fixing the priority-break-tie order
// used by lookup), and hands each library's resolved file list to load so
// the collaborator can parse it into Definitions/ConfigBlocks that get
// registered here.
func (c *Compiler) LoadLibraries(mapPath string, load LibraryLoader) error {
	logging.BeginPhase("Loading")

	entries, err := libmap.Load(mapPath)
	if err != nil {
		logging.EndPhase(false)
		return err
	}

	registered := libmap.RegisterAll(c.Libs, entries)
	for _, e := range entries {
		rl := registered[e.Name]

		defs, cfgs, err := load(rl.Library, rl.Files)
		if err != nil {
			logging.EndPhase(false)
			return fmt.Errorf("library `%s`: %w", e.Name, err)
		}

		for _, d := range defs {
			c.Defs.RegisterDefinition(rl.Library, d)
		}
		for _, cfg := range cfgs {
			c.Defs.RegisterConfig(rl.Library, cfg)
		}
	}

	logging.EndPhase(logging.ShouldProceed())
	return nil
}

// Elaborate builds the Elaborator and PackageExportResolver over the
// populated registry and runs top-level selection and recursive expansion.
// It returns the top-level instance forest and whether the run should be
// considered successful.
func (c *Compiler) Elaborate() ([]*sem.Instance, bool) {
	logging.BeginPhase("Elaborating")

	c.elab = resolve.NewElaborator(c.Libs, c.Defs, c.Opts)
	c.exports = resolve.NewPackageExportResolver(c.elab.ElaboratePackageBody, c.LogContext)
	c.elab.Exports = c.exports

	tops := c.elab.ElaborateTops(c.LogContext)

	success := logging.ShouldProceed()
	logging.EndPhase(success)
	return tops, success
}

// Compile runs a full library-map-driven elaboration and prints the
// compiler banner and closing summary around it. mapPath is the library map
// file; target is the requested top (or "" for implicit-top selection),
// used only for the banner. It returns the top-level instance forest.
func (c *Compiler) Compile(mapPath, target string, load LibraryLoader) ([]*sem.Instance, bool) {
	logging.CompileHeader(displayTarget(target), false)

	if err := c.LoadLibraries(mapPath, load); err != nil {
		logging.PrintErrorMessage("Library Map Error", err)
		logging.CompilationFinished(false)
		return nil, false
	}

	tops, success := c.Elaborate()
	logging.CompilationFinished(success)
	return tops, success
}

func displayTarget(target string) string {
	if target == "" {
		return "(implicit)"
	}
	return target
}
