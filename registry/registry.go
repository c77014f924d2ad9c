// Package registry implements the DefinitionRegistry: the component that
// turns a bare or qualified cell reference, plus the caller's scope and
// any applicable ConfigRule, into a concrete Definition, a ConfigBlock to
// re-root through, or a failure sentinel.
//
// It lives apart from sem (the data model) and deps (the library set) so
// that neither of those packages needs to know about the other: registry
// depends on both, avoiding the import cycle sem/deps would otherwise need
// to resolve lookups against each other.
package registry

import (
	"fmt"

	"vela/deps"
	"vela/logging"
	"vela/sem"
)

// LookupResultKind tags which alternative a Lookup call produced.
type LookupResultKind int

const (
	ResultDefinition LookupResultKind = iota
	ResultConfig
	ResultUninstantiated
)

// LookupResult is the tagged-union return of DefinitionRegistry.Lookup:
// a module-like definition, a ConfigBlock, or an UninstantiatedDef
// placeholder for a name that did not resolve.
type LookupResult struct {
	Kind           LookupResultKind
	Definition     *sem.Definition
	Config         *sem.ConfigBlock
	Uninstantiated *sem.UninstantiatedDef
}

// DefinitionRegistry holds every Definition and ConfigBlock discovered
// across all libraries in a compilation, indexed for fast lookup. It is
// populated once per compilation, before elaboration begins, and never
// mutated afterward.
type DefinitionRegistry struct {
	libs *deps.Registry

	// defsByLibrary[library][cellName] holds the unique definition named
	// cellName in that library. Definitions are unique per library --
	// ties within a library are impossible.
	defsByLibrary   map[string]map[string]*sem.Definition
	configsByLibrary map[string]map[string]*sem.ConfigBlock
}

// NewDefinitionRegistry creates an empty registry scoped to libs.
func NewDefinitionRegistry(libs *deps.Registry) *DefinitionRegistry {
	return &DefinitionRegistry{
		libs:             libs,
		defsByLibrary:    make(map[string]map[string]*sem.Definition),
		configsByLibrary: make(map[string]map[string]*sem.ConfigBlock),
	}
}

// RegisterDefinition adds def to lib's namespace. Re-registering the same
// name within a library overwrites the previous entry; callers are
// expected to have already diagnosed duplicate design units before this
// point (parsing/collaborator concern, not this registry's).
func (dr *DefinitionRegistry) RegisterDefinition(lib *deps.SourceLibrary, def *sem.Definition) {
	m, ok := dr.defsByLibrary[lib.Name]
	if !ok {
		m = make(map[string]*sem.Definition)
		dr.defsByLibrary[lib.Name] = m
	}
	m[def.Name] = def
}

// DefinitionsIn returns every Definition registered under lib, in no
// particular order; used by implicit-top detection to scan every known
// definition for references.
func (dr *DefinitionRegistry) DefinitionsIn(lib *deps.SourceLibrary) []*sem.Definition {
	m, ok := dr.defsByLibrary[lib.Name]
	if !ok {
		return nil
	}
	defs := make([]*sem.Definition, 0, len(m))
	for _, d := range m {
		defs = append(defs, d)
	}
	return defs
}

// RegisterConfig adds a named ConfigBlock to lib's namespace.
func (dr *DefinitionRegistry) RegisterConfig(lib *deps.SourceLibrary, cfg *sem.ConfigBlock) {
	m, ok := dr.configsByLibrary[lib.Name]
	if !ok {
		m = make(map[string]*sem.ConfigBlock)
		dr.configsByLibrary[lib.Name] = m
	}
	m[cfg.Name] = cfg
}

// lookupInLibrary returns whichever of a Definition or ConfigBlock named
// cell exists in library libName, if any.
func (dr *DefinitionRegistry) lookupInLibrary(libName, cell string) (def *sem.Definition, cfg *sem.ConfigBlock, ok bool) {
	if m, ok2 := dr.defsByLibrary[libName]; ok2 {
		if d, ok3 := m[cell]; ok3 {
			return d, nil, true
		}
	}
	if m, ok2 := dr.configsByLibrary[libName]; ok2 {
		if c, ok3 := m[cell]; ok3 {
			return nil, c, true
		}
	}
	return nil, nil, false
}

// LookupLocal resolves name directly within lib's own namespace, with no
// liblist fallback and no config redirection: the narrower, name-scoped
// lookup an instantiation tries before the ordinary Lookup search, since a
// checker is name-scoped rather than registered for global lookup the way
// a module or interface is.
func (dr *DefinitionRegistry) LookupLocal(name string, lib *deps.SourceLibrary) (*sem.Definition, bool) {
	if lib == nil {
		return nil, false
	}
	def, _, ok := dr.lookupInLibrary(lib.Name, name)
	return def, ok
}

// UnknownLibraryError is emitted by a qualified lookup naming a library
// that was never registered.
type UnknownLibraryError struct {
	Library string
}

func (e *UnknownLibraryError) Error() string {
	return fmt.Sprintf("unknown library `%s`", e.Library)
}

// Lookup resolves an unqualified or qualified cell reference from a caller
// scope:
//
//  1. rule.UseCell, if set, is the target; else the target is the bare
//     name in the caller's own library-less form.
//  2. the effective search liblist is computed from, in priority order,
//     an explicit library on the target, the rule's own Liblist, the
//     inherited liblist, or the caller's library followed by global order.
//  3. L* is walked in order for the first library containing the name.
//  4. qualified names bypass L* entirely and are looked up directly.
//  5. failure produces an UninstantiatedDef placeholder with exactly one
//     diagnostic logged at the call site. The one exception is a qualified
//     name whose library was never registered: that returns an
//     *UnknownLibraryError and logs nothing itself.
func (dr *DefinitionRegistry) Lookup(
	name string,
	callerLib *deps.SourceLibrary,
	rule *sem.ConfigRule,
	inheritedLiblist []string,
	lctx *logging.LogContext,
	pos *logging.TextPosition,
) (LookupResult, error) {
	target := sem.ConfigCellId{Cell: name}
	if rule != nil && rule.UseCell != nil {
		target = *rule.UseCell
	}

	// Step 4: qualified names bypass the liblist entirely.
	if target.Library != "" {
		lib, ok := dr.libs.Lookup(target.Library)
		if !ok {
			return LookupResult{}, &UnknownLibraryError{Library: target.Library}
		}
		if def, cfg, ok := dr.lookupInLibrary(lib.Name, target.Cell); ok {
			return wrapFound(def, cfg), nil
		}
		logging.LogCompileError(lctx, fmt.Sprintf("unknown module `%s` in library `%s`", target.Cell, lib.Name), logging.LMKLookup, pos)
		return LookupResult{Kind: ResultUninstantiated, Uninstantiated: &sem.UninstantiatedDef{RequestedName: name, Position: pos}}, nil
	}

	searchOrder := dr.effectiveLiblist(callerLib, rule, inheritedLiblist)

	for _, libName := range searchOrder {
		if def, cfg, ok := dr.lookupInLibrary(libName, target.Cell); ok {
			return wrapFound(def, cfg), nil
		}
	}

	logging.LogCompileError(lctx, fmt.Sprintf("unknown module `%s`", target.Cell), logging.LMKLookup, pos)
	return LookupResult{Kind: ResultUninstantiated, Uninstantiated: &sem.UninstantiatedDef{RequestedName: name, Position: pos}}, nil
}

// effectiveLiblist computes the effective search order L* for one lookup.
func (dr *DefinitionRegistry) effectiveLiblist(callerLib *deps.SourceLibrary, rule *sem.ConfigRule, inherited []string) []string {
	if rule != nil && len(rule.Liblist) > 0 {
		return rule.Liblist
	}
	if len(inherited) > 0 {
		return inherited
	}

	order := []string{}
	if callerLib != nil {
		order = append(order, callerLib.Name)
	}
	for _, lib := range dr.libs.GlobalOrder() {
		if callerLib == nil || lib.Name != callerLib.Name {
			order = append(order, lib.Name)
		}
	}
	return order
}

func wrapFound(def *sem.Definition, cfg *sem.ConfigBlock) LookupResult {
	if cfg != nil {
		return LookupResult{Kind: ResultConfig, Config: cfg}
	}
	return LookupResult{Kind: ResultDefinition, Definition: def}
}
