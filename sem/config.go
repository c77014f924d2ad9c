package sem

import "vela/logging"

// ConfigCellId identifies a cell to be configured, with an optional library
// qualifier: "lib.cell" or bare "cell". Two ConfigCellId values with the
// same fields compare equal, so this type is safe as a map key.
type ConfigCellId struct {
	Library string // "" means unqualified -- resolved via liblist, not library
	Cell    string
}

// ConfigRule is one `cell`/`instance` rule inside a ConfigBlock: it takes
// a "use" form, which pins a specific target cell (possibly itself a
// ConfigBlock), a "liblist" form, which narrows the search order for
// unqualified lookups under its path, or both. UseCell and Liblist are
// independent slots, and either form may carry ParamBindings.
type ConfigRule struct {
	// CellId is the bare or qualified reference this rule matches, i.e.
	// what `cell [lib.]name` names. Unused for instance-path overrides,
	// which key on the hierarchy override trie instead.
	CellId ConfigCellId

	// UseCell is set for a "use" rule: the caller's lookup should resolve
	// exactly to this cell (or, if it names a ConfigBlock, re-root
	// through it) rather than search a liblist.
	UseCell *ConfigCellId

	// Liblist is set for a "liblist" rule: the search order to use in
	// place of the inherited/global one.
	Liblist []string

	ParamBindings []*ParameterOverride

	Position *logging.TextPosition
}

// CellOverride is one `cell [lib.]name (use … | liblist …)` rule, scoped
// to a specific library qualifier when SpecificLib is set.
type CellOverride struct {
	SpecificLib string // "" if the cell_stmt named no library qualifier
	Rule        *ConfigRule

	Position *logging.TextPosition
}

// ConfigBlock is a named configuration of top cells, library search order,
// and cell/instance-specific overrides.
type ConfigBlock struct {
	Name string

	// TopCells are the cells this config declares as elaboration roots.
	// A config that does not name exactly one top cannot be the target of
	// a config-to-config redirect -- doing so is diagnosed as an error and
	// the redirecting instance is left uninstantiated.
	TopCells []ConfigCellId

	// DefaultLiblist is the library search order used when no instance
	// override names a more specific one.
	DefaultLiblist []string

	// CellOverrides is keyed by bare cell name.
	CellOverrides map[string][]*CellOverride

	// InstanceOverrides is the trie of per-instance overrides, keyed first
	// by the top cell's instance name and then by each hierarchical path
	// segment.
	InstanceOverrides *HierarchyOverrideNode

	LocalParams []*ParameterDecl

	Position *logging.TextPosition
}

// ParameterOverride is one `param = expr` or positional override supplied
// either directly on an instantiation statement or via a config rule's
// ParamBindings.
type ParameterOverride struct {
	Name      string // "" for a positional (ordered) override
	ValueExpr interface{}
	Position  *logging.TextPosition
}

// ResolvedConfig is the per-instance-traversal config context: the
// ConfigBlock a top (or config redirect) was elaborated under, the
// effective liblist, and the single ConfigRule (if any) that applies at
// the current instance path, already disambiguated by specificity. It
// lives only for the elaboration traversal rooted at the instance that
// created it, and is inherited by child instances unless overridden.
type ResolvedConfig struct {
	// UseConfig is the ConfigBlock this traversal is rooted under, if any;
	// nil when elaborating outside any configuration. Consulted for
	// cell-level overrides (CellOverrides) alongside the instance-path
	// trie.
	UseConfig *ConfigBlock

	Liblist []string
	Rule    *ConfigRule
}
