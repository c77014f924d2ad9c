package resolve

import (
	"fmt"

	"vela/deps"
	"vela/logging"
	"vela/registry"
	"vela/sem"
	"vela/syntax"
)

// CompilationOptions carries the driver-supplied knobs governing a single
// elaboration run: the explicit top list, resource caps, and the two
// feature flags that change elaboration behavior at the edges of the
// hierarchy.
type CompilationOptions struct {
	ExplicitTops                []string
	MaxInstanceArray            int
	MaxCheckerInstanceDepth     int
	AllowTopLevelIfacePorts     bool
	AllowBareValParamAssignment bool
}

// DefaultCompilationOptions mirrors the resource caps baked into
// InstanceBuilder. Zero-value options carry caps of 0, which reject every
// instance array and every checker instantiation, so drivers start from
// these defaults.
func DefaultCompilationOptions() CompilationOptions {
	return CompilationOptions{
		MaxInstanceArray:        defaultMaxInstanceArray,
		MaxCheckerInstanceDepth: 32,
	}
}

// Elaborator drives the whole hierarchy walk: it selects top-level roots,
// resolves instantiation statements in scope, applies config rules,
// creates bind instances, and recursively expands bodies. Execution is
// single-threaded and re-entrant: a component may recurse arbitrarily deep
// resolving a lazily-computed attribute before returning, but nothing here
// spawns a goroutine.
type Elaborator struct {
	Libs *deps.Registry
	Defs *registry.DefinitionRegistry
	Opts CompilationOptions

	// Exports resolves package-qualified member references (`P::name`)
	// during instantiation-statement resolution. It is wired in after
	// construction, once it exists, since the resolver itself needs a
	// reference back to ElaboratePackageBody to force-elaborate.
	Exports *PackageExportResolver
}

// NewElaborator constructs an Elaborator over an already-populated
// DefinitionRegistry.
func NewElaborator(libs *deps.Registry, defs *registry.DefinitionRegistry, opts CompilationOptions) *Elaborator {
	return &Elaborator{Libs: libs, Defs: defs, Opts: opts}
}

// elabContext threads the state that changes as the Elaborator descends
// the hierarchy: the current config/liblist context, containment kind of
// the nearest enclosing instance, checker-nesting depth, and whether this
// subtree is uninstantiated.
type elabContext struct {
	resolvedConfig   *sem.ResolvedConfig
	overrideNode     *sem.HierarchyOverrideNode
	path             []string
	callerLib        *deps.SourceLibrary
	enclosingKind    sem.DefKind
	underBind        bool
	checkerDepth     int

	// isUninstantiated marks a subtree that should resolve every nested
	// instantiation to an UninstantiatedDef placeholder instead of a real
	// instance. Nothing in this package ever sets it to true: the one case
	// that would (an instantiation statement inside an untaken conditional
	// generate block) requires modeling generate-block condition evaluation,
	// which is the out-of-scope expression/statement collaborator's job the
	// same way array dimensions and parameter values are. The field and its
	// Step 1 check stay in place so that collaborator can flip it on once it
	// exists, without this package's resolution order changing.
	isUninstantiated bool
}

// ElaborateTops selects and elaborates every top-level root, honoring an
// explicit top list when one is given.
func (e *Elaborator) ElaborateTops(lctx *logging.LogContext) []*sem.Instance {
	if len(e.Opts.ExplicitTops) == 0 {
		return e.elaborateImplicitTops(lctx)
	}

	var tops []*sem.Instance
	for _, spec := range e.Opts.ExplicitTops {
		tops = append(tops, e.elaborateExplicitTop(spec, lctx)...)
	}
	return tops
}

// elaborateExplicitTop resolves one `name`, `lib.name`, `name:config`, or
// `lib.name:config` entry from the explicit top list.
func (e *Elaborator) elaborateExplicitTop(spec string, lctx *logging.LogContext) []*sem.Instance {
	cellPart, configName := splitConfigSuffix(spec)

	if configName != "" {
		result, err := e.Defs.Lookup(configName, nil, nil, nil, lctx, nil)
		if err != nil || result.Kind != registry.ResultConfig {
			logging.LogConfigError("Config", fmt.Sprintf("unknown configuration `%s`", configName))
			return nil
		}
		return e.elaborateConfigTops(result.Config, lctx)
	}

	lib, cell := splitQualified(cellPart)
	var callerLib *deps.SourceLibrary
	if lib != "" {
		l, ok := e.Libs.Lookup(lib)
		if !ok {
			logging.LogConfigError("Config", fmt.Sprintf("unknown library `%s`", lib))
			return nil
		}
		callerLib = l
	}

	result, err := e.Defs.Lookup(cell, callerLib, nil, nil, lctx, nil)
	if err != nil {
		logging.LogConfigError("Config", err.Error())
		return nil
	}
	if result.Kind == registry.ResultUninstantiated {
		// Lookup has already diagnosed the unknown cell; an explicit top
		// that names nothing produces no root.
		return nil
	}
	return []*sem.Instance{e.elaborateRoot(result, cell, lctx)}
}

// elaborateConfigTops resolves every top cell listed by a ConfigBlock in
// that config's own context: a config resolves to its listed top cells,
// which are then resolved in the config's own liblist context.
func (e *Elaborator) elaborateConfigTops(cfg *sem.ConfigBlock, lctx *logging.LogContext) []*sem.Instance {
	rc := &sem.ResolvedConfig{UseConfig: cfg, Liblist: cfg.DefaultLiblist}

	var tops []*sem.Instance
	for _, topId := range cfg.TopCells {
		var callerLib *deps.SourceLibrary
		if topId.Library != "" {
			l, ok := e.Libs.Lookup(topId.Library)
			if !ok {
				logging.LogConfigError("Config", fmt.Sprintf("unknown library `%s`", topId.Library))
				continue
			}
			callerLib = l
		}

		result, err := e.Defs.Lookup(topId.Cell, callerLib, nil, rc.Liblist, lctx, cfg.Position)
		if err != nil {
			logging.LogConfigError("Config", err.Error())
			continue
		}

		inst := e.elaborateRootWithConfig(result, topId.Cell, rc, cfg.InstanceOverrides, lctx)
		tops = append(tops, inst)
	}
	return tops
}

// elaborateImplicitTops takes every module-like definition that is never
// referenced by any instantiation statement as a top; implicit-top
// detection happens in a separate pass over every known definition.
// Primitives, checkers, packages, and configs are never implicit tops.
func (e *Elaborator) elaborateImplicitTops(lctx *logging.LogContext) []*sem.Instance {
	referenced := make(map[string]bool) // keyed by library name + "." + cell name

	for _, lib := range e.Libs.All() {
		for _, def := range e.Defs.DefinitionsIn(lib) {
			for _, stmt := range ExtractInstantiations(def.BodyAST) {
				name := cellRefOf(stmt.SyntaxId.(*syntax.ASTBranch))
				referenced[lib.Name+"."+name] = true
			}
		}
	}

	var tops []*sem.Instance
	for _, lib := range e.Libs.All() {
		for _, def := range e.Defs.DefinitionsIn(lib) {
			if !isModuleLike(def.Kind) || referenced[lib.Name+"."+def.Name] {
				continue
			}
			if hasUnboundPortParams(def) {
				continue
			}
			tops = append(tops, e.elaborateRoot(registry.LookupResult{Kind: registry.ResultDefinition, Definition: def}, def.Name, lctx))
		}
	}
	return tops
}

func hasUnboundPortParams(def *sem.Definition) bool {
	for _, p := range def.Parameters {
		if p.IsPortParam && p.DefaultExpr == nil {
			return true
		}
	}
	return false
}

func isModuleLike(kind sem.DefKind) bool {
	switch kind {
	case sem.DefModule, sem.DefInterface, sem.DefProgram:
		return true
	default:
		return false
	}
}

func (e *Elaborator) elaborateRoot(result registry.LookupResult, name string, lctx *logging.LogContext) *sem.Instance {
	return e.elaborateRootWithConfig(result, name, &sem.ResolvedConfig{}, nil, lctx)
}

func (e *Elaborator) elaborateRootWithConfig(result registry.LookupResult, name string, rc *sem.ResolvedConfig, overrideRoot *sem.HierarchyOverrideNode, lctx *logging.LogContext) *sem.Instance {
	if result.Kind == registry.ResultConfig {
		tops := e.elaborateConfigTops(result.Config, lctx)
		if len(tops) != 1 {
			logging.LogConfigError("Config", "ambiguous config redirection: target config does not name a single top cell")
			return &sem.Instance{Kind: sem.KindUninstantiated, Name: name}
		}
		return tops[0]
	}

	if result.Kind == registry.ResultUninstantiated {
		return &sem.Instance{Kind: sem.KindUninstantiated, Name: name, Def: &sem.UninstantiatedDefOrDefinition{Uninstantiated: result.Uninstantiated}}
	}

	def := result.Definition
	ctx := &elabContext{
		resolvedConfig: rc,
		overrideNode:   overrideRoot,
		path:           []string{name},
		callerLib:      def.SourceLibrary,
		enclosingKind:  def.Kind,
	}

	pb := NewParameterBuilder(def, overrideRoot, def.LogContext)
	ib := NewInstanceBuilder(def, pb, overrideRoot, rc, false, def.LogContext)
	ib.MaxInstanceArray = e.Opts.MaxInstanceArray
	ib.AllowBareValParamAssignment = e.Opts.AllowBareValParamAssignment
	ib.IsTopLevel = true
	ib.AllowTopLevelIfacePorts = e.Opts.AllowTopLevelIfacePorts

	inst := ib.createLeaf(&InstantiationSyntax{Name: name, Position: def.Position}, overrideRoot, nil)
	inst.Path = ctx.path
	e.expandBody(inst, ctx)
	return inst
}

// ElaboratePackageBody force-elaborates a package definition's own body so
// its wildcard imports can be discovered, for use as the ElaborateBody
// callback a PackageExportResolver needs.
func (e *Elaborator) ElaboratePackageBody(pkg *sem.Definition) {
	synthetic := &sem.Instance{
		Kind: sem.KindPackage,
		Name: pkg.Name,
		Def:  &sem.UninstantiatedDefOrDefinition{Definition: pkg},
	}
	ctx := &elabContext{
		resolvedConfig: &sem.ResolvedConfig{},
		path:           []string{pkg.Name},
		callerLib:      pkg.SourceLibrary,
		enclosingKind:  pkg.Kind,
	}
	e.expandBody(synthetic, ctx)
}

// expandBody walks every instantiation statement in inst's definition body
// and recursively resolves, builds, and nests child instances.
func (e *Elaborator) expandBody(inst *sem.Instance, ctx *elabContext) {
	if inst.Def == nil || inst.Def.Definition == nil {
		return
	}
	def := inst.Def.Definition

	for _, stmt := range ExtractInstantiations(def.BodyAST) {
		e.resolveInstantiation(stmt, def, inst, ctx)
	}

	e.resolveBinds(ctx.overrideNode, def, inst, ctx)
}

// resolveBinds inserts instances for every BindDirective that targets this
// scope, drawn both from the hierarchy override node and from the
// definition's own bind list. A bind may never appear beneath another
// bind.
func (e *Elaborator) resolveBinds(overrideNode *sem.HierarchyOverrideNode, def *sem.Definition, parent *sem.Instance, ctx *elabContext) {
	var binds []*sem.BindDirective
	if overrideNode != nil {
		binds = append(binds, overrideNode.Binds...)
	}
	binds = append(binds, def.BindDirectives...)

	for _, bind := range binds {
		if ctx.underBind {
			logging.LogCompileError(def.LogContext, "a bind may not appear beneath another bind", logging.LMKContainment, bind.Position)
			continue
		}
		if bind.TargetDef == nil {
			continue
		}
		if bind.TargetDef.Kind == sem.DefPrimitive {
			logging.LogCompileError(def.LogContext, "primitives may not be bind targets", logging.LMKContainment, bind.Position)
			continue
		}

		bindCtx := *ctx
		bindCtx.underBind = true
		bindCtx.callerLib = bind.TargetDef.SourceLibrary
		bindCtx.enclosingKind = bind.TargetDef.Kind

		pb := NewParameterBuilder(bind.TargetDef, overrideNode, bind.TargetDef.LogContext)
		ib := NewInstanceBuilder(bind.TargetDef, pb, overrideNode, ctx.resolvedConfig, true, bind.TargetDef.LogContext)
		ib.MaxInstanceArray = e.Opts.MaxInstanceArray
		ib.AllowBareValParamAssignment = e.Opts.AllowBareValParamAssignment

		child := ib.createLeaf(&InstantiationSyntax{Name: bind.InstanceName, Position: bind.Position}, overrideNode, nil)
		appendChild(parent, child, nil)
		e.expandBody(child, &bindCtx)
	}
}

// resolveInstantiation resolves a single instantiation statement: the
// uninstantiated short-circuit, per-instance config lookup, definition
// resolution (with config redirection), containment checks, and finally
// instance construction and recursive expansion.
func (e *Elaborator) resolveInstantiation(stmt *InstantiationSyntax, enclosingDef *sem.Definition, parent *sem.Instance, ctx *elabContext) {
	cellName := cellRefOf(stmt.SyntaxId.(*syntax.ASTBranch))

	// Step 1: uninstantiated scopes short-circuit to a placeholder.
	if ctx.isUninstantiated {
		child := &sem.Instance{
			Kind: sem.KindUninstantiated,
			Name: stmt.Name,
			Def:  &sem.UninstantiatedDefOrDefinition{Uninstantiated: &sem.UninstantiatedDef{RequestedName: cellName, Position: stmt.Position}},
		}
		appendChild(parent, child, nil)
		return
	}

	// Step 2: a local, name-scoped lookup for a checker defined in the same
	// library as the enclosing scope. A checker is never registered for
	// global liblist/config lookup the way a module or interface is, so
	// this tries the narrower, unqualified lookup first and, on a hit,
	// skips the whole config-rule/liblist machinery below entirely.
	if checkerDef, ok := e.Defs.LookupLocal(cellName, ctx.callerLib); ok && checkerDef.Kind == sem.DefChecker {
		e.resolveCheckerInstantiation(stmt, checkerDef, enclosingDef, parent, ctx)
		return
	}

	// Step 3: find a per-instance config rule, if any, for this path, then
	// merge in any cell-level override for cellName -- the instance-path
	// rule wins per-slot, since it is the more specific of the two.
	childPath := append(append([]string{}, ctx.path...), stmt.Name)
	var rule *sem.ConfigRule
	if ctx.resolvedConfig != nil {
		if node, ok := walkOverridePath(ctx.overrideNode, childPath); ok && node != nil {
			node.Visited = true
			rule = ruleFromOverrideNode(node)
		}
		rule = mergeCellOverride(rule, ctx.resolvedConfig.UseConfig, cellName, ctx.callerLib)
	}

	// Step 4: resolve the effective definition, re-rooting through a
	// ConfigBlock result.
	result, err := e.Defs.Lookup(cellName, ctx.callerLib, rule, ctx.resolvedConfig.Liblist, enclosingDef.LogContext, stmt.Position)
	if err != nil {
		logging.LogConfigError("Config", err.Error())
		return
	}

	childCtx := *ctx
	childCtx.path = childPath

	if result.Kind == registry.ResultConfig {
		redirectConfig := result.Config
		if len(redirectConfig.TopCells) != 1 {
			candidates := make([]string, 0, len(redirectConfig.TopCells))
			for _, tc := range redirectConfig.TopCells {
				candidates = append(candidates, tc.Cell)
			}
			logging.LogCompileError(enclosingDef.LogContext, fmt.Sprintf("ambiguous config redirection: config `%s` names %d top cells %v, not exactly one", redirectConfig.Name, len(candidates), candidates), logging.LMKConfig, stmt.Position)
			appendChild(parent, &sem.Instance{Kind: sem.KindUninstantiated, Name: stmt.Name}, nil)
			return
		}
		top := redirectConfig.TopCells[0]
		redirectLiblist := redirectConfig.DefaultLiblist
		nested, err := e.Defs.Lookup(top.Cell, ctx.callerLib, nil, redirectLiblist, enclosingDef.LogContext, stmt.Position)
		if err != nil || nested.Kind != registry.ResultDefinition {
			appendChild(parent, &sem.Instance{Kind: sem.KindUninstantiated, Name: stmt.Name}, nil)
			return
		}
		result = nested
		childCtx.resolvedConfig = &sem.ResolvedConfig{UseConfig: redirectConfig, Liblist: redirectLiblist}
	}

	if result.Kind != registry.ResultDefinition {
		appendChild(parent, &sem.Instance{Kind: sem.KindUninstantiated, Name: stmt.Name, Def: &sem.UninstantiatedDefOrDefinition{Uninstantiated: result.Uninstantiated}}, nil)
		return
	}

	def := result.Definition

	// Step 6: containment rules.
	if violation := checkContainment(ctx.enclosingKind, def.Kind, ctx.underBind); violation != "" {
		logging.LogCompileError(enclosingDef.LogContext, violation, logging.LMKContainment, stmt.Position)
		return
	}

	// A checker found through the ordinary registry lookup rather than the
	// local one above (cross-library, or simply not yet visible to
	// LookupLocal) still gets the full checker-instance treatment, not
	// just the depth cap: resolveCheckerInstantiation owns every one of
	// its containment rules.
	if def.Kind == sem.DefChecker {
		e.resolveCheckerInstantiation(stmt, def, enclosingDef, parent, ctx)
		return
	}

	childCtx.callerLib = def.SourceLibrary
	childCtx.enclosingKind = def.Kind

	e.instantiateChild(def, stmt, parent, ctx, &childCtx)
}

func appendChild(parent *sem.Instance, inst *sem.Instance, arr *sem.InstanceArray) {
	if parent.Body == nil {
		parent.Body = &sem.InstanceBody{}
	}
	if inst != nil {
		parent.Body.Members = append(parent.Body.Members, &sem.BodyMember{Instance: inst})
	}
	if arr != nil {
		parent.Body.Members = append(parent.Body.Members, &sem.BodyMember{InstanceArray: arr})
	}
}

// checkContainment enforces the hierarchy's nesting rules, returning a
// non-empty diagnostic message on violation.
func checkContainment(parentKind, childKind sem.DefKind, underBind bool) string {
	switch parentKind {
	case sem.DefProgram:
		if childKind == sem.DefModule {
			return "a program may not contain modules"
		}
	case sem.DefInterface:
		if childKind == sem.DefProgram {
			return "an interface may not contain programs"
		}
	case sem.DefChecker:
		if isModuleLike(childKind) {
			return "a checker body may not contain module-like instances"
		}
	}
	if childKind == sem.DefPrimitive && underBind {
		return "primitives may not be bind targets"
	}
	return ""
}

// walkOverridePath descends an override trie along path, reporting
// whether the full path matched a node.
func walkOverridePath(root *sem.HierarchyOverrideNode, path []string) (*sem.HierarchyOverrideNode, bool) {
	if root == nil {
		return nil, false
	}
	return root.Walk(path)
}

// ruleFromOverrideNode adapts a HierarchyOverrideNode's per-instance-path
// use/liblist/param overrides into the ConfigRule shape
// DefinitionRegistry.Lookup expects.
func ruleFromOverrideNode(node *sem.HierarchyOverrideNode) *sem.ConfigRule {
	if node == nil {
		return nil
	}
	if node.UseCell == nil && len(node.Liblist) == 0 && len(node.ParamOverrides) == 0 {
		return nil
	}
	return &sem.ConfigRule{
		UseCell:       node.UseCell,
		Liblist:       node.Liblist,
		ParamBindings: node.ParamOverrides,
	}
}

// mergeCellOverride looks up cfg's CellOverrides for cellName and merges
// any matching rule into instRule component-wise (instRule's own slots
// always win, since an instance-path override is more specific than a
// cell-wide one). A CellOverride with a SpecificLib only applies when it
// names the instantiating scope's own library; one with no SpecificLib
// applies regardless of caller.
func mergeCellOverride(instRule *sem.ConfigRule, cfg *sem.ConfigBlock, cellName string, callerLib *deps.SourceLibrary) *sem.ConfigRule {
	if cfg == nil {
		return instRule
	}

	var cellRule *sem.ConfigRule
	for _, ov := range cfg.CellOverrides[cellName] {
		if ov.SpecificLib != "" && (callerLib == nil || ov.SpecificLib != callerLib.Name) {
			continue
		}
		cellRule = ov.Rule
		if ov.SpecificLib != "" {
			break // an exact library match beats a wildcard entry
		}
	}
	if cellRule == nil {
		return instRule
	}
	if instRule == nil {
		return cellRule
	}

	merged := *instRule
	if merged.UseCell == nil {
		merged.UseCell = cellRule.UseCell
	}
	if len(merged.Liblist) == 0 {
		merged.Liblist = cellRule.Liblist
	}
	merged.ParamBindings = append(append([]*sem.ParameterOverride{}, cellRule.ParamBindings...), merged.ParamBindings...)
	return &merged
}

func splitConfigSuffix(spec string) (cell, config string) {
	for i := len(spec) - 1; i >= 0; i-- {
		if spec[i] == ':' {
			return spec[:i], spec[i+1:]
		}
	}
	return spec, ""
}

func splitQualified(spec string) (lib, cell string) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == '.' {
			return spec[:i], spec[i+1:]
		}
	}
	return "", spec
}
