package resolve

import (
	"vela/logging"
	"vela/sem"
)

// resolveCheckerInstantiation builds one checker instantiation found by the
// local, name-scoped lookup resolveInstantiation tries before its ordinary
// definition lookup. Grounded on CheckerInstanceSymbol::fromSyntax: the
// nesting-depth cap, the fork-join prohibition, and the
// checker-inside-another-checker's-procedure prohibition are all checked
// before any instance is built. Formal-argument substitution and the
// input-port default-expression fallback need no separate machinery here --
// both are already generic to every InstanceBody via BuildPortConnections,
// since a checker's formal arguments are carried as an ordinary Port list.
//
// Validating the statement kinds allowed inside a checker's own procedures
// (always_comb/always_ff/always_latch, no blocking assignment in
// always_ff) is out of scope here: this repo does not model statements at
// all, the same boundary that keeps expression evaluation out of
// InstanceBuilder and ParameterBuilder, so there is nothing in the data
// model for that restriction to walk.
func (e *Elaborator) resolveCheckerInstantiation(stmt *InstantiationSyntax, def *sem.Definition, enclosingDef *sem.Definition, parent *sem.Instance, ctx *elabContext) {
	if ctx.checkerDepth+1 > e.Opts.MaxCheckerInstanceDepth {
		logging.LogCompileError(enclosingDef.LogContext, "checker instantiation exceeds the maximum nesting depth", logging.LMKResourceCap, stmt.Position)
		return
	}
	if stmt.BlockKind == "forkjoin" {
		logging.LogCompileError(enclosingDef.LogContext, "a checker may not be instantiated inside a fork-join block", logging.LMKContainment, stmt.Position)
		return
	}
	if ctx.enclosingKind == sem.DefChecker && stmt.IsProcedural {
		logging.LogCompileError(enclosingDef.LogContext, "a checker may not be instantiated inside another checker's procedure", logging.LMKContainment, stmt.Position)
		return
	}

	childPath := append(append([]string{}, ctx.path...), stmt.Name)
	childCtx := *ctx
	childCtx.path = childPath
	childCtx.checkerDepth = ctx.checkerDepth + 1
	childCtx.callerLib = def.SourceLibrary
	childCtx.enclosingKind = def.Kind

	e.instantiateChild(def, stmt, parent, ctx, &childCtx)
}

// instantiateChild builds def's instance (or instance array) for stmt,
// appends it to parent, and recursively expands each resulting leaf body
// under childCtx. Shared by resolveInstantiation's ordinary path and
// resolveCheckerInstantiation, since both end in the same
// build-append-recurse sequence once their own pre-checks pass.
func (e *Elaborator) instantiateChild(def *sem.Definition, stmt *InstantiationSyntax, parent *sem.Instance, ctx, childCtx *elabContext) {
	pb := NewParameterBuilder(def, ctx.overrideNode, def.LogContext)
	ib := NewInstanceBuilder(def, pb, ctx.overrideNode, childCtx.resolvedConfig, ctx.underBind, def.LogContext)
	ib.MaxInstanceArray = e.Opts.MaxInstanceArray
	ib.AllowBareValParamAssignment = e.Opts.AllowBareValParamAssignment

	built := ib.Create(stmt)

	switch v := built.(type) {
	case *sem.Instance:
		v.Path = childCtx.path
		appendChild(parent, v, nil)
		e.expandBody(v, childCtx)
	case *sem.InstanceArray:
		appendChild(parent, nil, v)
		for _, elem := range v.Elements {
			elem.Path = append(append([]string{}, childCtx.path...), elem.Name)
			e.expandBody(elem, childCtx)
		}
	}
}
