package resolve

import (
	"fmt"

	"vela/logging"
	"vela/sem"
)

// ResolvedParam is one parameter's final value after positional, named, and
// hierarchy-override assignments have all been applied.
type ResolvedParam struct {
	Name    string
	Value   interface{}
	Invalid bool
}

// invalidSentinel is the value ResolvedParam carries when evaluation could
// not proceed: uninstantiated bodies force every parameter value invalid
// so that subsequent evaluation short-circuits without further
// diagnostics.
var invalidSentinel = struct{}{}

// ParameterBuilder constructs the ordered parameter vector for one
// Definition instantiation, applying assignment syntax first and then any
// hierarchy (defparam) overrides rooted at the instance's override node.
type ParameterBuilder struct {
	def          *sem.Definition
	overrideNode *sem.HierarchyOverrideNode
	lctx         *logging.LogContext

	ordered []*sem.ParameterDecl // port params first, then body params
}

// NewParameterBuilder prepares a builder for def. overrideNode may be nil
// if no hierarchy override applies to this instance.
func NewParameterBuilder(def *sem.Definition, overrideNode *sem.HierarchyOverrideNode, lctx *logging.LogContext) *ParameterBuilder {
	var portParams, bodyParams []*sem.ParameterDecl
	for _, p := range def.Parameters {
		if p.IsPortParam {
			portParams = append(portParams, p)
		} else {
			bodyParams = append(bodyParams, p)
		}
	}

	return &ParameterBuilder{
		def:          def,
		overrideNode: overrideNode,
		lctx:         lctx,
		ordered:      append(portParams, bodyParams...),
	}
}

// Build applies assignments (from an instantiation statement's parameter
// list, ordered or named) plus any hierarchy overrides, and returns the
// fully resolved parameter vector keyed by name. If forceInvalid is set
// (the enclosing instance is itself an UninstantiatedDef), every value is
// replaced by the invalid sentinel regardless of assignment.
func (b *ParameterBuilder) Build(assignments []*sem.ParameterOverride, forceInvalid bool) map[string]*ResolvedParam {
	resolved := make(map[string]*ResolvedParam, len(b.ordered))
	for _, p := range b.ordered {
		resolved[p.Name] = &ResolvedParam{Name: p.Name, Value: defaultValueOf(p)}
	}

	b.applyAssignments(assignments, resolved)
	b.applyHierarchyOverrides(resolved)

	if forceInvalid {
		for _, rp := range resolved {
			rp.Value = invalidSentinel
			rp.Invalid = true
		}
	}

	return resolved
}

// defaultValueOf returns the placeholder default carried by a parameter
// declaration; expression evaluation itself is out of scope for this repo,
// so the "value" here is simply the declared default expression, opaque to
// the elaboration core.
func defaultValueOf(p *sem.ParameterDecl) interface{} {
	if p.DefaultExpr != nil {
		return p.DefaultExpr
	}
	return nil
}

// applyAssignments binds the ordered/named overrides supplied directly on
// an instantiation statement.
func (b *ParameterBuilder) applyAssignments(assignments []*sem.ParameterOverride, resolved map[string]*ResolvedParam) {
	positionalIdx := 0

	// Only port parameters participate in positional binding, in
	// declaration order.
	var portNames []string
	for _, p := range b.ordered {
		if p.IsPortParam {
			portNames = append(portNames, p.Name)
		}
	}

	for _, a := range assignments {
		if a.Name == "" {
			// Ordered assignment: binds positionally to port parameters only.
			if positionalIdx >= len(portNames) {
				logging.LogCompileError(b.lctx, "too many positional parameter overrides", logging.LMKParam, a.Position)
				continue
			}
			resolved[portNames[positionalIdx]].Value = a.ValueExpr
			positionalIdx++
			continue
		}

		decl := b.findDecl(a.Name)
		if decl == nil {
			logging.LogCompileError(b.lctx, fmt.Sprintf("unknown parameter `%s`", a.Name), logging.LMKParam, a.Position)
			continue
		}
		if decl.IsLocalParam {
			logging.LogCompileError(b.lctx, fmt.Sprintf("cannot override local parameter `%s`", a.Name), logging.LMKParam, a.Position)
			continue
		}
		resolved[a.Name].Value = a.ValueExpr
	}
}

// applyHierarchyOverrides applies defparam-style overrides recorded on the
// instance's override node.
func (b *ParameterBuilder) applyHierarchyOverrides(resolved map[string]*ResolvedParam) {
	if b.overrideNode == nil {
		return
	}

	for _, o := range b.overrideNode.ParamOverrides {
		decl := b.findDecl(o.Name)
		if decl == nil {
			logging.LogCompileError(b.lctx, fmt.Sprintf("unknown parameter `%s` in hierarchy override", o.Name), logging.LMKParam, o.Position)
			continue
		}
		if decl.IsLocalParam {
			logging.LogCompileError(b.lctx, fmt.Sprintf("cannot override local parameter `%s` via defparam", o.Name), logging.LMKParam, o.Position)
			continue
		}
		resolved[o.Name].Value = o.ValueExpr
		b.overrideNode.Visited = true
	}
}

func (b *ParameterBuilder) findDecl(name string) *sem.ParameterDecl {
	for _, p := range b.ordered {
		if p.Name == name {
			return p
		}
	}
	return nil
}
