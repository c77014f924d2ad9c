package resolve

import (
	"vela/logging"
	"vela/sem"
	"vela/syntax"
)

// standardImportMarker is the Raw payload of the implicit standard-package
// wildcard import every body carries.
type standardImportMarker struct{}

// headerImportMarker is the Raw payload of one header package import,
// carried in textual order.
type headerImportMarker struct {
	PackageName string
}

// InstanceBodyFromDefinition constructs an InstanceBody's member list from
// def, following a fixed ordering contract: implicit standard import, then
// header imports, then port parameters, then the non-port parameters in
// declaration order, then bind directives. Other declared body items are
// not added as members; the Elaborator appends child instances after
// this list. Parameter resolution is delegated to a
// ParameterBuilder seeded from the same overrideNode so that hierarchy
// overrides land on the right members. instSyntax may be nil (a synthetic
// root, a package's force-elaboration body) in which case every port
// resolves through its own default or is left unconnected.
func InstanceBodyFromDefinition(def *sem.Definition, instSyntax *InstantiationSyntax, overrideNode *sem.HierarchyOverrideNode, isFromBind, isTopLevel, allowTopLevelIfacePorts bool, lctx *logging.LogContext) *sem.InstanceBody {
	body := &sem.InstanceBody{
		Definition:   def,
		OverrideNode: overrideNode,
		IsFromBind:   isFromBind,
		Ports:        def.PortList,
	}

	var connSyntax *syntax.ASTBranch
	if instSyntax != nil {
		connSyntax = instSyntax.PortConnSyntax
	}
	body.Connections, body.ImplicitNets = BuildPortConnections(def.PortList, connSyntax, scopeNames(def), def.DefaultNetType, isTopLevel, allowTopLevelIfacePorts, lctx)

	// Step 1: implicit standard package import.
	body.Members = append(body.Members, &sem.BodyMember{Raw: standardImportMarker{}})

	// Step 2: header package imports, in textual order. The collaborator
	// parser surfaces these as BodyAST's "header_import" branches; this
	// repo does not interpret import paths itself, so they pass through
	// as opaque markers.
	for _, imp := range headerImportNames(def) {
		body.Members = append(body.Members, &sem.BodyMember{Raw: headerImportMarker{PackageName: imp}})
	}

	// Steps 3-4: port parameters in declaration order. The port list is not
	// a member; it is carried on body.Ports.
	for _, p := range def.Parameters {
		if p.IsPortParam {
			body.Members = append(body.Members, &sem.BodyMember{Parameter: p})
		}
	}

	// Step 5: non-port parameters in declared order, each paired with its
	// ParameterBuilder-resolved value. No other body item is added here.
	pb := NewParameterBuilder(def, overrideNode, lctx)
	resolved := pb.Build(nil, false)
	for _, p := range def.Parameters {
		if p.IsPortParam {
			continue
		}
		body.Members = append(body.Members, &sem.BodyMember{
			Parameter:     p,
			ResolvedValue: resolved[p.Name].Value,
		})
	}

	// Step 6: bind directives, from the override node first and then the
	// definition's own list, appended after everything else.
	if overrideNode != nil {
		for _, bind := range overrideNode.Binds {
			body.Members = append(body.Members, &sem.BodyMember{Raw: bind})
		}
	}
	for _, bind := range def.BindDirectives {
		body.Members = append(body.Members, &sem.BodyMember{Raw: bind})
	}

	return body
}

// headerImportNames extracts the names of this definition's header package
// imports. Import parsing is a collaborator concern; the elaboration core
// only needs the list of names to preserve ordering when building bodies,
// so this walks every top-level "header_import" branch of BodyAST.
func headerImportNames(def *sem.Definition) []string {
	if def.BodyAST == nil {
		return nil
	}
	var names []string
	for _, item := range def.BodyAST.Content {
		branch, ok := item.(*syntax.ASTBranch)
		if !ok || branch.Name != "header_import" || branch.Len() == 0 {
			continue
		}
		if leaf, ok := branch.Content[0].(*syntax.ASTLeaf); ok {
			names = append(names, leaf.Value)
		}
	}
	return names
}
