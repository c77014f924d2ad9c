package resolve

import (
	"fmt"

	"vela/logging"
	"vela/sem"
	"vela/syntax"
)

// BuildPortConnections resolves ports against the `port_connections` syntax
// attached to one instantiation statement (nil when the statement supplied
// none), producing one PortConnection per port in declaration order plus
// the implicit nets discovered along the way. connScope supplies the names
// already visible in the instantiating scope, so a connection expression
// naming one of them is a reference rather than an implicit net.
//
// Grounded on slang's createImplicitNets and the per-port connection loop
// in CheckerInstanceSymbol::fromSyntax: ordered and named connections
// cannot mix, a `.*` wildcard opens an implicit per-name lookup with a
// default-expression fallback, and every connection expression is scanned
// for a lone identifier that isn't declared anywhere else in scope.
func BuildPortConnections(ports []*sem.Port, connSyntax *syntax.ASTBranch, connScope map[string]bool, netType string, isTopLevel, allowTopLevelIfacePorts bool, lctx *logging.LogContext) ([]*sem.PortConnection, []*sem.ImplicitNet) {
	if connScope == nil {
		connScope = map[string]bool{}
	}

	if connSyntax == nil {
		return connectDefaults(ports, isTopLevel, allowTopLevelIfacePorts, lctx), nil
	}

	var hasOrdered, hasNamed, hasWildcard bool
	for _, item := range connSyntax.Content {
		b, ok := item.(*syntax.ASTBranch)
		if !ok {
			continue
		}
		switch b.Name {
		case "ordered_connection":
			hasOrdered = true
		case "named_connection":
			hasNamed = true
		case "wildcard_connection":
			hasWildcard = true
		}
	}

	if hasOrdered && (hasNamed || hasWildcard) {
		logging.LogCompileError(lctx, "cannot mix ordered and named port connections in one instantiation", logging.LMKPortConn, connSyntax.Position())
		return connectDefaults(ports, isTopLevel, allowTopLevelIfacePorts, lctx), nil
	}

	netNames := map[string]bool{}
	var implicitNets []*sem.ImplicitNet
	noteImplicit := func(expr *syntax.ASTBranch) {
		name, ok := simpleIdentifier(expr)
		if !ok || connScope[name] || netNames[name] || netType == "" {
			return
		}
		netNames[name] = true
		implicitNets = append(implicitNets, &sem.ImplicitNet{Name: name, NetType: netType, Position: expr.Position()})
	}

	if hasOrdered {
		return buildOrderedConnections(ports, connSyntax, noteImplicit, lctx), implicitNets
	}
	return buildNamedConnections(ports, connSyntax, hasWildcard, connScope, noteImplicit, isTopLevel, allowTopLevelIfacePorts, lctx), implicitNets
}

func buildOrderedConnections(ports []*sem.Port, connSyntax *syntax.ASTBranch, noteImplicit func(*syntax.ASTBranch), lctx *logging.LogContext) []*sem.PortConnection {
	var connections []*sem.PortConnection
	idx := 0
	for _, item := range connSyntax.Content {
		b, ok := item.(*syntax.ASTBranch)
		if !ok || b.Name != "ordered_connection" {
			continue
		}
		if idx >= len(ports) {
			logging.LogCompileError(lctx, "too many ordered port connections", logging.LMKPortConn, b.Position())
			idx++
			continue
		}
		port := ports[idx]
		idx++

		if b.Len() == 0 {
			connections = append(connections, &sem.PortConnection{Port: port, Kind: sem.ConnEmpty, Position: connSyntax.Position()})
			continue
		}
		expr, _ := b.Content[0].(*syntax.ASTBranch)
		if expr != nil {
			noteImplicit(expr)
		}
		connections = append(connections, &sem.PortConnection{Port: port, Kind: sem.ConnExpr, Expr: expr, Position: b.Position()})
	}
	for ; idx < len(ports); idx++ {
		connections = append(connections, connectUnconnected(ports[idx], false, false, lctx))
	}
	return connections
}

func buildNamedConnections(ports []*sem.Port, connSyntax *syntax.ASTBranch, hasWildcard bool, connScope map[string]bool, noteImplicit func(*syntax.ASTBranch), isTopLevel, allowTopLevelIfacePorts bool, lctx *logging.LogContext) []*sem.PortConnection {
	type namedConn struct {
		expr   *syntax.ASTBranch
		empty  bool
		used   bool
		branch *syntax.ASTBranch
	}
	named := map[string]*namedConn{}

	for _, item := range connSyntax.Content {
		b, ok := item.(*syntax.ASTBranch)
		if !ok || b.Name != "named_connection" || b.Len() == 0 {
			continue
		}
		nameLeaf, ok := b.Content[0].(*syntax.ASTLeaf)
		if !ok {
			continue
		}
		nc := &namedConn{branch: b, empty: true}
		if b.Len() > 1 {
			if expr, ok := b.Content[1].(*syntax.ASTBranch); ok {
				nc.expr = expr
				nc.empty = false
			}
		}
		named[nameLeaf.Value] = nc
	}

	var connections []*sem.PortConnection
	for _, port := range ports {
		nc, explicit := named[port.Name]
		switch {
		case explicit:
			nc.used = true
			if nc.empty {
				connections = append(connections, &sem.PortConnection{Port: port, Kind: sem.ConnEmpty, Position: nc.branch.Position()})
				continue
			}
			noteImplicit(nc.expr)
			connections = append(connections, &sem.PortConnection{Port: port, Kind: sem.ConnExpr, Expr: nc.expr, Position: nc.expr.Position()})
		case hasWildcard:
			if connScope[port.Name] {
				connections = append(connections, &sem.PortConnection{Port: port, Kind: sem.ConnExpr, Position: port.Position})
			} else if port.DefaultExpr != nil {
				connections = append(connections, &sem.PortConnection{Port: port, Kind: sem.ConnDefault, Expr: port.DefaultExpr, Position: port.Position})
			} else {
				connections = append(connections, &sem.PortConnection{Port: port, Kind: sem.ConnEmpty, Position: port.Position})
			}
		default:
			connections = append(connections, connectUnconnected(port, isTopLevel, allowTopLevelIfacePorts, lctx))
		}
	}

	for name, nc := range named {
		if !nc.used {
			logging.LogCompileError(lctx, fmt.Sprintf("unknown port `%s` in named connection", name), logging.LMKPortConn, nc.branch.Position())
		}
	}

	return connections
}

// connectDefaults builds the unconnected-port fallback for every port, used
// when an instantiation carried no port_connections syntax at all.
func connectDefaults(ports []*sem.Port, isTopLevel, allowTopLevelIfacePorts bool, lctx *logging.LogContext) []*sem.PortConnection {
	connections := make([]*sem.PortConnection, 0, len(ports))
	for _, port := range ports {
		connections = append(connections, connectUnconnected(port, isTopLevel, allowTopLevelIfacePorts, lctx))
	}
	return connections
}

// connectUnconnected resolves one port that no connection syntax mentioned
// at all: a top-level interface port auto-instantiates when the compilation
// flag allows it, otherwise a declared default is used, otherwise it is left
// empty (diagnosed when the port is an interface port, since those have no
// implicit net fallback).
func connectUnconnected(port *sem.Port, isTopLevel, allowTopLevelIfacePorts bool, lctx *logging.LogContext) *sem.PortConnection {
	if port.IsInterface && isTopLevel && allowTopLevelIfacePorts {
		return &sem.PortConnection{Port: port, Kind: sem.ConnAutoInterface, Position: port.Position}
	}
	if port.DefaultExpr != nil {
		return &sem.PortConnection{Port: port, Kind: sem.ConnDefault, Expr: port.DefaultExpr, Position: port.Position}
	}
	if port.IsInterface {
		logging.LogCompileError(lctx, fmt.Sprintf("interface port `%s` has no connection", port.Name), logging.LMKPortConn, port.Position)
	}
	return &sem.PortConnection{Port: port, Kind: sem.ConnEmpty, Position: port.Position}
}

// simpleIdentifier reports whether expr is (or trivially wraps) a single
// bare identifier, the only shape createImplicitNets ever turns into an
// implicit net -- a compound expression never is, regardless of what
// identifiers it contains.
func simpleIdentifier(expr *syntax.ASTBranch) (string, bool) {
	if expr == nil {
		return "", false
	}
	if expr.Name == "identifier_ref" && expr.Len() == 1 {
		if leaf, ok := expr.Content[0].(*syntax.ASTLeaf); ok && leaf.Kind == syntax.IDENTIFIER {
			return leaf.Value, true
		}
	}
	return "", false
}

// scopeNames collects the names already declared directly within def's
// scope -- parameters, ports, and top-level net declarations -- so
// BuildPortConnections can tell a real reference apart from a name that
// needs an implicit net.
func scopeNames(def *sem.Definition) map[string]bool {
	names := make(map[string]bool)
	for _, p := range def.Parameters {
		names[p.Name] = true
	}
	for _, p := range def.PortList {
		names[p.Name] = true
	}
	if def.BodyAST != nil {
		for _, item := range def.BodyAST.Content {
			b, ok := item.(*syntax.ASTBranch)
			if !ok || b.Name != "net_decl" || b.Len() == 0 {
				continue
			}
			if leaf, ok := b.Content[0].(*syntax.ASTLeaf); ok {
				names[leaf.Value] = true
			}
		}
	}
	return names
}
