package sem

import (
	"vela/logging"
	"vela/syntax"
)

// PortConnectionKind tags how a single Port ended up connected once
// InstanceBuilder resolved its instantiation statement's connection syntax
// against its Definition's port list.
type PortConnectionKind int

const (
	// ConnExpr is an explicit connection: an ordered expression, or a named
	// connection with an expression, or a `.*` wildcard match against a
	// same-named identifier already visible in the enclosing scope.
	ConnExpr PortConnectionKind = iota

	// ConnEmpty is a port left unconnected: an empty named connection
	// (`.port()`), an ordered slot past the end of the connection list, or
	// an unconnected port with no default to fall back on.
	ConnEmpty

	// ConnDefault is a port that fell back to its own declared default,
	// either because a `.*` wildcard found nothing by the port's name or
	// because the port was never mentioned at all.
	ConnDefault

	// ConnAutoInterface is a top-level interface port auto-instantiated to
	// a default interface definition rather than connected to anything the
	// instantiation syntax named.
	ConnAutoInterface
)

// PortConnection is the resolved binding of one Port to its connection
// expression (if any) on a specific instantiation.
type PortConnection struct {
	Port *Port
	Kind PortConnectionKind

	// Expr carries the connection expression for ConnExpr and ConnDefault;
	// nil for ConnEmpty and ConnAutoInterface, and for a ConnExpr made by a
	// `.*` wildcard match, which names no expression. Expression semantics
	// themselves are a collaborator concern -- this is the opaque AST the
	// connection resolved to, nothing more.
	Expr *syntax.ASTBranch

	Position *logging.TextPosition
}

// ImplicitNet is a net discovered and materialized while building port
// connections: a simple identifier that appeared in a connection
// expression but was not already declared in the instantiating scope.
type ImplicitNet struct {
	Name    string
	NetType string

	Position *logging.TextPosition
}
