package resolve

import (
	"testing"

	"vela/sem"
	"vela/syntax"
)

func identRef(name string) *syntax.ASTBranch {
	return branch("identifier_ref", ident(name))
}

func TestBuildPortConnectionsOrderedCreatesImplicitNets(t *testing.T) {
	ports := []*sem.Port{
		{Name: "a", Direction: "input"},
		{Name: "b", Direction: "output"},
	}
	connSyntax := branch("port_connections",
		branch("ordered_connection", identRef("netA")),
		branch("ordered_connection", identRef("netB")),
	)

	conns, nets := BuildPortConnections(ports, connSyntax, map[string]bool{}, "wire", false, false, nil)

	if len(conns) != 2 || conns[0].Kind != sem.ConnExpr || conns[1].Kind != sem.ConnExpr {
		t.Fatalf("expected two expression connections, got %+v", conns)
	}
	if len(nets) != 2 || nets[0].Name != "netA" || nets[1].Name != "netB" {
		t.Fatalf("expected implicit nets netA then netB in order, got %+v", nets)
	}
}

func TestBuildPortConnectionsSkipsImplicitNetsAlreadyInScope(t *testing.T) {
	ports := []*sem.Port{{Name: "a", Direction: "input"}}
	connSyntax := branch("port_connections", branch("ordered_connection", identRef("w")))

	_, nets := BuildPortConnections(ports, connSyntax, map[string]bool{"w": true}, "wire", false, false, nil)
	if len(nets) != 0 {
		t.Fatalf("expected no implicit net for a name already in scope, got %+v", nets)
	}
}

func TestBuildPortConnectionsNoImplicitNetsWhenDefaultNetTypeDisabled(t *testing.T) {
	ports := []*sem.Port{{Name: "a", Direction: "input"}}
	connSyntax := branch("port_connections", branch("ordered_connection", identRef("w")))

	_, nets := BuildPortConnections(ports, connSyntax, map[string]bool{}, "", false, false, nil)
	if len(nets) != 0 {
		t.Fatalf("expected no implicit nets when the scope's default net type is disabled, got %+v", nets)
	}
}

func TestBuildPortConnectionsMixedOrderedAndNamedFallsBackToDefaults(t *testing.T) {
	ports := []*sem.Port{{Name: "a", Direction: "input"}}
	connSyntax := branch("port_connections",
		branch("ordered_connection", identRef("w")),
		branch("named_connection", ident("a"), identRef("w")),
	)

	conns, nets := BuildPortConnections(ports, connSyntax, map[string]bool{}, "wire", false, false, nil)
	if len(conns) != 1 || conns[0].Kind != sem.ConnEmpty {
		t.Fatalf("expected the mixed-syntax statement to fall back to the unconnected default, got %+v", conns)
	}
	if nets != nil {
		t.Fatalf("expected no implicit nets on the fallback path, got %+v", nets)
	}
}

func TestBuildPortConnectionsNamedUnknownPortDiagnoses(t *testing.T) {
	ports := []*sem.Port{{Name: "a", Direction: "input"}}
	connSyntax := branch("port_connections",
		branch("named_connection", ident("a"), identRef("w")),
		branch("named_connection", ident("bogus"), identRef("x")),
	)

	conns, _ := BuildPortConnections(ports, connSyntax, map[string]bool{}, "wire", false, false, nil)
	if len(conns) != 1 || conns[0].Kind != sem.ConnExpr {
		t.Fatalf("expected the one real port to resolve to its expression, got %+v", conns)
	}
}

func TestBuildPortConnectionsNamedEmptyConnection(t *testing.T) {
	ports := []*sem.Port{{Name: "a", Direction: "input"}}
	connSyntax := branch("port_connections", branch("named_connection", ident("a")))

	conns, _ := BuildPortConnections(ports, connSyntax, map[string]bool{}, "wire", false, false, nil)
	if len(conns) != 1 || conns[0].Kind != sem.ConnEmpty {
		t.Fatalf("expected an empty named connection, got %+v", conns)
	}
}

func TestBuildPortConnectionsWildcardFallsBackToPortDefault(t *testing.T) {
	ports := []*sem.Port{{Name: "a", DefaultExpr: identRef("tieoff")}}
	connSyntax := branch("port_connections", branch("wildcard_connection"))

	conns, _ := BuildPortConnections(ports, connSyntax, map[string]bool{}, "wire", false, false, nil)
	if len(conns) != 1 || conns[0].Kind != sem.ConnDefault {
		t.Fatalf("expected the wildcard connection to fall back to the port default, got %+v", conns)
	}
}

func TestConnectUnconnectedAutoInstantiatesTopLevelIfacePort(t *testing.T) {
	port := &sem.Port{Name: "bus", IsInterface: true}
	conn := connectUnconnected(port, true, true, nil)
	if conn.Kind != sem.ConnAutoInterface {
		t.Fatalf("expected a top-level interface port to auto-instantiate, got %+v", conn)
	}
}

func TestConnectUnconnectedLeavesNonTopLevelIfacePortEmpty(t *testing.T) {
	port := &sem.Port{Name: "bus", IsInterface: true}
	conn := connectUnconnected(port, false, true, nil)
	if conn.Kind != sem.ConnEmpty {
		t.Fatalf("expected a non-top-level interface port with no connection to be left empty, got %+v", conn)
	}
}

func TestSimpleIdentifierRejectsCompoundExpression(t *testing.T) {
	if _, ok := simpleIdentifier(branch("binary_expr", identRef("a"), identRef("b"))); ok {
		t.Fatal("expected a compound expression to not be treated as a simple identifier")
	}
}

func TestScopeNamesCollectsPortsParamsAndNetDecls(t *testing.T) {
	def := &sem.Definition{
		Parameters: []*sem.ParameterDecl{{Name: "WIDTH"}},
		PortList:   []*sem.Port{{Name: "clk"}},
		BodyAST:    branch("module_body", branch("net_decl", ident("w"))),
	}
	names := scopeNames(def)
	for _, want := range []string{"WIDTH", "clk", "w"} {
		if !names[want] {
			t.Fatalf("expected %q in scope names, got %+v", want, names)
		}
	}
}
