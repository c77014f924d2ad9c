package resolve

import (
	"testing"

	"vela/logging"
	"vela/sem"
)

func init() {
	logging.Initialize("", "silent")
}

func testDef(params ...*sem.ParameterDecl) *sem.Definition {
	return &sem.Definition{Name: "adder", Parameters: params}
}

func TestParameterBuilderDefaultValues(t *testing.T) {
	def := testDef(
		&sem.ParameterDecl{Name: "WIDTH", DefaultExpr: nil},
		&sem.ParameterDecl{Name: "DEPTH", DefaultExpr: nil},
	)
	pb := NewParameterBuilder(def, nil, nil)

	resolved := pb.Build(nil, false)
	if len(resolved) != 2 {
		t.Fatalf("expected 2 resolved params, got %d", len(resolved))
	}
	if resolved["WIDTH"].Invalid {
		t.Fatal("default-valued param should not be invalid")
	}
}

func TestParameterBuilderPositionalBindsPortParamsOnly(t *testing.T) {
	def := testDef(
		&sem.ParameterDecl{Name: "WIDTH", IsPortParam: true},
		&sem.ParameterDecl{Name: "LOCAL", IsLocalParam: true},
	)
	pb := NewParameterBuilder(def, nil, nil)

	assignments := []*sem.ParameterOverride{{Name: "", ValueExpr: 8}}
	resolved := pb.Build(assignments, false)

	if resolved["WIDTH"].Value != 8 {
		t.Fatalf("expected positional assignment to bind WIDTH, got %v", resolved["WIDTH"].Value)
	}
}

func TestParameterBuilderNamedAssignmentRejectsLocalParam(t *testing.T) {
	def := testDef(&sem.ParameterDecl{Name: "LOCAL", IsLocalParam: true})
	pb := NewParameterBuilder(def, nil, nil)

	assignments := []*sem.ParameterOverride{{Name: "LOCAL", ValueExpr: 1}}
	resolved := pb.Build(assignments, false)

	if resolved["LOCAL"].Value == 1 {
		t.Fatal("local parameter must not be overridable by a named assignment")
	}
}

func TestParameterBuilderForceInvalid(t *testing.T) {
	def := testDef(&sem.ParameterDecl{Name: "WIDTH", IsPortParam: true})
	pb := NewParameterBuilder(def, nil, nil)

	resolved := pb.Build(nil, true)
	if !resolved["WIDTH"].Invalid {
		t.Fatal("expected forceInvalid to mark every resolved param invalid")
	}
}

func TestParameterBuilderHierarchyOverrideAppliesAndMarksVisited(t *testing.T) {
	def := testDef(&sem.ParameterDecl{Name: "WIDTH", IsPortParam: true})
	node := sem.NewHierarchyOverrideNode()
	node.ParamOverrides = append(node.ParamOverrides, &sem.ParameterOverride{Name: "WIDTH", ValueExpr: 16})

	pb := NewParameterBuilder(def, node, nil)
	resolved := pb.Build(nil, false)

	if resolved["WIDTH"].Value != 16 {
		t.Fatalf("expected defparam-style override to win, got %v", resolved["WIDTH"].Value)
	}
	if !node.Visited {
		t.Fatal("expected override node to be marked visited")
	}
}
