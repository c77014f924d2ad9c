package resolve

import (
	"testing"

	"vela/sem"
)

func leafDef(name string) *sem.Definition {
	return &sem.Definition{Kind: sem.DefModule, Name: name}
}

func TestInstanceBuilderCreateScalar(t *testing.T) {
	def := leafDef("adder")
	pb := NewParameterBuilder(def, nil, nil)
	ib := NewInstanceBuilder(def, pb, nil, nil, false, nil)

	stmt := &InstantiationSyntax{Name: "myInst", SyntaxId: branch("cell_ref", ident("adder"))}
	built := ib.Create(stmt)

	inst, ok := built.(*sem.Instance)
	if !ok {
		t.Fatalf("expected a scalar *sem.Instance, got %T", built)
	}
	if inst.Name != "myInst" || inst.Kind != sem.KindInstance {
		t.Fatalf("unexpected instance: %+v", inst)
	}
	if inst.Body == nil || inst.Body.Definition != def {
		t.Fatal("expected the instance body to be built from the same definition")
	}
}

func TestInstanceBuilderCreateArray(t *testing.T) {
	def := leafDef("cell")
	pb := NewParameterBuilder(def, nil, nil)
	ib := NewInstanceBuilder(def, pb, nil, nil, false, nil)
	ib.MaxInstanceArray = 100

	stmt := &InstantiationSyntax{
		Name:       "cells",
		Dimensions: []DimensionRange{{Lo: 0, Hi: 3, Valid: true}},
	}
	built := ib.Create(stmt)

	arr, ok := built.(*sem.InstanceArray)
	if !ok {
		t.Fatalf("expected a *sem.InstanceArray, got %T", built)
	}
	if arr.Size() != 4 {
		t.Fatalf("expected 4 elements for [0:3], got %d", arr.Size())
	}
	if len(arr.Elements) != 4 {
		t.Fatalf("expected 4 built elements, got %d", len(arr.Elements))
	}
	for i, el := range arr.Elements {
		if el.ArrayIndex[0] != i {
			t.Fatalf("expected element %d to carry array index %d, got %v", i, i, el.ArrayIndex)
		}
	}
}

func TestInstanceBuilderCreateArrayExceedsCap(t *testing.T) {
	def := leafDef("cell")
	pb := NewParameterBuilder(def, nil, nil)
	ib := NewInstanceBuilder(def, pb, nil, nil, false, nil)
	ib.MaxInstanceArray = 2

	stmt := &InstantiationSyntax{
		Name:       "cells",
		Dimensions: []DimensionRange{{Lo: 0, Hi: 9, Valid: true}},
	}
	arr := ib.createArray(stmt)

	if arr.Elements != nil {
		t.Fatalf("expected no elements once the array exceeds the cap, got %d", len(arr.Elements))
	}
}

func TestInstanceBuilderCreateArrayInvalidDimension(t *testing.T) {
	def := leafDef("cell")
	pb := NewParameterBuilder(def, nil, nil)
	ib := NewInstanceBuilder(def, pb, nil, nil, false, nil)

	stmt := &InstantiationSyntax{
		Name:       "cells",
		Dimensions: []DimensionRange{{Valid: false}},
	}
	arr := ib.createArray(stmt)

	if arr.Elements != nil {
		t.Fatal("expected no elements when a dimension failed to evaluate")
	}
}

func TestChildOverrideNodePrefersSyntaxIdentityOverName(t *testing.T) {
	root := sem.NewHierarchyOverrideNode()
	syntaxId := branch("cell_ref", ident("adder"))

	bySyntax := root.Child(bySyntaxKey(syntaxId))
	byName := root.Child("myInst")

	def := leafDef("adder")
	pb := NewParameterBuilder(def, nil, nil)
	ib := NewInstanceBuilder(def, pb, root, nil, false, nil)

	got := ib.childOverrideNode(syntaxId, "myInst")
	if got != bySyntax {
		t.Fatalf("expected the syntax-identity node to win, got %+v (wanted %+v, name node was %+v)", got, bySyntax, byName)
	}
	if !bySyntax.Visited {
		t.Fatal("expected the matched override node to be marked visited")
	}
}

func TestChildOverrideNodeFallsBackToName(t *testing.T) {
	root := sem.NewHierarchyOverrideNode()
	byName := root.Child("myInst")

	def := leafDef("adder")
	pb := NewParameterBuilder(def, nil, nil)
	ib := NewInstanceBuilder(def, pb, root, nil, false, nil)

	got := ib.childOverrideNode(branch("cell_ref", ident("adder")), "myInst")
	if got != byName {
		t.Fatalf("expected name-based fallback to find the node, got %+v", got)
	}
}

func TestChildOverrideNodeNilParent(t *testing.T) {
	def := leafDef("adder")
	pb := NewParameterBuilder(def, nil, nil)
	ib := NewInstanceBuilder(def, pb, nil, nil, false, nil)

	if got := ib.childOverrideNode(nil, "myInst"); got != nil {
		t.Fatalf("expected nil when there is no parent override node, got %+v", got)
	}
}
