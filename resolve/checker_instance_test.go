package resolve

import (
	"testing"

	"vela/deps"
	"vela/registry"
	"vela/sem"
)

func checkerStmt(name string) *InstantiationSyntax {
	b := instantiation("sb_checker", name)
	stmt := extractOne(b)
	return stmt
}

func TestResolveCheckerInstantiationDepthCapDiagnoses(t *testing.T) {
	libs := deps.NewRegistry("work")
	work := libs.Default()
	defs := registry.NewDefinitionRegistry(libs)
	checkerDef := &sem.Definition{Kind: sem.DefChecker, Name: "sb_checker", SourceLibrary: work}
	defs.RegisterDefinition(work, checkerDef)

	e := NewElaborator(libs, defs, DefaultCompilationOptions())
	parent := &sem.Instance{Name: "top"}
	ctx := &elabContext{checkerDepth: e.Opts.MaxCheckerInstanceDepth, callerLib: work}

	e.resolveCheckerInstantiation(checkerStmt("c1"), checkerDef, checkerDef, parent, ctx)

	if parent.Body != nil && len(parent.Body.Members) != 0 {
		t.Fatalf("expected no child instance past the depth cap, got %+v", parent.Body)
	}
}

func TestResolveCheckerInstantiationForkJoinProhibited(t *testing.T) {
	libs := deps.NewRegistry("work")
	work := libs.Default()
	defs := registry.NewDefinitionRegistry(libs)
	checkerDef := &sem.Definition{Kind: sem.DefChecker, Name: "sb_checker", SourceLibrary: work}

	e := NewElaborator(libs, defs, DefaultCompilationOptions())
	parent := &sem.Instance{Name: "top"}
	ctx := &elabContext{callerLib: work}
	stmt := checkerStmt("c1")
	stmt.BlockKind = "forkjoin"

	e.resolveCheckerInstantiation(stmt, checkerDef, checkerDef, parent, ctx)

	if parent.Body != nil && len(parent.Body.Members) != 0 {
		t.Fatalf("expected no child instance inside a fork-join block, got %+v", parent.Body)
	}
}

func TestResolveCheckerInstantiationInsideCheckerProcedureProhibited(t *testing.T) {
	libs := deps.NewRegistry("work")
	work := libs.Default()
	defs := registry.NewDefinitionRegistry(libs)
	checkerDef := &sem.Definition{Kind: sem.DefChecker, Name: "sb_checker", SourceLibrary: work}

	e := NewElaborator(libs, defs, DefaultCompilationOptions())
	parent := &sem.Instance{Name: "top"}
	ctx := &elabContext{callerLib: work, enclosingKind: sem.DefChecker}
	stmt := checkerStmt("c1")
	stmt.IsProcedural = true

	e.resolveCheckerInstantiation(stmt, checkerDef, checkerDef, parent, ctx)

	if parent.Body != nil && len(parent.Body.Members) != 0 {
		t.Fatalf("expected no child instance inside another checker's procedure, got %+v", parent.Body)
	}
}

func TestResolveCheckerInstantiationBuildsInstance(t *testing.T) {
	libs := deps.NewRegistry("work")
	work := libs.Default()
	defs := registry.NewDefinitionRegistry(libs)
	checkerDef := &sem.Definition{Kind: sem.DefChecker, Name: "sb_checker", SourceLibrary: work}
	defs.RegisterDefinition(work, checkerDef)

	e := NewElaborator(libs, defs, DefaultCompilationOptions())
	parent := &sem.Instance{Name: "top"}
	ctx := &elabContext{callerLib: work, path: []string{"top"}}

	e.resolveCheckerInstantiation(checkerStmt("c1"), checkerDef, checkerDef, parent, ctx)

	if parent.Body == nil || len(parent.Body.Members) != 1 {
		t.Fatalf("expected exactly one child instance, got %+v", parent.Body)
	}
	child := parent.Body.Members[0].Instance
	if child == nil || child.Kind != sem.KindChecker || child.Name != "c1" {
		t.Fatalf("expected a checker-kind instance named c1, got %+v", child)
	}
}

func TestResolveInstantiationDispatchesLocalCheckerLookup(t *testing.T) {
	libs := deps.NewRegistry("work")
	work := libs.Default()
	defs := registry.NewDefinitionRegistry(libs)
	checkerDef := &sem.Definition{Kind: sem.DefChecker, Name: "sb_checker", SourceLibrary: work}
	topDef := &sem.Definition{
		Kind:          sem.DefModule,
		Name:          "top",
		SourceLibrary: work,
		BodyAST:       branch("module_body", instantiation("sb_checker", "c1")),
	}
	defs.RegisterDefinition(work, checkerDef)
	defs.RegisterDefinition(work, topDef)

	e := NewElaborator(libs, defs, DefaultCompilationOptions())
	tops := e.ElaborateTops(nil)

	if len(tops) != 1 {
		t.Fatalf("expected one implicit top, got %d", len(tops))
	}
	// Members[0] is the implicit standard-package import every body starts with.
	if tops[0].Body == nil || len(tops[0].Body.Members) != 2 {
		t.Fatalf("expected the standard import plus one checker child, got %+v", tops[0].Body)
	}
	child := tops[0].Body.Members[1].Instance
	if child == nil || child.Kind != sem.KindChecker {
		t.Fatalf("expected a checker-kind child instance, got %+v", child)
	}
}
