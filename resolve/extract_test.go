package resolve

import (
	"testing"

	"vela/syntax"
)

func intLit(v string) *syntax.ASTLeaf {
	return &syntax.ASTLeaf{Kind: syntax.INTLIT, Value: v}
}

func TestExtractInstantiationsFindsEachStatement(t *testing.T) {
	body := branch("module_body",
		instantiation("adder", "a1"),
		branch("net_decl", ident("w")), // not an instantiation, must be skipped
		instantiation("adder", "a2"),
	)

	stmts := ExtractInstantiations(body)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 instantiation statements, got %d", len(stmts))
	}
	if stmts[0].Name != "a1" || stmts[1].Name != "a2" {
		t.Fatalf("unexpected statement names: %s, %s", stmts[0].Name, stmts[1].Name)
	}
}

func TestExtractInstantiationsNilBody(t *testing.T) {
	if stmts := ExtractInstantiations(nil); stmts != nil {
		t.Fatalf("expected nil for a nil body, got %v", stmts)
	}
}

func TestExtractDimensionValid(t *testing.T) {
	dimBranch := branch("dimension", intLit("0"), intLit("7"))
	stmt := extractOne(branch("instantiation_stmt", branch("cell_ref", ident("cell")), ident("arr"), dimBranch))

	if len(stmt.Dimensions) != 1 {
		t.Fatalf("expected one dimension, got %d", len(stmt.Dimensions))
	}
	if !stmt.Dimensions[0].Valid || stmt.Dimensions[0].Lo != 0 || stmt.Dimensions[0].Hi != 7 {
		t.Fatalf("unexpected dimension: %+v", stmt.Dimensions[0])
	}
}

func TestExtractDimensionInvalidNonLiteral(t *testing.T) {
	dimBranch := branch("dimension", ident("N"), intLit("7"))
	stmt := extractOne(branch("instantiation_stmt", branch("cell_ref", ident("cell")), ident("arr"), dimBranch))

	if stmt.Dimensions[0].Valid {
		t.Fatal("expected a non-literal dimension bound to be invalid")
	}
}

func TestIntLiteralNegative(t *testing.T) {
	n, ok := intLiteral(intLit("-3"))
	if !ok || n != -3 {
		t.Fatalf("expected -3, got %d ok=%v", n, ok)
	}
}

func TestIntLiteralRejectsNonInt(t *testing.T) {
	if _, ok := intLiteral(ident("N")); ok {
		t.Fatal("expected a bare identifier to not parse as an int literal")
	}
}

func TestExtractInstantiationsTagsForkJoinBlockKind(t *testing.T) {
	body := branch("module_body",
		branch("fork_join_block", instantiation("checkerA", "c1")),
		instantiation("adder", "a1"),
	)

	stmts := ExtractInstantiations(body)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 instantiation statements, got %d", len(stmts))
	}
	if stmts[0].Name != "c1" || stmts[0].BlockKind != "forkjoin" {
		t.Fatalf("expected c1 tagged forkjoin, got %+v", stmts[0])
	}
	if stmts[1].Name != "a1" || stmts[1].BlockKind != "" {
		t.Fatalf("expected a1 to carry no block kind, got %+v", stmts[1])
	}
}

func TestExtractInstantiationsTagsProceduralFromAlwaysFFBlock(t *testing.T) {
	body := branch("module_body",
		branch("always_ff_block", instantiation("checkerA", "c1")),
	)

	stmts := ExtractInstantiations(body)
	if len(stmts) != 1 || !stmts[0].IsProcedural {
		t.Fatalf("expected the nested instantiation to be marked procedural, got %+v", stmts)
	}
}

func TestCellRefOfReturnsEmptyForMalformedBranch(t *testing.T) {
	if name := cellRefOf(branch("instantiation_stmt")); name != "" {
		t.Fatalf("expected empty cell name for a branch with no children, got %q", name)
	}
	if name := cellRefOf(branch("instantiation_stmt", ident("notACellRef"))); name != "" {
		t.Fatalf("expected empty cell name when the first child isn't a cell_ref branch, got %q", name)
	}
}
