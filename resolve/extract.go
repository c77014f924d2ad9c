package resolve

import "vela/syntax"

// blockWrapperKind tags the handful of statement-block branch names whose
// direct children ExtractInstantiations also walks into: fork-join and
// generate blocks change how a nested checker instantiation is allowed to
// behave, so instantiations found inside them carry that context forward.
var blockWrapperKind = map[string]string{
	"fork_join_block": "forkjoin",
	"generate_block":  "generate",
}

// proceduralWrapperNames are the statement-block branches whose direct
// children are procedural statements rather than declarative module items;
// an instantiation_stmt (i.e. a checker instantiation used as a statement)
// found nested in one of these is procedural.
var proceduralWrapperNames = map[string]bool{
	"always_comb_block":  true,
	"always_ff_block":    true,
	"always_latch_block": true,
	"always_block":       true,
	"initial_block":      true,
}

// ExtractInstantiations walks a definition body for `instantiation_stmt`
// branches and returns each as an InstantiationSyntax, ready for the
// Elaborator to resolve. Array dimensions and parameter values are
// themselves expressions; evaluating them is the semantic collaborator's
// job, so only integer-literal leaves are evaluated eagerly here --
// anything else is marked invalid, which the InstanceBuilder already
// treats as evaluation having failed.
//
// The walk also descends into fork-join, generate, and procedural-block
// wrapper branches, at any nesting depth, since those are the contexts that
// change what a nested checker instantiation is allowed to do.
func ExtractInstantiations(body *syntax.ASTBranch) []*InstantiationSyntax {
	if body == nil {
		return nil
	}
	return extractFrom(body.Content, "", false)
}

func extractFrom(content []syntax.ASTNode, blockKind string, isProcedural bool) []*InstantiationSyntax {
	var stmts []*InstantiationSyntax
	for _, item := range content {
		branch, ok := item.(*syntax.ASTBranch)
		if !ok {
			continue
		}
		if branch.Name == "instantiation_stmt" {
			stmt := extractOne(branch)
			stmt.BlockKind = blockKind
			stmt.IsProcedural = isProcedural
			stmts = append(stmts, stmt)
			continue
		}
		if kind, ok := blockWrapperKind[branch.Name]; ok {
			stmts = append(stmts, extractFrom(branch.Content, kind, isProcedural)...)
		} else if proceduralWrapperNames[branch.Name] {
			stmts = append(stmts, extractFrom(branch.Content, blockKind, true)...)
		}
	}
	return stmts
}

func extractOne(branch *syntax.ASTBranch) *InstantiationSyntax {
	stmt := &InstantiationSyntax{SyntaxId: branch, Position: branch.Position()}

	for _, item := range branch.Content {
		switch v := item.(type) {
		case *syntax.ASTLeaf:
			if v.Kind == syntax.IDENTIFIER && stmt.Name == "" {
				// The first bare identifier not otherwise consumed is the
				// instance name (the cell name lives in the leading
				// cell_ref branch, see cellRefOf).
				stmt.Name = v.Value
			}
		case *syntax.ASTBranch:
			switch v.Name {
			case "dimension":
				stmt.Dimensions = append(stmt.Dimensions, extractDimension(v))
			case "param_bindings":
				stmt.ParamAssignments = append(stmt.ParamAssignments, parseParamBindings(v)...)
			case "port_connections":
				stmt.PortConnSyntax = v
			case "delay_or_param":
				if v.Len() == 1 {
					stmt.BareValueAssignment, _ = v.Content[0].(*syntax.ASTBranch)
				}
			}
		}
	}

	return stmt
}

func extractDimension(branch *syntax.ASTBranch) DimensionRange {
	if branch.Len() != 2 {
		return DimensionRange{Valid: false}
	}
	lo, loOk := intLiteral(branch.Content[0])
	hi, hiOk := intLiteral(branch.Content[1])
	if !loOk || !hiOk {
		return DimensionRange{Valid: false}
	}
	return DimensionRange{Lo: lo, Hi: hi, Valid: true}
}

func intLiteral(node syntax.ASTNode) (int, bool) {
	leaf, ok := node.(*syntax.ASTLeaf)
	if !ok || leaf.Kind != syntax.INTLIT {
		return 0, false
	}
	n := 0
	neg := false
	for i, c := range leaf.Value {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

// cellRefOf returns the target cell name an instantiation_stmt refers to:
// by convention the collaborator parser puts it as the branch's first
// child when that child is itself a branch named "cell_ref" wrapping one
// identifier (qualified or bare); this is kept distinct from the instance
// name leaf so `moduleName instName (...)` parses unambiguously.
func cellRefOf(branch *syntax.ASTBranch) string {
	if branch.Len() == 0 {
		return ""
	}
	first, ok := branch.Content[0].(*syntax.ASTBranch)
	if !ok || first.Name != "cell_ref" || first.Len() == 0 {
		return ""
	}
	leaf, ok := first.Content[0].(*syntax.ASTLeaf)
	if !ok {
		return ""
	}
	return leaf.Value
}
