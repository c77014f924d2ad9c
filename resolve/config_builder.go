package resolve

import (
	"vela/logging"
	"vela/sem"
	"vela/syntax"
)

// BuildConfigBlock walks a parsed `config` block's AST and produces a
// sem.ConfigBlock. The grammar assumed here is the collaborator parser's
// `config_body` production: a sequence of `design_stmt` (top cells),
// `default_liblist_stmt`, `cell_stmt`, and `instance_stmt` branches.
func BuildConfigBlock(name string, body *syntax.ASTBranch, lctx *logging.LogContext) *sem.ConfigBlock {
	cfg := &sem.ConfigBlock{
		Name:              name,
		CellOverrides:     make(map[string][]*sem.CellOverride),
		InstanceOverrides: sem.NewHierarchyOverrideNode(),
		Position:          body.Position(),
	}

	for _, item := range body.Content {
		stmt, ok := item.(*syntax.ASTBranch)
		if !ok {
			continue
		}

		switch stmt.Name {
		case "design_stmt":
			cfg.TopCells = append(cfg.TopCells, parseCellIds(stmt)...)

		case "default_liblist_stmt":
			cfg.DefaultLiblist = parseLiblist(stmt)

		case "cell_stmt":
			cellName, ov := buildCellOverride(stmt, lctx)
			cfg.CellOverrides[cellName] = append(cfg.CellOverrides[cellName], ov)

		case "instance_stmt":
			buildInstanceOverride(stmt, cfg.InstanceOverrides, lctx)
		}
	}

	return cfg
}

// parseCellIds reads one or more `lib.cell` / `cell` leaves off a
// design_stmt branch, dropping any with an empty cell name.
func parseCellIds(stmt *syntax.ASTBranch) []sem.ConfigCellId {
	var ids []sem.ConfigCellId
	for _, item := range stmt.Content {
		leaf, ok := item.(*syntax.ASTLeaf)
		if !ok || leaf.Kind != syntax.IDENTIFIER {
			continue
		}
		id := parseQualifiedName(leaf.Value)
		if id.Cell == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func parseQualifiedName(text string) sem.ConfigCellId {
	for i := 0; i < len(text); i++ {
		if text[i] == '.' {
			return sem.ConfigCellId{Library: text[:i], Cell: text[i+1:]}
		}
	}
	return sem.ConfigCellId{Cell: text}
}

func parseLiblist(stmt *syntax.ASTBranch) []string {
	var libs []string
	for _, item := range stmt.Content {
		if leaf, ok := item.(*syntax.ASTLeaf); ok && leaf.Kind == syntax.IDENTIFIER {
			libs = append(libs, leaf.Value)
		}
	}
	return libs
}

// buildCellOverride builds one CellOverride from a `cell_stmt` branch:
// `cell [lib.]name (use ... | liblist ...)`, returning the bare cell name
// it should be indexed under.
func buildCellOverride(stmt *syntax.ASTBranch, lctx *logging.LogContext) (string, *sem.CellOverride) {
	ov := &sem.CellOverride{Position: stmt.Position()}

	if stmt.Len() == 0 {
		return "", ov
	}

	nameLeaf := stmt.LeafAt(0)
	cellId := parseQualifiedName(nameLeaf.Value)
	ov.SpecificLib = cellId.Library

	rule := &sem.ConfigRule{CellId: cellId, Position: stmt.Position()}
	applyRuleBody(stmt, rule, lctx)
	ov.Rule = rule

	return cellId.Cell, ov
}

// buildInstanceOverride descends the instance-override trie per the
// `instance top.a.b.c (use ... | liblist ...)` path, merging rules for the
// same path component-wise: liblist, useCell, and paramOverrides are
// independent slots, and a conflict within one slot is an error rather
// than a silent overwrite.
func buildInstanceOverride(stmt *syntax.ASTBranch, root *sem.HierarchyOverrideNode, lctx *logging.LogContext) {
	if stmt.Len() == 0 {
		return
	}

	pathLeaf := stmt.LeafAt(0)
	segments := splitPath(pathLeaf.Value)
	if len(segments) == 0 {
		return
	}

	node := root
	for _, seg := range segments {
		node = node.Child(seg)
	}
	node.Position = stmt.Position()

	rule := &sem.ConfigRule{Position: stmt.Position()}
	applyRuleBody(stmt, rule, lctx)

	if rule.UseCell != nil {
		if node.UseCell != nil {
			logging.LogCompileError(lctx, "conflicting `use` override for the same instance path", logging.LMKConfig, stmt.Position())
		} else {
			node.UseCell = rule.UseCell
		}
	}
	if len(rule.Liblist) > 0 {
		if len(node.Liblist) > 0 {
			logging.LogCompileError(lctx, "conflicting `liblist` override for the same instance path", logging.LMKConfig, stmt.Position())
		} else {
			node.Liblist = rule.Liblist
		}
	}
	if len(rule.ParamBindings) > 0 {
		if len(node.ParamOverrides) > 0 {
			logging.LogCompileError(lctx, "conflicting parameter override for the same instance path", logging.LMKConfig, stmt.Position())
		} else {
			node.ParamOverrides = rule.ParamBindings
		}
	}
}

func splitPath(text string) []string {
	var segs []string
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '.' {
			if i > start {
				segs = append(segs, text[start:i])
			}
			start = i + 1
		}
	}
	return segs
}

// applyRuleBody fills in the `use` / `liblist` slot of rule from the
// remaining content of a cell_stmt or instance_stmt branch. The two slots
// are independent and may both be set; a conflict is reported only when
// the same slot appears twice.
func applyRuleBody(stmt *syntax.ASTBranch, rule *sem.ConfigRule, lctx *logging.LogContext) {
	for i := 1; i < stmt.Len(); i++ {
		sub, ok := stmt.Content[i].(*syntax.ASTBranch)
		if !ok {
			continue
		}

		switch sub.Name {
		case "use_clause":
			if sub.Len() == 0 {
				continue
			}
			useId := parseQualifiedName(sub.LeafAt(0).Value)
			if rule.UseCell != nil {
				logging.LogCompileError(lctx, "conflicting `use` override for the same configuration target", logging.LMKConfig, sub.Position())
				continue
			}
			rule.UseCell = &useId

		case "liblist_clause":
			if len(rule.Liblist) > 0 {
				logging.LogCompileError(lctx, "conflicting `liblist` override for the same configuration target", logging.LMKConfig, sub.Position())
				continue
			}
			rule.Liblist = parseLiblist(sub)

		case "param_bindings":
			rule.ParamBindings = append(rule.ParamBindings, parseParamBindings(sub)...)
		}
	}
}

func parseParamBindings(sub *syntax.ASTBranch) []*sem.ParameterOverride {
	var overrides []*sem.ParameterOverride
	for _, item := range sub.Content {
		binding, ok := item.(*syntax.ASTBranch)
		if !ok || binding.Len() < 2 {
			continue
		}
		nameLeaf, ok := binding.Content[0].(*syntax.ASTLeaf)
		if !ok {
			continue
		}
		overrides = append(overrides, &sem.ParameterOverride{
			Name:      nameLeaf.Value,
			ValueExpr: binding.Content[1],
			Position:  binding.Position(),
		})
	}
	return overrides
}
