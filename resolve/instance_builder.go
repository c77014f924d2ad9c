package resolve

import (
	"fmt"
	"strconv"

	"vela/logging"
	"vela/sem"
	"vela/syntax"
)

// InstantiationSyntax is the parsed shape of one instantiation statement
// handed to InstanceBuilder.Create: a name, zero or more array dimension
// expressions, and the parameter/port syntax attached to it. Expression
// evaluation itself belongs to the out-of-scope semantic collaborator;
// DimensionRanges here are the collaborator's already evaluated results,
// one entry per declared dimension, paired with a flag recording whether
// evaluation succeeded.
type InstantiationSyntax struct {
	Name             string
	SyntaxId         interface{} // identity of the AST node, for childrenBySyntax lookup
	Dimensions       []DimensionRange
	ParamAssignments []*sem.ParameterOverride
	Position         *logging.TextPosition

	// PortConnSyntax is the `port_connections` branch attached to this
	// instantiation, if any; nil means the instantiation named no
	// connections at all (every port resolves through connectUnconnected).
	PortConnSyntax *syntax.ASTBranch

	// BareValueAssignment is a single value attached directly after `#`
	// with no surrounding parentheses -- syntactically ambiguous with a
	// primitive delay, and only treated as a parameter assignment when
	// AllowBareValParamAssignment is set.
	BareValueAssignment *syntax.ASTBranch

	// BlockKind names the kind of statement-block wrapper this
	// instantiation was found nested inside, if any ("forkjoin",
	// "generate", or "" for a plain declarative-region statement).
	BlockKind string

	// IsProcedural is set when the instantiation came from a procedural
	// instantiation statement (inside an always/initial block) rather than
	// a declarative-region one -- the shape checker instantiation takes
	// when used as a statement rather than a module item.
	IsProcedural bool
}

// DimensionRange is one `[lo:hi]` array dimension, already evaluated by the
// expression collaborator.
type DimensionRange struct {
	Lo, Hi int
	Valid  bool
}

const defaultMaxInstanceArray = 1 << 16

// InstanceBuilder materializes a single Instance or InstanceArray from a
// Definition plus the instantiation syntax that names it.
type InstanceBuilder struct {
	Definition   *sem.Definition
	ParamBuilder *ParameterBuilder

	// ParentOverrideNode is the HierarchyOverrideNode of the enclosing
	// instance, used to look up this instantiation's own override node by
	// syntax identity, then by name.
	ParentOverrideNode *sem.HierarchyOverrideNode

	ConfigCtx  *sem.ResolvedConfig
	IsFromBind bool

	MaxInstanceArray int

	// IsTopLevel marks instances built directly as elaboration roots
	// (ElaborateTops's own leaves), which is the only place
	// AllowTopLevelIfacePorts's auto-instantiation behavior applies.
	IsTopLevel bool

	// AllowTopLevelIfacePorts and AllowBareValParamAssignment mirror the
	// same-named CompilationOptions flags, threaded down from the
	// Elaborator so port-connection and parameter-assignment building can
	// consult them without importing the resolve package's own options
	// type back into InstanceBuilder's narrower surface.
	AllowTopLevelIfacePorts     bool
	AllowBareValParamAssignment bool

	LogContext *logging.LogContext
}

// NewInstanceBuilder returns a builder with the default resource cap unless
// overridden by the caller afterward.
func NewInstanceBuilder(def *sem.Definition, pb *ParameterBuilder, parentOverrideNode *sem.HierarchyOverrideNode, configCtx *sem.ResolvedConfig, isFromBind bool, lctx *logging.LogContext) *InstanceBuilder {
	return &InstanceBuilder{
		Definition:         def,
		ParamBuilder:       pb,
		ParentOverrideNode: parentOverrideNode,
		ConfigCtx:          configCtx,
		IsFromBind:         isFromBind,
		MaxInstanceArray:   defaultMaxInstanceArray,
		LogContext:         lctx,
	}
}

// Create builds either a scalar *sem.Instance (no dimensions) or a
// *sem.InstanceArray (one or more dimensions) from instSyntax.
func (ib *InstanceBuilder) Create(instSyntax *InstantiationSyntax) interface{} {
	if len(instSyntax.Dimensions) == 0 {
		overrideNode := ib.childOverrideNode(instSyntax.SyntaxId, instSyntax.Name)
		return ib.createLeaf(instSyntax, overrideNode, nil)
	}

	return ib.createArray(instSyntax)
}

// childOverrideNode implements the two-step lookup: syntax identity first,
// then name, else nil (no override applies).
func (ib *InstanceBuilder) childOverrideNode(syntaxId interface{}, name string) *sem.HierarchyOverrideNode {
	if ib.ParentOverrideNode == nil {
		return nil
	}
	if node, ok := ib.ParentOverrideNode.Children[bySyntaxKey(syntaxId)]; ok {
		node.Visited = true
		return node
	}
	if node, ok := ib.ParentOverrideNode.Children[name]; ok {
		node.Visited = true
		return node
	}
	return nil
}

// bySyntaxKey gives syntax-identity trie keys a namespace distinct from
// plain name keys so the two lookup tables (childrenBySyntax,
// childrenByName) can share one Go map without colliding.
func bySyntaxKey(syntaxId interface{}) string {
	return "#syntax:" + formatSyntaxId(syntaxId)
}

func formatSyntaxId(syntaxId interface{}) string {
	if b, ok := syntaxId.(*syntax.ASTBranch); ok {
		return fmt.Sprintf("%p", b)
	}
	return ""
}

// createLeaf builds one concrete Instance for a fully-indexed (or scalar)
// instantiation.
func (ib *InstanceBuilder) createLeaf(instSyntax *InstantiationSyntax, overrideNode *sem.HierarchyOverrideNode, arrayIndex []int) *sem.Instance {
	assignments := instSyntax.ParamAssignments
	if instSyntax.BareValueAssignment != nil && ib.Definition.Kind != sem.DefPrimitive {
		if ib.AllowBareValParamAssignment {
			assignments = append(append([]*sem.ParameterOverride{}, assignments...), &sem.ParameterOverride{
				ValueExpr: instSyntax.BareValueAssignment,
				Position:  instSyntax.BareValueAssignment.Position(),
			})
		} else {
			logging.LogCompileError(ib.LogContext, "a bare value after `#` is only allowed as a parameter assignment when AllowBareValParamAssignment is set", logging.LMKParam, instSyntax.BareValueAssignment.Position())
		}
	}

	params := ib.ParamBuilder.Build(assignments, false)
	resolvedParams := make(map[string]interface{}, len(params))
	for name, rp := range params {
		resolvedParams[name] = rp.Value
	}

	liblist := []string{}
	if ib.ConfigCtx != nil {
		liblist = ib.ConfigCtx.Liblist
	}

	inst := &sem.Instance{
		Kind:             kindForDef(ib.Definition),
		Name:             instSyntax.Name,
		Def:              &sem.UninstantiatedDefOrDefinition{Definition: ib.Definition},
		Parameters:       resolvedParams,
		EffectiveLiblist: liblist,
		ArrayIndex:       arrayIndex,
		Position:         instSyntax.Position,
	}

	inst.Body = InstanceBodyFromDefinition(ib.Definition, instSyntax, overrideNode, ib.IsFromBind, ib.IsTopLevel, ib.AllowTopLevelIfacePorts, ib.LogContext)
	return inst
}

func kindForDef(def *sem.Definition) sem.InstanceKind {
	switch def.Kind {
	case sem.DefPrimitive:
		return sem.KindPrimitive
	case sem.DefChecker:
		return sem.KindChecker
	case sem.DefPackage:
		return sem.KindPackage
	case sem.DefConfig:
		return sem.KindConfig
	default:
		return sem.KindInstance
	}
}

// createArray builds an n-dimensional InstanceArray, handling evaluation
// failure and the maxInstanceArray cap per dimension.
func (ib *InstanceBuilder) createArray(instSyntax *InstantiationSyntax) *sem.InstanceArray {
	arr := &sem.InstanceArray{Name: instSyntax.Name, Position: instSyntax.Position}

	for _, d := range instSyntax.Dimensions {
		if !d.Valid {
			logging.LogCompileError(ib.LogContext, "array dimension failed to evaluate to a range", logging.LMKResourceCap, instSyntax.Position)
			arr.Dimensions = nil // empty range: Size() is 0
			arr.Elements = nil
			return arr
		}
		width := d.Hi - d.Lo
		if width < 0 {
			width = -width
		}
		if width+1 > ib.MaxInstanceArray {
			logging.LogCompileError(ib.LogContext, "instance array dimension exceeds the maximum configured size", logging.LMKResourceCap, instSyntax.Position)
			arr.Dimensions = nil
			arr.Elements = nil
			return arr
		}
		arr.Dimensions = append(arr.Dimensions, [2]int{d.Lo, d.Hi})
	}

	ib.populateArrayElements(arr, instSyntax, nil, 0)
	return arr
}

// populateArrayElements recursively walks each dimension in declaration
// order, building leaf instances with their absolute array index recorded
// (the vector of absolute indices from the outermost dimension).
func (ib *InstanceBuilder) populateArrayElements(arr *sem.InstanceArray, instSyntax *InstantiationSyntax, prefix []int, dim int) {
	if dim == len(arr.Dimensions) {
		idx := make([]int, len(prefix))
		copy(idx, prefix)

		overrideNode := ib.childOverrideByIndex(instSyntax, idx)
		leaf := ib.createLeaf(instSyntax, overrideNode, idx)
		arr.Elements = append(arr.Elements, leaf)
		return
	}

	lo, hi := arr.Dimensions[dim][0], arr.Dimensions[dim][1]
	step := 1
	if hi < lo {
		step = -1
	}
	for i := lo; ; i += step {
		ib.populateArrayElements(arr, instSyntax, append(prefix, i), dim+1)
		if i == hi {
			break
		}
	}
}

// childOverrideByIndex descends the override node for array elements,
// keyed by absolute index rather than by name.
func (ib *InstanceBuilder) childOverrideByIndex(instSyntax *InstantiationSyntax, idx []int) *sem.HierarchyOverrideNode {
	base := ib.childOverrideNode(instSyntax.SyntaxId, instSyntax.Name)
	if base == nil {
		return nil
	}
	node := base
	for _, i := range idx {
		child, ok := node.Children[indexKey(i)]
		if !ok {
			return nil
		}
		node = child
		node.Visited = true
	}
	return node
}

func indexKey(i int) string {
	return "#idx:" + strconv.Itoa(i)
}
