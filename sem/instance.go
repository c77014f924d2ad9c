package sem

import "vela/logging"

// UninstantiatedDef is the sentinel symbol the DefinitionRegistry returns
// when a lookup fails to resolve to a real Definition: elaboration
// substitutes this placeholder and continues rather than aborting the
// whole compilation.
type UninstantiatedDef struct {
	RequestedName string
	Position      *logging.TextPosition
}

// InstanceKind enumerates the tagged-sum dispatch categories an elaborated
// symbol can fall into.
type InstanceKind int

const (
	KindInstance InstanceKind = iota
	KindInstanceArray
	KindPrimitive
	KindChecker
	KindUninstantiated
	KindPackage
	KindConfig
)

// Instance is one elaborated occurrence of a Definition in the hierarchy:
// the Elaborator's output tree is built entirely out of these.
type Instance struct {
	Kind InstanceKind

	// Name is the instance's name within its parent scope (empty for an
	// unnamed top-level root).
	Name string

	// Def is the Definition this instance was built from. When Kind is
	// KindUninstantiated it holds the UninstantiatedDef placeholder where
	// one was produced, and is nil otherwise.
	Def *UninstantiatedDefOrDefinition

	// Path is the full dot-separated hierarchical path from the nearest
	// elaboration root to this instance, used as the key for per-leaf
	// override lookup and for diagnostics.
	Path []string

	// Parameters holds the fully resolved (post-ParameterBuilder) values
	// for this instance, keyed by parameter name.
	Parameters map[string]interface{}

	// EffectiveLiblist is the liblist this instance's body resolves child
	// references against, after config/override resolution.
	EffectiveLiblist []string

	Body *InstanceBody

	// ArrayIndex is this instance's coordinate within its owning
	// InstanceArray; nil for a scalar instance.
	ArrayIndex []int

	Position *logging.TextPosition
}

// UninstantiatedDefOrDefinition lets Instance.Def hold either a resolved
// Definition or the UninstantiatedDef placeholder without an interface
// indirection at every call site; exactly one field is non-nil.
type UninstantiatedDefOrDefinition struct {
	Definition    *Definition
	Uninstantiated *UninstantiatedDef
}

// BodyMember is one ordered entry in an InstanceBody's member list: either
// a nested instance, an instance array, a resolved parameter, or a raw
// passthrough AST node for anything the elaboration core does not
// interpret itself (nets, statements -- collaborator concerns). Exactly
// one field is set.
type BodyMember struct {
	Instance      *Instance
	InstanceArray *InstanceArray
	Parameter     *ParameterDecl
	ResolvedValue interface{} // set alongside Parameter once ParameterBuilder resolves it
	Raw           interface{}
}

// InstanceBody is the elaborated content of an Instance: the definition it
// was built from, whether it is a placeholder or bind-inserted body, and
// its lazily filled member/port lists.
type InstanceBody struct {
	Definition   *Definition
	OverrideNode *HierarchyOverrideNode

	IsUninstantiated bool
	IsFromBind       bool

	// Members holds, in order: the implicit standard-package wildcard
	// import, header package imports, port parameters, the non-port
	// parameters with their ParameterBuilder-resolved values, and any
	// bind-directive insertions; the Elaborator then appends child
	// instances. The port list is not a member (see Ports), and other
	// declared body items are not carried here.
	Members []*BodyMember

	Ports []*Port

	// Connections is Ports resolved against the instantiation's connection
	// syntax, one entry per port in declaration order. A body built with no
	// connection syntax (the implicit top-level root, a bind target with no
	// explicit connections) still gets one entry per port, each resolved
	// through the port's default or left unconnected.
	Connections []*PortConnection

	// ImplicitNets are the nets BuildPortConnections discovered while
	// resolving Connections: one per not-yet-declared simple identifier
	// appearing in a connection expression, deduplicated and in
	// declaration order. They are logically declared in the instantiating
	// scope, ahead of the instance itself.
	ImplicitNets []*ImplicitNet
}

// InstanceArray is an n-dimensional array of instances generated from a
// single instantiation statement with one or more range specifiers.
type InstanceArray struct {
	Name string

	// Dimensions holds, for each array dimension in declaration order, the
	// inclusive [low, high] bound pair. A negative step (low > high) is
	// valid and reverses iteration order for that dimension.
	Dimensions [][2]int

	// Elements is the flattened set of leaf instances, indexed in
	// row-major order over Dimensions. Each carries its own ArrayIndex.
	Elements []*Instance

	Position *logging.TextPosition
}

// Size returns the total element count implied by Dimensions; an array
// with no dimensions (the empty range left by a failed build) has none.
func (ia *InstanceArray) Size() int {
	if len(ia.Dimensions) == 0 {
		return 0
	}
	total := 1
	for _, d := range ia.Dimensions {
		lo, hi := d[0], d[1]
		span := hi - lo
		if span < 0 {
			span = -span
		}
		total *= span + 1
	}
	return total
}

// HierarchyOverrideNode is one node of the defparam/bind trie keyed by
// hierarchical path segment. The trie is dual-keyed: a node can be reached
// either by the syntactic identity of the instantiation it overrides
// (exact AST branch) or by the textual instance name, so a leaf lookup
// tries syntax identity first and falls back to name.
type HierarchyOverrideNode struct {
	Segment string

	Children map[string]*HierarchyOverrideNode

	// ParamOverrides are defparam-style overrides rooted at this node.
	ParamOverrides []*ParameterOverride

	// UseCell and Liblist carry a per-instance-path `instance ... use ...`
	// or `instance ... liblist ...` override, mirroring the same two forms
	// a CellOverride rule takes. The two are independent slots and may
	// both be set.
	UseCell *ConfigCellId
	Liblist []string

	// Binds are BindDirectives rooted at this node.
	Binds []*BindDirective

	// Visited is set by the Elaborator the first time a lookup actually
	// consumes this node's overrides. CollectUnvisited lists the nodes left
	// unvisited; the elaboration run itself does not call it, so no
	// unused-override diagnostic is emitted.
	Visited bool

	Position *logging.TextPosition
}

// NewHierarchyOverrideNode returns an empty trie root.
func NewHierarchyOverrideNode() *HierarchyOverrideNode {
	return &HierarchyOverrideNode{Children: make(map[string]*HierarchyOverrideNode)}
}

// Child returns (creating if necessary) the child node reached by segment.
func (n *HierarchyOverrideNode) Child(segment string) *HierarchyOverrideNode {
	if child, ok := n.Children[segment]; ok {
		return child
	}
	child := &HierarchyOverrideNode{Segment: segment, Children: make(map[string]*HierarchyOverrideNode)}
	n.Children[segment] = child
	return child
}

// Walk descends the trie along path, returning the deepest node reached and
// whether the full path was matched.
func (n *HierarchyOverrideNode) Walk(path []string) (*HierarchyOverrideNode, bool) {
	cur := n
	for _, seg := range path {
		child, ok := cur.Children[seg]
		if !ok {
			return cur, false
		}
		cur = child
	}
	return cur, true
}

// CollectUnvisited appends every descendant node (including n) that has
// overrides but was never visited during elaboration.
func (n *HierarchyOverrideNode) CollectUnvisited(prefix []string, out *[]string) {
	if !n.Visited && (len(n.ParamOverrides) > 0 || len(n.Binds) > 0 || n.UseCell != nil || len(n.Liblist) > 0) {
		path := make([]string, len(prefix))
		copy(path, prefix)
		*out = append(*out, joinPath(path))
	}
	for seg, child := range n.Children {
		next := make([]string, len(prefix), len(prefix)+1)
		copy(next, prefix)
		child.CollectUnvisited(append(next, seg), out)
	}
}

func joinPath(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}
