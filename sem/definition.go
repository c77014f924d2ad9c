// Package sem holds the elaboration core's data model: the immutable,
// parsed representation of design units, configurations, parameters, and
// the instance tree the Elaborator builds from them.
//
// Nothing in this package mutates a Definition after registration, and
// nothing here performs lookup or instantiation — that is resolve's job.
// sem is the nouns; resolve is the verbs.
package sem

import (
	"vela/deps"
	"vela/logging"
	"vela/syntax"
)

// DefKind enumerates the kinds of design unit a Definition can represent.
type DefKind int

const (
	DefModule DefKind = iota
	DefInterface
	DefProgram
	DefPrimitive
	DefChecker
	DefPackage
	DefConfig
)

func (k DefKind) String() string {
	switch k {
	case DefModule:
		return "module"
	case DefInterface:
		return "interface"
	case DefProgram:
		return "program"
	case DefPrimitive:
		return "primitive"
	case DefChecker:
		return "checker"
	case DefPackage:
		return "package"
	case DefConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Port represents one port in a definition's port list. Expression details
// (type, default) are carried as opaque AST since expression semantics are
// out of scope for this repo.
type Port struct {
	Name        string
	Direction   string // "input", "output", "inout", or "" for interface ports
	IsInterface bool
	DefaultExpr *syntax.ASTBranch
	Position    *logging.TextPosition
}

// BindDirective is a declaration that inserts an instantiation into another
// scope from outside that scope.
type BindDirective struct {
	// TargetPath is the hierarchical path (dot-separated) the bind targets.
	TargetPath []string

	// InstanceName is the name given to the bound instance.
	InstanceName string

	// TargetDef is the definition to instantiate at TargetPath.
	TargetDef *Definition

	Position *logging.TextPosition
}

// TimeScale is the optional `timescale (unit, precision)` a definition
// declares.
type TimeScale struct {
	Unit      string
	Precision string
}

// Definition is a parsed, named design unit. Once registered with a
// DefinitionRegistry it is not mutated, apart from the package-export
// bookkeeping fields Color and ForceElaborated, which
// PackageExportResolver updates.
type Definition struct {
	Kind           DefKind
	Name           string
	SourceLibrary  *deps.SourceLibrary
	Parameters     []*ParameterDecl
	PortList       []*Port
	BodyAST        *syntax.ASTBranch
	BindDirectives []*BindDirective

	DefaultNetType string // e.g. "wire"; "" means implicit nets are disabled
	DefaultLifetime string // "static" or "automatic"
	TimeScale      *TimeScale

	// LogContext anchors diagnostics raised while elaborating this
	// definition's body to the source file/library it came from.
	LogContext *logging.LogContext

	// Imports and Exports are populated only for DefPackage definitions;
	// see PackageExportResolver.
	Imports []*PackageImport
	Exports []*ExportDecl
	Color   PackageColor

	// ForceElaborated is set once this package's own body has been walked
	// to discover transitive exports, so a second lookup does not repeat it.
	ForceElaborated bool

	Position *logging.TextPosition
}

// ParameterDecl describes one declared parameter of a Definition.
// Invariant: a non-port parameter must have a default; a port
// parameter need not. Local parameters may not be overridden.
type ParameterDecl struct {
	Name         string
	IsTypeParam  bool
	IsLocalParam bool
	IsPortParam  bool
	HasSyntax    bool

	DefaultExpr *syntax.ASTBranch
	DefaultType *syntax.ASTBranch

	Position *logging.TextPosition
}

// Validate checks the ParameterDecl invariant: a non-port parameter,
// local or not, must carry a default.
func (p *ParameterDecl) Validate() error {
	if !p.IsPortParam && p.DefaultExpr == nil && p.DefaultType == nil {
		return &MissingInitializerError{Name: p.Name, Position: p.Position}
	}
	return nil
}

// MissingInitializerError reports a missing initializer for a body or
// local parameter.
type MissingInitializerError struct {
	Name     string
	Position *logging.TextPosition
}

func (e *MissingInitializerError) Error() string {
	return "parameter `" + e.Name + "` has no default and is not a port parameter"
}
