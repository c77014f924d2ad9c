package logging

// TextPosition represents a positional range in the source text: used to
// anchor a diagnostic to the span of an instantiation statement, a config
// rule, a parameter assignment, etc.
type TextPosition struct {
	StartLn, StartCol int // starting line, starting 0-indexed column
	EndLn, EndCol     int // ending line, column trailing the token (one over)
}

// TextPositionFromRange computes the position spanning two positions.
func TextPositionFromRange(start, end *TextPosition) *TextPosition {
	return &TextPosition{
		StartLn:  start.StartLn,
		StartCol: start.StartCol,
		EndLn:    end.EndLn,
		EndCol:   end.EndCol,
	}
}

// LogContext identifies the source unit (file) and owning library a
// diagnostic belongs to, so the banner can print both.
type LogContext struct {
	Library  string
	FilePath string
}

// LogMessage is anything the logger can display or silently file away as a
// deferred warning.
type LogMessage interface {
	isError() bool
	display()
}

// Enumeration of diagnostic kinds, grouped by error category. Every
// compile diagnostic the elaboration core emits carries one of these.
const (
	// Lookup failure: unknown module/primitive/library/checker/package.
	LMKLookup = iota
	// Configuration error: invalid top cell, ambiguous config redirect,
	// conflicting instance-override rules, dangling override path.
	LMKConfig
	// Containment violation: illegal parent/child nesting, bind under bind.
	LMKContainment
	// Port connection: arity mismatch, mixed ordered/named, unknown port.
	LMKPortConn
	// Resource cap exceeded: MaxInstanceArrayExceeded, MaxInstanceDepthExceeded.
	LMKResourceCap
	// Parameter hazard: missing initializer, override of a local parameter.
	LMKParam
)

var kindNames = map[int]string{
	LMKLookup:      "Lookup",
	LMKConfig:      "Configuration",
	LMKContainment: "Containment",
	LMKPortConn:    "Port Connection",
	LMKResourceCap: "Resource Cap",
	LMKParam:       "Parameter",
}

// CompileMessage is a diagnostic produced while elaborating a design: an
// error or warning anchored to a source position within a file.
type CompileMessage struct {
	Message  string
	Kind     int
	Position *TextPosition
	Context  *LogContext
	IsError  bool
}

func (cm *CompileMessage) isError() bool { return cm.IsError }

// ConfigError represents a problem with compilation configuration itself
// (a bad library map, a missing --top target) rather than with a design.
type ConfigError struct {
	Kind    string
	Message string
}

func (ce *ConfigError) isError() bool { return true }
