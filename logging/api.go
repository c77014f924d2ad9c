package logging

// logger is a global reference to the shared Logger (created/initialized
// once per run of the elaborator, separated out for general usage).
var logger Logger

// Initialize sets up the global logger with the given log level name.
func Initialize(buildPath string, loglevelname string) {
	var loglevel int
	switch loglevelname {
	case "silent":
		loglevel = LogLevelSilent
	case "error":
		loglevel = LogLevelError
	case "warning":
		loglevel = LogLevelWarning
	default:
		loglevel = LogLevelVerbose
	}

	logger = newLogger(buildPath, loglevel)
}

// ShouldProceed reports true when no fatal diagnostic has been raised.
// Most errors substitute a placeholder and let sibling elaboration
// continue, but the driver still uses this to decide whether the overall
// compilation succeeded and what exit code to use.
func ShouldProceed() bool {
	return logger.errorCount == 0
}

// ErrorCount returns the number of fatal diagnostics logged so far.
func ErrorCount() int {
	return logger.errorCount
}

// -----------------------------------------------------------------------------
// NOTE: All log functions only display if the configured log level permits it.

// LogCompileError logs an elaboration error anchored to a source position.
func LogCompileError(lctx *LogContext, message string, kind int, pos *TextPosition) {
	logger.handleMsg(&CompileMessage{
		Message:  message,
		Kind:     kind,
		Position: pos,
		Context:  lctx,
		IsError:  true,
	})
}

// LogCompileWarning logs a non-fatal elaboration warning.
func LogCompileWarning(lctx *LogContext, message string, kind int, pos *TextPosition) {
	logger.handleMsg(&CompileMessage{
		Message:  message,
		Kind:     kind,
		Position: pos,
		Context:  lctx,
		IsError:  false,
	})
}

// LogConfigError logs an error related to compilation configuration: a bad
// library map, an unresolvable --top entry, and the like.
func LogConfigError(kind, message string) {
	logger.handleMsg(&ConfigError{Kind: kind, Message: message})
}

// LogFatal reports an internal invariant violation: something the
// elaboration core did that it should never do. Only internal invariant
// violations cause a hard abort.
func LogFatal(message string) {
	displayFatalError(message)
	panic(message)
}

// CompileHeader prints the elaborator banner naming the requested top and
// whether a cache is in play, once per invocation.
func CompileHeader(target string, caching bool) {
	if logger.LogLevel >= LogLevelVerbose {
		displayCompileHeader(target, caching)
	}
}

// BeginPhase announces the start of a named compilation phase (library
// loading, registration, elaboration, ...) with a progress spinner.
func BeginPhase(phase string) {
	if logger.LogLevel >= LogLevelVerbose {
		displayBeginPhase(phase)
	}
}

// EndPhase closes out the phase most recently opened with BeginPhase.
func EndPhase(success bool) {
	if logger.LogLevel >= LogLevelVerbose {
		displayEndPhase(success)
	}
}

// CompilationFinished prints the closing summary line for the run.
func CompilationFinished(success bool) {
	if logger.LogLevel >= LogLevelWarning {
		for _, w := range logger.warnings {
			w.display()
		}
	}
	if logger.LogLevel > LogLevelSilent {
		displayCompilationFinished(success, ErrorCount(), len(logger.warnings))
	}
}
