package versemap

import "log/slog"

// DiagnosticCode classifies a captured build- or query-time failure.
type DiagnosticCode string

const (
	DiagUnknownReference    DiagnosticCode = "unknown_reference"
	DiagEmptyReference      DiagnosticCode = "empty_reference"
	DiagCardinalityMismatch DiagnosticCode = "cardinality_mismatch"
	DiagOffsetWithoutBasis  DiagnosticCode = "offset_without_basis"
	DiagUnsupportedRef      DiagnosticCode = "unsupported_reference"
	DiagOsisFallbackFailed  DiagnosticCode = "osis_fallback_failed"
)

// Diagnostic is one captured failure: which entry or query it came from,
// what kind of failure it was, and the underlying error.
type Diagnostic struct {
	Code  DiagnosticCode
	Key   string // offending left or pivot text
	Value string // offending right-hand text, when applicable
	Err   error
}

// Diagnostics accumulates per-entry build failures (spec.md §4.6) without
// aborting the build; hasErrors reports whether any were captured. Beyond
// the bare boolean the source exposes, Records lets a caller inspect what
// actually went wrong.
type Diagnostics struct {
	records   []Diagnostic
	hasErrors bool
	logger    *slog.Logger
}

// NewDiagnostics returns an empty Diagnostics sink logging through logger.
// A nil logger falls back to slog.Default().
func NewDiagnostics(logger *slog.Logger) *Diagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Diagnostics{logger: logger}
}

// Record captures a build-time entry failure, logs it at Warn, and raises
// the global hasErrors flag.
func (d *Diagnostics) Record(code DiagnosticCode, key, value string, err error) {
	d.records = append(d.records, Diagnostic{Code: code, Key: key, Value: value, Err: err})
	d.hasErrors = true
	d.logger.Warn("mapping entry discarded",
		slog.String("code", string(code)),
		slog.String("key", key),
		slog.String("value", value),
		slog.Any("error", err),
	)
}

// RecordQueryFallback logs a non-fatal query-time OSIS fallback failure
// (translateViaOsis) at Debug; this does not raise hasErrors, since it is a
// named, documented feature of query time, not a build defect.
func (d *Diagnostics) RecordQueryFallback(key string, err error) {
	d.records = append(d.records, Diagnostic{Code: DiagOsisFallbackFailed, Key: key, Err: err})
	d.logger.Debug("osis fallback translation failed",
		slog.String("key", key),
		slog.Any("error", err),
	)
}

// HasErrors reports whether any build-time entry failed to compile.
func (d *Diagnostics) HasErrors() bool { return d.hasErrors }

// Records returns all captured diagnostics, build and query alike, in the
// order they were recorded. The returned slice must not be mutated.
func (d *Diagnostics) Records() []Diagnostic { return d.records }
