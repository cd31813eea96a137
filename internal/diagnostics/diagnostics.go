// Package diagnostics implements the error taxonomy and dual-form
// (human/JSON) rendering described in spec §6–§7: every pass accumulates
// *DiagnosticError values into a list rather than failing fast, so later
// stages can still report what they can.
package diagnostics

import (
	"fmt"

	"github.com/rask-lang/raskc/internal/token"
)

// Severity ranks a diagnostic for rendering and exit-code purposes.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Phase identifies which pass produced a diagnostic (spec §7).
type Phase string

const (
	PhaseLex          Phase = "lex"
	PhaseParse        Phase = "parse"
	PhaseResolve      Phase = "resolve"
	PhaseTypecheck    Phase = "typecheck"
	PhaseOwnership    Phase = "ownership"
	PhaseMonomorphize Phase = "monomorphize"
	PhaseMirLower     Phase = "mir_lower"
)

// ErrorCode is a stable diagnostic code, e.g. "E0308", "P001", "R014".
type ErrorCode string

// Lex-phase codes.
const (
	CodeLexIllegalChar    ErrorCode = "L001"
	CodeLexUnterminated   ErrorCode = "L002"
	CodeLexBadSuffix      ErrorCode = "L003"
)

// Parse-phase codes.
const (
	CodeParseUnexpectedToken ErrorCode = "P001"
	CodeParseExpectedExpr    ErrorCode = "P002"
	CodeParseExpectedType    ErrorCode = "P003"
	CodeParseMissingArrow    ErrorCode = "P004"
	CodeParseUnexpectedComma ErrorCode = "P005"
	CodeParseBadPattern      ErrorCode = "P006"
)

// Resolve-phase codes, including the package/manifest taxonomy from
// original_source's rask-resolve::package::PackageError.
const (
	CodeResolveUndefinedName   ErrorCode = "R001"
	CodeResolveDuplicateDecl   ErrorCode = "R002"
	CodeResolveBreakOutsideLoop ErrorCode = "R003"
	CodeResolveLabelNotFound   ErrorCode = "R004"
	CodeResolveAmbiguousImport ErrorCode = "R005"
	CodeResolveCyclicPackage   ErrorCode = "R006"
	CodeResolveIO              ErrorCode = "R010"
	CodeResolveParseInPackage  ErrorCode = "R011"
	CodeResolveLexInPackage    ErrorCode = "R012"
	CodeResolvePackageNotFound ErrorCode = "R013"
	CodeResolveEmptyPackage    ErrorCode = "R014"
	CodeResolveCapabilityDrift ErrorCode = "R020" // warning-level
)

// Typecheck-phase codes (spec §7 taxonomy).
const (
	CodeMismatch                  ErrorCode = "E0308"
	CodeNotCallable                ErrorCode = "E0309"
	CodeNoSuchField                 ErrorCode = "E0610"
	CodeNoSuchMethod                ErrorCode = "E0599"
	CodeMissingReturn                ErrorCode = "E0269"
	CodeTryInNonPropagatingContext    ErrorCode = "E0277"
	CodeTryOnNonResult              ErrorCode = "E0278"
	CodeAmbiguousType                ErrorCode = "E0282"
	CodeInfiniteType                 ErrorCode = "E0720"
	CodeNoAllocViolation              ErrorCode = "E0793"
	CodeMutateReadOnlyParam          ErrorCode = "E0594"
	CodeMutateBorrowedSource         ErrorCode = "E0506"
	CodeGenericError                 ErrorCode = "E0999"
	CodeUnsafeRequired                ErrorCode = "E0133"
)

// Ownership-phase codes.
const (
	CodeUseAfterMove       ErrorCode = "O001"
	CodeDoubleMove         ErrorCode = "O002"
	CodeUnreleasedResource ErrorCode = "O003"
	CodeMutateBorrowedSrc  ErrorCode = "O004"
	CodeMutateReadOnlyParm ErrorCode = "O005"
	CodeConflictingBorrows ErrorCode = "O006"
)

// Monomorphize-phase codes.
const (
	CodeMonoUnresolvedTypeArgs ErrorCode = "M001" // a reachable generic call site never pinned concrete type args
	CodeMonoConstGeneric       ErrorCode = "M002" // a const-generic parameter's substituted value isn't a usize constant
)

// MIR-lowering-phase codes.
const (
	CodeMirUnsupportedExpr ErrorCode = "I001" // an expression kind the lowerer doesn't (yet) know how to lower
)

// SourceLocation is the primary, rendered location of a diagnostic.
type SourceLocation struct {
	Line       int
	Column     int
	ByteOffset int
	SourceLine string
}

// Label annotates a secondary span with a short message.
type Label struct {
	Span    token.Span
	Start   token.LineCol
	End     token.LineCol
	Message string
	Primary bool
}

// Suggestion is an optional textual fix.
type Suggestion struct {
	Span        token.Span
	Replacement string
	ResultLine  string
}

// DiagnosticError is the canonical diagnostic value threaded through every
// pass's error list.
type DiagnosticError struct {
	Severity Severity
	Code     ErrorCode
	Phase    Phase
	Category string
	Message  string
	File     string
	Primary  SourceLocation
	Span     token.Span
	Labels   []Label
	Notes    []string
	Help     string
	Fix      *Suggestion
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s[%s]: %s", e.Severity, e.Code, e.Message)
}

// NewError builds a DiagnosticError anchored at span, with source text
// filled in later by Resolve (src is supplied after the pass finishes so
// passes that don't have the whole buffer handy can still build errors).
func NewError(phase Phase, code ErrorCode, span token.Span, message string) *DiagnosticError {
	return &DiagnosticError{
		Severity: SeverityError,
		Code:     code,
		Phase:    phase,
		Message:  message,
		Span:     span,
	}
}

// NewWarning builds a warning-severity diagnostic.
func NewWarning(phase Phase, code ErrorCode, span token.Span, message string) *DiagnosticError {
	d := NewError(phase, code, span, message)
	d.Severity = SeverityWarning
	return d
}

// WithHint attaches a short contextual hint (spec §4.2 "Hints").
func (e *DiagnosticError) WithHint(hint string) *DiagnosticError {
	e.Help = hint
	return e
}

// WithNote appends a note.
func (e *DiagnosticError) WithNote(note string) *DiagnosticError {
	e.Notes = append(e.Notes, note)
	return e
}

// WithLabel attaches a secondary labeled span.
func (e *DiagnosticError) WithLabel(span token.Span, message string) *DiagnosticError {
	e.Labels = append(e.Labels, Label{Span: span, Message: message})
	return e
}

// Resolve fills in line/column/source-line information from src and the
// file path. Called once, after a pass finishes, before rendering.
func (e *DiagnosticError) Resolve(file, src string) {
	e.File = file
	lc := token.LineColAt(src, e.Span.Start)
	e.Primary = SourceLocation{
		Line:       lc.Line,
		Column:     lc.Column,
		ByteOffset: e.Span.Start,
		SourceLine: sourceLineAt(src, e.Span.Start),
	}
	for i := range e.Labels {
		e.Labels[i].Start = token.LineColAt(src, e.Labels[i].Span.Start)
		e.Labels[i].End = token.LineColAt(src, e.Labels[i].Span.End)
	}
}

func sourceLineAt(src string, offset int) string {
	if offset > len(src) {
		offset = len(src)
	}
	start := offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(src) && src[end] != '\n' {
		end++
	}
	return src[start:end]
}

// CascadeSuppressed reports whether this diagnostic should be dropped
// because it is downstream of an already-reported Type::Error (spec §7
// "Cascade suppression").
func (e *DiagnosticError) CascadeSuppressed() bool {
	return e.Category == "cascade"
}
