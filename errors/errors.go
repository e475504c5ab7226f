package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAllocate Phase = "allocate" // ordinal allocation
	PhaseBuild    Phase = "build"    // composite construction and mutation
	PhaseResolve  Phase = "resolve"  // ordinal to descriptor lookup
	PhaseIntern   Phase = "intern"   // primitive deduplication
	PhaseBind     Phase = "bind"     // address binding
	PhaseImport   Phase = "import"   // declaration import
)

// Kind categorizes the error
type Kind string

const (
	KindCatalogUnavailable Kind = "catalog_unavailable"
	KindTypeNotFound       Kind = "type_not_found"
	KindInvalidWidth       Kind = "invalid_width"
	KindOrdinalExhausted   Kind = "ordinal_exhausted"
	KindBuildFailure       Kind = "build_failure"
)

// Error is the structured error type used throughout the catalog
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Name    string
	Detail  string
	Ordinal uint32
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Ordinal != 0 {
		fmt.Fprintf(&b, " ordinal %d", e.Ordinal)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Ordinal sets the ordinal involved
func (b *Builder) Ordinal(ord uint32) *Builder {
	b.err.Ordinal = ord
	return b
}

// Name sets the type name involved
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// CatalogUnavailable reports that no catalog handle can be obtained
func CatalogUnavailable(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCatalogUnavailable,
		Detail: "catalog is closed or unavailable",
	}
}

// TypeNotFound reports an ordinal that does not resolve to a descriptor
func TypeNotFound(phase Phase, ordinal uint32) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeNotFound,
		Ordinal: ordinal,
		Detail:  "no descriptor registered",
	}
}

// WrongShape reports an ordinal that resolves to the wrong descriptor kind
func WrongShape(phase Phase, ordinal uint32, want string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeNotFound,
		Ordinal: ordinal,
		Detail:  fmt.Sprintf("descriptor is not a %s", want),
	}
}

// InvalidWidth reports an unsupported storage or bitfield width
func InvalidWidth(phase Phase, name string, width uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidWidth,
		Name:   name,
		Detail: fmt.Sprintf("unsupported width %d", width),
	}
}

// OrdinalExhausted reports that the identifier space is full
func OrdinalExhausted() *Error {
	return &Error{
		Phase:  PhaseAllocate,
		Kind:   KindOrdinalExhausted,
		Detail: "ordinal space exhausted",
	}
}

// BuildFailure reports a descriptor that failed to construct or persist
func BuildFailure(phase Phase, ordinal uint32, detail string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindBuildFailure,
		Ordinal: ordinal,
		Detail:  detail,
	}
}

// DanglingReference reports a descriptor referencing an unregistered ordinal
func DanglingReference(phase Phase, ordinal, inner uint32) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindBuildFailure,
		Ordinal: ordinal,
		Detail:  fmt.Sprintf("references unregistered ordinal %d", inner),
	}
}

// ImportFailed wraps an importer failure
func ImportFailed(source string, cause error) *Error {
	return &Error{
		Phase:  PhaseImport,
		Kind:   KindBuildFailure,
		Name:   source,
		Detail: "import declarations",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
