package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // interface description syntax
	PhaseValidate Phase = "validate" // interface shape and method checks
	PhaseResolve  Phase = "resolve"  // base interface lookup across a package
	PhaseCompile  Phase = "compile"  // layout derivation
	PhaseEmit     Phase = "emit"     // source generation
	PhaseVerify   Phase = "verify"   // ABI lock comparison and Go layout checks
	PhaseRuntime  Phase = "runtime"  // vtable pointer resolution
	PhaseBridge   Phase = "bridge"   // wasm host module export
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax         Kind = "syntax"
	KindShape          Kind = "shape"
	KindMethod         Kind = "method"
	KindUnresolved     Kind = "unresolved"
	KindCycle          Kind = "cycle"
	KindDuplicate      Kind = "duplicate"
	KindUnsupported    Kind = "unsupported"
	KindDrift          Kind = "drift"
	KindTypeMismatch   Kind = "type_mismatch"
	KindNotFound       Kind = "not_found"
	KindNotInitialized Kind = "not_initialized"
	KindInvalidInput   Kind = "invalid_input"
	KindRegistration   Kind = "registration"
	KindIO             Kind = "io"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Pos       string
	Interface string
	Method    string
	Detail    string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Pos != "" {
		b.WriteString(e.Pos)
		b.WriteString(": ")
	}

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	switch {
	case e.Interface != "" && e.Method != "":
		fmt.Fprintf(&b, " in method %q of interface %q", e.Method, e.Interface)
	case e.Interface != "":
		fmt.Fprintf(&b, " in interface %q", e.Interface)
	case e.Method != "":
		fmt.Fprintf(&b, " in method %q", e.Method)
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

// Pos sets the source position ("file:line:col")
func (b *Builder) Pos(pos string) *Builder {
	b.err.Pos = pos
	return b
}

// Interface sets the offending interface name
func (b *Builder) Interface(name string) *Builder {
	b.err.Interface = name
	return b
}

// Method sets the offending method name
func (b *Builder) Method(name string) *Builder {
	b.err.Method = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
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

// Syntax creates a parse error at a source position
func Syntax(pos, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Pos:    pos,
		Detail: detail,
	}
}

// Shape creates an interface-level rejection
func Shape(iface, detail string) *Error {
	return &Error{
		Phase:     PhaseValidate,
		Kind:      KindShape,
		Interface: iface,
		Detail:    detail,
	}
}

// Method creates a per-method rejection
func Method(iface, method, detail string) *Error {
	return &Error{
		Phase:     PhaseValidate,
		Kind:      KindMethod,
		Interface: iface,
		Method:    method,
		Detail:    detail,
	}
}

// Unresolved creates an error for a base interface that is not declared
func Unresolved(iface, base string) *Error {
	return &Error{
		Phase:     PhaseResolve,
		Kind:      KindUnresolved,
		Interface: iface,
		Value:     base,
		Detail:    fmt.Sprintf("base interface %q is not declared in this package", base),
	}
}

// Drift creates an ABI drift error against a previous lock
func Drift(iface, detail string) *Error {
	return &Error{
		Phase:     PhaseVerify,
		Kind:      KindDrift,
		Interface: iface,
		Detail:    detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: fmt.Sprintf("%s not supported", what),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, what, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("%s: want %s, got %s", what, want, got),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Value:  name,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", what),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a host registration error
func Registration(module, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s#%s", module, name),
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
