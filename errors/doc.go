// Package errors provides structured error types for the vtable module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending interface and method names, the source
// position when known, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindMethod).
//		Interface("base").
//		Method("a").
//		Pos("shapes.vtl:4:5").
//		Detail("must have a self or mut self receiver").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Shape("base", "interface cannot be declared unsafe")
//	err := errors.Method("base", "a", "receiver taken by value")
//
// All errors implement the standard error interface and support errors.Is/As.
// Every validation failure is a build-time rejection: nothing is emitted for
// a package that produced one.
package errors
