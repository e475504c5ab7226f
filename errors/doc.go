// Package errors provides structured error types for the type catalog.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the ordinal and type name involved plus a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBuild, errors.KindTypeNotFound).
//		Ordinal(ord).
//		Name("Point").
//		Detail("field type is not registered").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeNotFound(errors.PhaseResolve, ord)
//	err := errors.InvalidWidth(errors.PhaseBuild, "Color", 3)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
