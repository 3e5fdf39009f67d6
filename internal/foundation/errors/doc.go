// Package errors provides foundational, type-safe error primitives used across pagesmith.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (io, path, parse, data, template, ...)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Advice for callers; the pipeline itself never retries
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - Kind constructors (IoError, PathError, ParseError, DataLoadError,
//     TemplateLoadWarning, TemplateError)
//   - CLI adapter for exit codes and error presentation
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryTemplate, "render failed").
//		WithContext("template", "default.html").
//		Build()
package errors
