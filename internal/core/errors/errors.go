// Package errors provides the structured error taxonomy used across foundry.
//
// Overview:
//   - Responsibility: Classify generation failures so the CLI can separate fatal conditions from warnings
//   - Key Types: Code for classification, E for structured errors
//   - Concurrency Model: All functions are safe for concurrent use
//   - Error Semantics: Compatible with standard library wrapping (errors.Is / errors.As)
//   - Performance Notes: One allocation per constructed error
//
// Usage:
//
//	err := errors.New(errors.CodePreconditionFailed, "destination is not empty")
//	wrapped := errors.Wrap(errors.CodeToolFailed, "pip install", originalErr)
//	if errors.IsCode(err, errors.CodeMissingAnchor) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Code represents an error classification code.
type Code string

// Error codes for the generation pipeline.
const (
	// CodePreconditionFailed marks a destination directory that exists and is not empty.
	CodePreconditionFailed Code = "PRECONDITION_FAILED"
	// CodeNotFound marks a missing template root or template document.
	CodeNotFound Code = "NOT_FOUND"
	// CodeMissingAnchor marks a patch target without its anchor line.
	CodeMissingAnchor Code = "MISSING_ANCHOR"
	// CodeToolFailed marks a failed external process (provisioning, migration tool).
	CodeToolFailed Code = "TOOL_FAILED"
	// CodeInvalidArgument marks invalid caller input.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeInternal marks unexpected failures such as write errors.
	CodeInternal Code = "INTERNAL"
)

// E represents a structured error with code, operation and message.
type E struct {
	Code Code   // Error classification code
	Op   string // Operation that failed
	Err  error  // Underlying error (may be nil)
	Msg  string // Human-readable message
}

// Error implements the error interface.
func (e *E) Error() string {
	prefix := string(e.Code)
	if e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Code, e.Op)
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Msg)
	}
}

// Unwrap returns the underlying error for error unwrapping.
func (e *E) Unwrap() error {
	return e.Err
}

// New creates a new structured error with the given code and message.
func New(code Code, msg string) error {
	return &E{
		Code: code,
		Msg:  msg,
	}
}

// Newf creates a new structured error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &E{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new structured error wrapping an existing error.
// The operation name helps identify where the error occurred.
func Wrap(code Code, op string, err error) error {
	return &E{
		Code: code,
		Op:   op,
		Err:  err,
	}
}

// Wrapf creates a new structured error wrapping an existing error with formatted message.
func Wrapf(code Code, op string, err error, format string, args ...any) error {
	return &E{
		Code: code,
		Op:   op,
		Err:  err,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the error code from an error.
// Returns empty string if the error doesn't have a code.
func CodeOf(err error) Code {
	var e *E
	if err != nil && errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Fatal reports whether an error must abort the run.
// Missing anchors are warnings. Missing template roots are reported by the walker
// and never reach the caller as errors.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	var e *E
	if errors.As(err, &e) && e.Code == CodeMissingAnchor {
		return false
	}
	return true
}
