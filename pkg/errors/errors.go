// Package errors provides structured error types for archdiagram.
//
// Every failure that crosses a package boundary in the diagram pipeline carries
// a machine-readable [Code]. Callers such as the HTTP layer switch on the code
// instead of matching error strings, so the set of codes is part of the public
// contract and must stay stable.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - SCHEMA_*: structural defects in an incoming diagram schema
//   - UNSUPPORTED_NODE_TYPE: a node type outside the closed registry
//   - GRAPH_BUILD: the builder's own invariant check failed
//   - RENDER: the drawing backend failed
//   - GENERATION: the structured-generation service failed
//   - INVALID_* / INTERNAL: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingField, "missing required field %q", "type").At("nodes[1].type")
//	if errors.IsSchemaValidation(err) {
//	    // reply 400
//	}
//
//	// Wrap existing errors, keeping the cause reachable via errors.Is/As
//	err := errors.Wrap(errors.ErrCodeRender, origErr, "render %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Schema validation errors (the SchemaValidationError class)
	ErrCodeMissingField     Code = "SCHEMA_MISSING_FIELD"
	ErrCodeUnknownReference Code = "SCHEMA_UNKNOWN_REFERENCE"
	ErrCodeDuplicateID      Code = "SCHEMA_DUPLICATE_ID"
	ErrCodeInvalidField     Code = "SCHEMA_INVALID_FIELD"

	// Registry errors
	ErrCodeUnsupportedNodeType Code = "UNSUPPORTED_NODE_TYPE"

	// Pipeline stage errors
	ErrCodeGraphBuild Code = "GRAPH_BUILD"
	ErrCodeRender     Code = "RENDER"
	ErrCodeGeneration Code = "GENERATION"

	// NotConfigured marks a service that is missing its generator or
	// assistant. Retrying cannot succeed.
	ErrCodeNotConfigured Code = "NOT_CONFIGURED"

	// Input errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL"
)

// schemaPrefix marks every code in the schema validation class.
const schemaPrefix = "SCHEMA_"

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Field   string // Offending field path, e.g. "edges[0].source" (optional)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// At records the offending field path and returns e for chaining.
func (e *Error) At(field string) *Error {
	e.Field = field
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsSchemaValidation reports whether err belongs to the schema validation class.
func IsSchemaValidation(err error) bool {
	return strings.HasPrefix(string(GetCode(err)), schemaPrefix)
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the service. Retrying a client error cannot succeed.
func IsClientError(err error) bool {
	switch code := GetCode(err); {
	case strings.HasPrefix(string(code), schemaPrefix):
		return true
	case code == ErrCodeUnsupportedNodeType, code == ErrCodeGraphBuild,
		code == ErrCodeInvalidInput, code == ErrCodeInvalidPath:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (prefixed by the field, if any)
// without the code prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Field != "" {
			return e.Field + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}
