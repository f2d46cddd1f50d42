package core

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes runtime errors so callers can branch on the failure
// class without string matching.
type ErrorCode string

const (
	// ErrDuplicateName is raised when an agent name is already bound in scope.
	ErrDuplicateName ErrorCode = "DUPLICATE_NAME"
	// ErrUnknownAgent is raised for operations addressing an agent that was
	// never spawned (or a routing target that is not live).
	ErrUnknownAgent ErrorCode = "UNKNOWN_AGENT"
	// ErrUnknownTool is raised when a tool name is absent from the registry.
	ErrUnknownTool ErrorCode = "UNKNOWN_TOOL"
	// ErrDuplicateTool is raised when registering an already-registered tool.
	ErrDuplicateTool ErrorCode = "DUPLICATE_TOOL"
	// ErrType is raised for unsupported operand combinations; the runtime
	// never coerces.
	ErrType ErrorCode = "TYPE_ERROR"
	// ErrToolNotAssigned is raised when an agent invokes a tool outside its
	// assigned tool set.
	ErrToolNotAssigned ErrorCode = "TOOL_NOT_ASSIGNED"
	// ErrToolExecution wraps a failure inside a tool handler.
	ErrToolExecution ErrorCode = "TOOL_EXECUTION_ERROR"
	// ErrTimeout is raised when an ask exceeds its deadline.
	ErrTimeout ErrorCode = "TIMEOUT"
	// ErrMailboxFull is raised when a recipient's mailbox is at capacity.
	ErrMailboxFull ErrorCode = "MAILBOX_FULL"
	// ErrImport is raised when an import names a module or symbol that does
	// not exist.
	ErrImport ErrorCode = "IMPORT_ERROR"
	// ErrUndefinedVariable is raised for reads of unbound names and for
	// assignments to names never declared.
	ErrUndefinedVariable ErrorCode = "UNDEFINED_VARIABLE"
)

// RuntimeError is the uniform error type for everything past parsing. It
// aborts only the offending top-level statement; global runtime state is
// never left half-applied.
type RuntimeError struct {
	Code    ErrorCode
	Message string
	Pos     Position
	Wrapped error
}

func (e *RuntimeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s at %s: %s", e.Code, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause (tool handler failures, provider
// errors) to errors.Is / errors.As.
func (e *RuntimeError) Unwrap() error { return e.Wrapped }

// NewError builds a RuntimeError with a formatted message and no position.
// Use WithPos to attach a source location at the statement boundary.
func NewError(code ErrorCode, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a RuntimeError around an underlying cause.
func WrapError(code ErrorCode, err error, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// WithPos returns a copy of the error carrying the given source position.
// The original is untouched so bus/tool errors can be shared.
func (e *RuntimeError) WithPos(pos Position) *RuntimeError {
	clone := *e
	if !clone.Pos.IsValid() {
		clone.Pos = pos
	}
	return &clone
}

// CodeOf extracts the ErrorCode from err, or "" if err is not a RuntimeError.
func CodeOf(err error) ErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsCode reports whether err is a RuntimeError with the given code.
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }
