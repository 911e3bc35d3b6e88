// Package jiveerr defines the closed set of tool-level error codes and the
// JSON-RPC error codes used at the dispatcher boundary.
package jiveerr

// JSON-RPC codes (spec §7).
const (
	RPCParseError     = -32700
	RPCInvalidRequest = -32600
	RPCMethodNotFound = -32601
	RPCInvalidParams  = -32602
	RPCInvalidSession = -32002
	RPCInternalError  = -32603
)

// Code is a stable, machine-readable tool-level error code returned in a
// tool's structured result envelope. Never thrown, always returned.
type Code string

const (
	WorkItemNotFound   Code = "WORK_ITEM_NOT_FOUND"
	CircularDependency Code = "CIRCULAR_DEPENDENCY"
	InvalidAction      Code = "INVALID_ACTION"
	ValidationError    Code = "VALIDATION_ERROR"
	BackupNotFound     Code = "BACKUP_NOT_FOUND"
	NamespaceDenied    Code = "NAMESPACE_DENIED"
	NamespaceNotFound  Code = "NAMESPACE_NOT_FOUND"
	NamespaceReserved  Code = "NAMESPACE_RESERVED"
	InvalidHierarchy   Code = "INVALID_HIERARCHY"
	ExecutionNotFound  Code = "EXECUTION_NOT_FOUND"
	InvalidTransition  Code = "INVALID_TRANSITION"
	StoreConflict      Code = "STORE_CONFLICT"
	Internal           Code = "INTERNAL_ERROR"
)

// Error is a structured error carrying a stable Code alongside a
// human-readable message. Tool handlers return it as data, never panic.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// New constructs an *Error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code to an existing error's message.
func Wrap(code Code, err error) *Error {
	return &Error{Code: code, Message: err.Error()}
}
