// Package jsonrpc defines the JSON-RPC 2.0 envelope types shared by every
// transport (spec §4.1, §7).
package jsonrpc

import "encoding/json"

// Request is one inbound JSON-RPC 2.0 call. ID is nil for notifications
// (e.g. "notifications/initialized"), which never receive a Response.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether this request expects no response.
func (r *Request) IsNotification() bool { return len(r.ID) == 0 }

// Response is one outbound JSON-RPC 2.0 reply. Exactly one of Result/Error
// is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the JSON-RPC 2.0 error object (spec §7 closed code set).
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewResult builds a successful response.
func NewResult(id json.RawMessage, result interface{}) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

// NewError builds an error response.
func NewError(id json.RawMessage, code int, message string, data interface{}) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: message, Data: data}}
}
