// Package dto provides request/response payload types for the HTTP surface.
package dto

// Response is the envelope for all JSON responses
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Status  string     `json:"status,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries a machine-readable code plus a human message
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response wrapping data
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewStatusResponse creates a success response carrying only a status word.
// Webhook endpoints answer with these: the gateway only cares about the 200.
func NewStatusResponse(status string) Response {
	return Response{Success: true, Status: status}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{Success: false, Error: &ErrorBody{Code: code, Message: message}}
}
