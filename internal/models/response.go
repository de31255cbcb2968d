// Package models - API response types.
// Every route answers with a small JSON object; the constructors below are the
// only place the literal wire strings live.
package models

import (
	"time"
)

// Health status values reported by the health endpoint.
const (
	HealthStatusOK    = "ok"
	HealthStatusError = "error"
)

// Fixed response messages.
const (
	HelloMessage             = "Hello World from GroceryNana Backend!"
	MessageDatabaseConnected = "Database connected"
	MessageDatabaseFailed    = "Database connection failed"
)

// HealthResponse reports whether the database answered the liveness query.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HelloResponse carries the static greeting.
type HelloResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is returned for router-level failures (wrong method, panics).
type ErrorResponse struct {
	Error     string    `json:"error"`          // Error type (always "error")
	Message   string    `json:"message"`        // Human-readable error description
	Code      string    `json:"code,omitempty"` // Machine-readable error code
	Timestamp time.Time `json:"timestamp"`
}

const (
	ErrorCodeInvalidRequest = "INVALID_REQUEST" // 405: Method not allowed on a known path
	ErrorCodeInternalError  = "INTERNAL_ERROR"  // 500: Server-side error
)

func NewHelloResponse() HelloResponse {
	return HelloResponse{Message: HelloMessage}
}

func NewHealthyResponse() HealthResponse {
	return HealthResponse{Status: HealthStatusOK, Message: MessageDatabaseConnected}
}

func NewUnhealthyResponse() HealthResponse {
	return HealthResponse{Status: HealthStatusError, Message: MessageDatabaseFailed}
}

func NewErrorResponse(message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}
