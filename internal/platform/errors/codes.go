// Package errors provides structured, coded error handling for the escrow
// service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors
	CodeInvalidRequest         Code = "INVALID_REQUEST"
	CodeEscrowInvalidAmount    Code = "ESCROW_INVALID_AMOUNT"
	CodeEscrowRolesNotDistinct Code = "ESCROW_ROLES_NOT_DISTINCT"
	CodeEscrowUnknownUser      Code = "ESCROW_UNKNOWN_USER"

	// Command errors
	CodePermissionDenied  Code = "PERMISSION_DENIED"
	CodeInvalidTransition Code = "INVALID_TRANSITION"

	// Storage errors
	CodeNotFound   Code = "NOT_FOUND"
	CodeContention Code = "CONTENTION"
	CodeStorage    Code = "STORAGE"

	// CodeCanceled indicates the caller abandoned the request before commit.
	CodeCanceled Code = "CANCELED"
)

// HTTPStatus maps domain codes to HTTP status codes for the JSON adapter.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidRequest,
		CodeEscrowInvalidAmount,
		CodeEscrowRolesNotDistinct,
		CodeEscrowUnknownUser:
		return http.StatusBadRequest
	case CodeInvalidTransition:
		return http.StatusConflict
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeContention, CodeCanceled:
		return http.StatusServiceUnavailable
	case CodeStorage, CodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a caller may safely resubmit the same command.
func (c Code) Retryable() bool {
	return c == CodeContention
}
