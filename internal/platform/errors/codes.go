// Package errors provides structured error handling for congress services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors
	CodeFieldRequired Code = "FIELD_REQUIRED"

	// Registration errors
	CodeExposantNotFound    Code = "EXPOSANT_NOT_FOUND"
	CodeInscriptionNotFound Code = "INSCRIPTION_NOT_FOUND"

	// Session errors
	CodeSessionInvalid   Code = "SESSION_INVALID"
	CodeSessionWrongType Code = "SESSION_WRONG_TYPE"

	// Storage errors
	CodeStoreFailure Code = "STORE_FAILURE"

	// Badge errors
	CodeBadgeIssueFailure Code = "BADGE_ISSUE_FAILURE"

	// Transport errors
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
)

// HTTPStatus maps an error code to its HTTP response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeFieldRequired:
		return http.StatusBadRequest
	case CodeExposantNotFound, CodeInscriptionNotFound:
		return http.StatusNotFound
	case CodeSessionInvalid, CodeSessionWrongType:
		return http.StatusUnauthorized
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeStoreFailure, CodeBadgeIssueFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
