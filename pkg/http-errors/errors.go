package httperrors

import (
	"net/http"

	dErrors "demogate/pkg/domain-errors"
)

// ToHTTPStatus maps a domain error code to an HTTP status code. The mapping
// lives here so handlers never hardcode status numbers next to business logic.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeTokenMissing, dErrors.CodeTokenInvalid, dErrors.CodeTokenExpired,
		dErrors.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case dErrors.CodeNotAdmin, dErrors.CodeAccountInactive,
		dErrors.CodeSelfActionBlocked, dErrors.CodeAccessDenied:
		return http.StatusForbidden
	case dErrors.CodeMalformedPayload, dErrors.CodeUnknownEventType, dErrors.CodeBatchTooLarge:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
