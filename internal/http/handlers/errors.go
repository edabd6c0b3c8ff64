// Package handlers defines the HTTP-layer error codes used across all API
// endpoints.
//
// These symbolic constants are mapped into responses via the `fail()` helper
// and give clients a stable, machine-readable taxonomy to branch on, next to
// the human-readable message.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes (bad_request, unauthorized, conflict, ...) mirror HTTP
//     status semantics.
//   - Authentication codes name the exact init-data verification failure so
//     the Mini App can distinguish a stale session from a broken client.
//   - Submission codes name the validation rule that rejected the payload;
//     the message carries the offending field id.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Telegram init-data verification:
	ErrCodeMalformedInitData = "malformed_init_data"
	ErrCodeSignatureMismatch = "signature_mismatch"
	ErrCodeExpiredInitData   = "expired_init_data"

	// Response submission validation:
	ErrCodeUnknownField    = "unknown_field"
	ErrCodeMissingRequired = "missing_required_field"
	ErrCodeInvalidChoice   = "invalid_choice"

	// Operation failures:
	ErrCodeSubmitFailed = "submit_failed"
	ErrCodeListFailed   = "list_failed"
)
