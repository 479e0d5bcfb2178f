package models

// Error codes returned in ErrorResponse.Code.
const (
	ErrCodeValidation      = "validation_error"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "already_approved"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeMissingAPIKey   = "missing_api_key"
	ErrCodeUnknownProvider = "unknown_provider"
	ErrCodeInternal        = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
