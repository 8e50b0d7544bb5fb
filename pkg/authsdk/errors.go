package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rohllet/identity/pkg/httpx"
)

// Error codes shared by the server and the SDK client. This is the single
// message catalog for the service; handlers never invent ad-hoc strings.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeEmailTaken         = "email_taken"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeUserNotFound       = "user_not_found"
	ErrorCodeServerError        = "server_error"
)

// APIError is a typed API error. It implements the error interface and can
// be used both by the server (to write HTTP responses) and by the SDK client
// (to represent errors the server returned).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "invalid_credentials")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidRequest is returned when the request body is malformed or
	// missing required fields.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrEmailTaken is returned when registration is attempted with an email
	// that already has an account.
	ErrEmailTaken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeEmailTaken,
		Description: "an account with this email already exists",
	}

	// ErrInvalidCredentials is returned for failed logins. The same error
	// covers an unknown email and a wrong password so responses don't leak
	// which accounts exist.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid email or password",
	}

	// ErrInvalidToken is returned when the identity token is missing,
	// malformed, has a bad signature, or has expired. The sub-reason is
	// never distinguished.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the token is missing, invalid or expired",
	}

	// ErrUserNotFound is returned when a profile lookup has no backing
	// record, e.g. the user was deleted after the token was issued.
	ErrUserNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeUserNotFound,
		Description: "user not found",
	}

	// ErrServerError is returned for unexpected faults. The detail is
	// logged server-side and never echoed to the caller.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)
