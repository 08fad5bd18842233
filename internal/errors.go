package internal

import (
	"fmt"
	"strings"
)

// AuthError reports missing or invalid credentials. It is returned before
// any network call is attempted and is fatal for the command.
type AuthError struct {
	Variable string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("missing credential: set %s in the environment or config file", e.Variable)
}

// GraphQLError is a single entry of a GraphQL errors payload.
type GraphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// APIError reports a failed Shopify request: either a non-2xx HTTP status
// or a GraphQL errors payload.
type APIError struct {
	StatusCode int
	Errors     []GraphQLError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("shopify request failed: http %d", e.StatusCode)
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return fmt.Sprintf("shopify request failed: %s", strings.Join(msgs, "; "))
}

// Throttled reports whether the error carries Shopify's THROTTLED code or
// an HTTP status that warrants backing off.
func (e *APIError) Throttled() bool {
	if e.StatusCode == 429 || e.StatusCode >= 500 {
		return true
	}
	for _, ge := range e.Errors {
		if ge.Extensions.Code == "THROTTLED" {
			return true
		}
	}
	return false
}

// UploadError reports a staged-upload failure, naming the phase that failed.
type UploadError struct {
	Phase string // "stage", "upload", or "finalize"
	File  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s (%s phase): %v", e.File, e.Phase, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// FormatError reports a language-model response that could not be decoded
// into the expected recipe JSON.
type FormatError struct {
	Reason  string
	Snippet string
}

func (e *FormatError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("model output not valid recipe JSON: %s", e.Reason)
	}
	return fmt.Sprintf("model output not valid recipe JSON: %s (payload: %s)", e.Reason, e.Snippet)
}

// SchemaError reports a spreadsheet that is missing a required column.
// It is fatal for the export run.
type SchemaError struct {
	Sheet  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("sheet %q missing required column %q", e.Sheet, e.Column)
}
