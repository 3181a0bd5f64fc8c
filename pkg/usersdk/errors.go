package usersdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx envelope returned by the service.
type APIError struct {
	StatusCode int
	Type       string
	Message    string

	// Details holds field errors for validation failures
	Details map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Type, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// IsUnauthorized reports whether err is a 401 from the service.
func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }

// IsForbidden reports whether err is a 403 from the service.
func IsForbidden(err error) bool { return IsStatus(err, http.StatusForbidden) }

// IsConflict reports whether err is a 409 from the service.
func IsConflict(err error) bool { return IsStatus(err, http.StatusConflict) }

// parseErrorResponse builds an APIError from a response body. Bodies that
// are not an envelope keep the raw text as the message.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Type:       http.StatusText(resp.StatusCode),
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil || env.StatusCode == 0 {
		apiErr.Message = string(body)
		return apiErr
	}
	apiErr.Type = env.Type
	apiErr.Message = env.Message

	if len(env.Data) > 0 && string(env.Data) != "null" {
		var details map[string]string
		if json.Unmarshal(env.Data, &details) == nil {
			apiErr.Details = details
		}
	}
	return apiErr
}
