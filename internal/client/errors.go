package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// FieldError is one entry of the backend's "errors" array.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response from the feedback API.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []FieldError
}

func (e *APIError) Error() string { return e.Message }

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// errorBody is the structured error shape the backend may send. Each member
// is decoded separately so a malformed "errors" does not hide "message".
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// decodeAPIError builds an APIError from a failed response, falling back to
// the generic status message when the body is missing or unparsable.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body errorBody
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && json.Unmarshal(data, &body) == nil {
		var msg string
		if json.Unmarshal(body.Message, &msg) == nil {
			apiErr.Message = msg
		}
		var fields []FieldError
		if json.Unmarshal(body.Errors, &fields) == nil {
			apiErr.Errors = fields
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = statusMessage(resp.StatusCode)
	}
	return apiErr
}

func statusMessage(code int) string {
	return fmt.Sprintf("HTTP error! status: %d", code)
}
