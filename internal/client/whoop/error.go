package whoop

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	go_json "github.com/goccy/go-json"
)

// error bodies past this size are truncated before decoding
const maxErrorBody = 4 << 10

// APIError is a non-2xx response from the WHOOP API.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("whoop api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("whoop api: %s: %d %s", e.Path, e.StatusCode, e.Message)
}

// parseAPIError reads the error body, preferring the "message" field over
// "error" and falling back to the raw body or the status line.
func parseAPIError(resp *http.Response, path string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Path: path, Message: resp.Status}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := go_json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	for _, msg := range []string{payload.Message, payload.Error} {
		if msg != "" {
			apiErr.Message = msg
			break
		}
	}
	return apiErr
}

// IsNotFound reports whether err is a WHOOP 404, returned for cycles that
// have no sleep or recovery yet.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
