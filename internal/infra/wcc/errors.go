package wcc

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the remote error text when one could be found, else the HTTP status text.
	Message string
	// Body is the raw remote error body, truncated to 64KiB.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// messagePaths lists where WebCenter Content and the fronting WebLogic/OHS layers
// put a human-readable error, most specific first.
var messagePaths = []string{
	"o:errorDetails.0.detail",
	"o:errorDetails.0.title",
	"errorMessage",
	"StatusMessage",
	"LocalData.StatusMessage",
	"detail",
	"message",
	"title",
	"error.message",
	"error",
}

func newAPIError(req Request, resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	body := string(raw)
	return &APIError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Message:    extractMessage(body, resp.StatusCode),
		Body:       body,
	}
}

func extractMessage(body string, status int) string {
	if gjson.Valid(body) {
		for _, p := range messagePaths {
			if r := gjson.Get(body, p); r.Exists() && r.Type == gjson.String && strings.TrimSpace(r.Str) != "" {
				return strings.TrimSpace(r.Str)
			}
		}
	} else if text := strings.TrimSpace(body); text != "" && len(text) <= 512 {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status"
}
