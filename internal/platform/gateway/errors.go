package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSessionExpired marks errors originating from the token-renewal path.
// Callers that see it should treat the session as closed; the gateway has
// already cleared it and will not force a second logout for the same failure.
var ErrSessionExpired = errors.New("session expired, please sign in again")

// APIError is a non-2xx response surfaced to the caller. 400 and 404 are
// never APIErrors; they are normalized into regular responses.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsAuthFailure reports whether the error is a 401/403 APIError.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == 401 || apiErr.Status == 403
}

// ValidationError is how domain services surface a 400 response: the request
// was understood but rejected, and the body carries field-level messages for
// the caller to render. The gateway itself never produces one; it hands the
// 400 body back as data.
type ValidationError struct {
	Body json.RawMessage
}

func (e *ValidationError) Error() string {
	return extractMessage(e.Body, "solicitud inválida")
}

// Fields decodes the body's string-valued entries as per-field messages.
// Non-string values are skipped.
func (e *ValidationError) Fields() map[string]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &raw); err != nil {
		return nil
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			fields[k] = s
		}
	}
	return fields
}

// extractMessage pulls a human-readable message out of an error body. The
// hospital API is inconsistent about the field name, so try each known key
// before falling back.
func extractMessage(body []byte, fallback string) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	for _, key := range []string{"mensaje", "error", "message"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return fallback
}
