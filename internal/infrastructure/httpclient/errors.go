package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

const maxToastMessage = 200

// normalizeError turns a non-2xx response body into an APIError. JSON bodies
// yield their "message" or "error" field, falling back to the raw JSON text;
// other bodies yield the raw text, or "HTTP <status>" when empty.
func normalizeError(status int, raw []byte) *domain.APIError {
	text := string(raw)

	var data any
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &data) == nil {
		msg := messageOf(data)
		if msg == "" {
			msg = text
		}
		return &domain.APIError{Status: status, Message: msg, Details: json.RawMessage(raw)}
	}

	if strings.TrimSpace(text) == "" {
		text = fmt.Sprintf("HTTP %d", status)
	}
	return &domain.APIError{Status: status, Message: text}
}

func messageOf(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	for _, field := range []string{"message", "error"} {
		switch v := obj[field].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if nested, ok := v["message"].(string); ok && nested != "" {
				return nested
			}
		}
	}
	return ""
}

// truncate caps s at max runes, ending in "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func isRetryable(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}
