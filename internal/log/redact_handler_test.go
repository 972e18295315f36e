package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// logJSON runs one log call through a redacting JSON handler and
// returns the decoded output line.
func logJSON(t *testing.T, attrs ...any) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	handler := NewRedactHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler)

	logger.Info("test message", attrs...)

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode log output: %v", err)
	}
	return out
}

// TestRedactHandlerMasksKeys tests key-based masking.
func TestRedactHandlerMasksKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		mask bool
	}{
		{name: "cookie header", key: "Cookie", mask: true},
		{name: "authorization header", key: "authorization", mask: true},
		{name: "set-cookie header", key: "Set-Cookie", mask: true},
		{name: "session id", key: "session_id", mask: true},
		{name: "plain url key", key: "url", mask: false},
		{name: "rule name", key: "rule", mask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := logJSON(t, tt.key, "some-value")
			got, _ := out[tt.key].(string)
			if tt.mask && got != MaskValue {
				t.Errorf("key %s = %q, expected masked", tt.key, got)
			}
			if !tt.mask && got != "some-value" {
				t.Errorf("key %s = %q, expected untouched", tt.key, got)
			}
		})
	}
}

// TestRedactHandlerMasksValues tests pattern-based masking.
func TestRedactHandlerMasksValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		mask  bool
	}{
		{
			name:  "jwt token",
			value: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.abc123",
			mask:  true,
		},
		{name: "bearer token", value: "Bearer abc123def", mask: true},
		{name: "basic auth", value: "Basic dXNlcjpwYXNz", mask: true},
		{name: "ordinary value", value: "text/css", mask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := logJSON(t, "header_value", tt.value)
			got, _ := out["header_value"].(string)
			if tt.mask && got != MaskValue {
				t.Errorf("value %q logged as %q, expected masked", tt.value, got)
			}
			if !tt.mask && got != tt.value {
				t.Errorf("value %q logged as %q, expected untouched", tt.value, got)
			}
		})
	}
}

// TestRedactHandlerScrubsURLs tests signed URL query masking.
func TestRedactHandlerScrubsURLs(t *testing.T) {
	t.Parallel()

	out := logJSON(t, "url", "https://cdn.example.com/app.js?token=s3cret&v=2")
	got, _ := out["url"].(string)

	if strings.Contains(got, "s3cret") {
		t.Errorf("url %q still carries the token", got)
	}
	if !strings.Contains(got, "v=2") {
		t.Errorf("url %q lost its harmless parameter", got)
	}
}

// TestRedactHandlerGroups tests recursion into attribute groups.
func TestRedactHandlerGroups(t *testing.T) {
	t.Parallel()

	out := logJSON(t, slog.Group("request", slog.String("cookie", "session=abc")))
	group, _ := out["request"].(map[string]any)
	if group == nil {
		t.Fatal("group missing from output")
	}
	if group["cookie"] != MaskValue {
		t.Errorf("grouped cookie = %v, expected masked", group["cookie"])
	}
}

// TestNewLogger tests level selection.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	NewLogger(&quiet, false).Debug("hidden")
	if quiet.Len() != 0 {
		t.Errorf("non-verbose logger wrote debug output: %q", quiet.String())
	}

	var verbose bytes.Buffer
	NewLogger(&verbose, true).Debug("visible")
	if verbose.Len() == 0 {
		t.Error("verbose logger dropped debug output")
	}
}
