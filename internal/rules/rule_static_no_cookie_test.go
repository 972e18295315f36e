package rules

import (
	"testing"

	"github.com/hintscan/hintscan/internal/model"
)

// TestStaticNoCookieRule tests cookie detection across start/response pairs.
func TestStaticNoCookieRule(t *testing.T) {
	t.Parallel()

	cssHeaders := map[string]string{"Content-Type": "text/css"}

	t.Run("cookied static request is flagged", func(t *testing.T) {
		t.Parallel()

		hints, err := dispatch(NewStaticNoCookieRule(),
			startRecord(0, "http://example.com/a.css", map[string]string{"Cookie": "session=abc"}),
			responseRecord(1, "http://example.com/a.css", 200, cssHeaders),
		)
		if err != nil {
			t.Fatalf("OnRecord: %v", err)
		}
		if len(hints) != 1 {
			t.Fatalf("got %d hints, expected 1", len(hints))
		}
		if hints[0].Severity != model.SeverityWarning {
			t.Errorf("severity = %v, expected warning", hints[0].Severity)
		}
		if hints[0].RefRecord != 1 {
			t.Errorf("refRecord = %d, expected the response record", hints[0].RefRecord)
		}
	})

	t.Run("cookie-free request passes", func(t *testing.T) {
		t.Parallel()

		hints, err := dispatch(NewStaticNoCookieRule(),
			startRecord(0, "http://example.com/a.css", nil),
			responseRecord(1, "http://example.com/a.css", 200, cssHeaders),
		)
		if err != nil {
			t.Fatalf("OnRecord: %v", err)
		}
		if len(hints) != 0 {
			t.Errorf("got %d hints, expected 0", len(hints))
		}
	})

	t.Run("cookied document is not static", func(t *testing.T) {
		t.Parallel()

		hints, err := dispatch(NewStaticNoCookieRule(),
			startRecord(0, "http://example.com/", map[string]string{"Cookie": "session=abc"}),
			responseRecord(1, "http://example.com/", 200, map[string]string{"Content-Type": "text/html"}),
		)
		if err != nil {
			t.Fatalf("OnRecord: %v", err)
		}
		if len(hints) != 0 {
			t.Errorf("got %d hints for a document, expected 0", len(hints))
		}
	})

	t.Run("response without start record is skipped", func(t *testing.T) {
		t.Parallel()

		hints, err := dispatch(NewStaticNoCookieRule(),
			responseRecord(0, "http://example.com/a.css", 200, cssHeaders),
		)
		if err != nil {
			t.Fatalf("OnRecord: %v", err)
		}
		if len(hints) != 0 {
			t.Errorf("got %d hints without a tracked start, expected 0", len(hints))
		}
	})

	t.Run("page transition clears pending state", func(t *testing.T) {
		t.Parallel()

		hints, err := dispatch(NewStaticNoCookieRule(),
			startRecord(0, "http://example.com/a.css", map[string]string{"Cookie": "session=abc"}),
			transitionRecord(1),
			responseRecord(2, "http://example.com/a.css", 200, cssHeaders),
		)
		if err != nil {
			t.Fatalf("OnRecord: %v", err)
		}
		if len(hints) != 0 {
			t.Errorf("got %d hints across a page transition, expected 0", len(hints))
		}
	})
}
