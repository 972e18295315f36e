package rules

import (
	"testing"
)

// TestImageMetadataRuleSkips tests the cases the rule must ignore.
// Positive EXIF detection is exercised by the library's own suite;
// building a valid EXIF blob by hand here would test the encoder, not
// the rule.
func TestImageMetadataRuleSkips(t *testing.T) {
	t.Parallel()

	t.Run("non-image response", func(t *testing.T) {
		t.Parallel()

		record := responseRecord(0, "http://example.com/a.css", 200,
			map[string]string{"Content-Type": "text/css"})
		record.Data.Body = []byte("body { color: red }")

		hints, err := dispatch(NewImageMetadataRule(), record)
		if err != nil {
			t.Fatalf("OnRecord: %v", err)
		}
		if len(hints) != 0 {
			t.Errorf("got %d hints for a stylesheet, expected 0", len(hints))
		}
	})

	t.Run("image without a captured body", func(t *testing.T) {
		t.Parallel()

		record := responseRecord(0, "http://example.com/a.png", 200,
			map[string]string{"Content-Type": "image/png"})

		hints, err := dispatch(NewImageMetadataRule(), record)
		if err != nil {
			t.Fatalf("OnRecord: %v", err)
		}
		if len(hints) != 0 {
			t.Errorf("got %d hints without a body, expected 0", len(hints))
		}
	})

	t.Run("image body without metadata", func(t *testing.T) {
		t.Parallel()

		// A minimal PNG-ish byte run with no EXIF marker anywhere.
		record := responseRecord(0, "http://example.com/a.png", 200,
			map[string]string{"Content-Type": "image/png"})
		record.Data.Body = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}

		hints, err := dispatch(NewImageMetadataRule(), record)
		if err != nil {
			t.Fatalf("OnRecord: %v", err)
		}
		if len(hints) != 0 {
			t.Errorf("got %d hints for a metadata-free image, expected 0", len(hints))
		}
	})
}
