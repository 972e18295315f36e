package hintlet

import "testing"

// TestLookupHeader tests the tri-state header lookup semantics.
func TestLookupHeader(t *testing.T) {
	t.Parallel()

	headers := map[string]string{
		"Content-Type":  "text/html",
		"X-Empty-Value": "",
	}

	testCases := []struct {
		name      string
		key       string
		wantValue string
		wantFound bool
	}{
		{"exact case", "Content-Type", "text/html", true},
		{"lower case", "content-type", "text/html", true},
		{"upper case", "CONTENT-TYPE", "text/html", true},
		{"present but empty", "x-empty-value", "", true},
		{"absent", "ETag", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			value, found := LookupHeader(headers, tc.key)
			if found != tc.wantFound {
				t.Fatalf("LookupHeader(%q) found = %v, expected %v", tc.key, found, tc.wantFound)
			}
			if value != tc.wantValue {
				t.Errorf("LookupHeader(%q) = %q, expected %q", tc.key, value, tc.wantValue)
			}
		})
	}

	t.Run("nil map", func(t *testing.T) {
		t.Parallel()
		if _, found := LookupHeader(nil, "anything"); found {
			t.Error("expected not found on nil header map")
		}
	})
}

// TestHeaderContains tests case-insensitive substring matching.
func TestHeaderContains(t *testing.T) {
	t.Parallel()

	headers := map[string]string{
		"Cache-Control": "public, Max-Age=3600",
	}

	testCases := []struct {
		name      string
		key       string
		substring string
		expected  bool
	}{
		{"exact", "Cache-Control", "max-age", true},
		{"mixed case value", "cache-control", "MAX-AGE", true},
		{"not contained", "Cache-Control", "no-store", false},
		{"absent header", "Expires", "anything", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := HeaderContains(headers, tc.key, tc.substring); got != tc.expected {
				t.Errorf("HeaderContains(%q, %q) = %v, expected %v", tc.key, tc.substring, got, tc.expected)
			}
		})
	}
}

// TestIsCompressed tests Content-Encoding detection against the fixed
// token set.
func TestIsCompressed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		headers  map[string]string
		expected bool
	}{
		{"gzip", map[string]string{"Content-Encoding": "gzip"}, true},
		{"uppercase token", map[string]string{"Content-Encoding": "GZIP"}, true},
		{"lowercase header key", map[string]string{"content-encoding": "deflate"}, true},
		{"x-gzip", map[string]string{"Content-Encoding": "x-gzip"}, true},
		{"sdch", map[string]string{"Content-Encoding": "sdch"}, true},
		{"bzip2", map[string]string{"Content-Encoding": "bzip2"}, true},
		{"pack200-gzip", map[string]string{"Content-Encoding": "pack200-gzip"}, true},
		{"multi token", map[string]string{"Content-Encoding": "identity, gzip"}, true},
		{"identity only", map[string]string{"Content-Encoding": "identity"}, false},
		{"unknown token", map[string]string{"Content-Encoding": "zstd-custom"}, false},
		{"absent header", map[string]string{}, false},
		{"nil headers", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsCompressed(tc.headers); got != tc.expected {
				t.Errorf("IsCompressed(%v) = %v, expected %v", tc.headers, got, tc.expected)
			}
		})
	}
}
