package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadSettings tests rule pack parsing.
func TestLoadSettings(t *testing.T) {
	t.Parallel()

	t.Run("full pack", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "pack.yml")
		pack := `disabled:
  - image_metadata
thresholds:
  total_bytes:
    warn_bytes: 256000
  long_duration:
    warn_ms: 50
`
		if err := os.WriteFile(path, []byte(pack), 0o600); err != nil {
			t.Fatal(err)
		}

		s, err := LoadSettings(path)
		if err != nil {
			t.Fatalf("LoadSettings: %v", err)
		}
		if !s.IsDisabled("image_metadata") {
			t.Error("image_metadata should be disabled")
		}
		if s.IsDisabled("cache_control") {
			t.Error("cache_control should not be disabled")
		}
		if got := s.Threshold("total_bytes", "warn_bytes", 0); got != 256000 {
			t.Errorf("total_bytes warn_bytes = %v, expected 256000", got)
		}
		if got := s.Threshold("total_bytes", "critical_bytes", 123); got != 123 {
			t.Errorf("unset key should fall back: got %v", got)
		}
		if got := s.Threshold("uncompressed", "min_bytes", 150); got != 150 {
			t.Errorf("unset rule should fall back: got %v", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yml"))
		if !errors.Is(err, ErrRulePackNotFound) {
			t.Errorf("err = %v, expected ErrRulePackNotFound", err)
		}
	})

	t.Run("broken yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "pack.yml")
		if err := os.WriteFile(path, []byte("disabled: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadSettings(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}

// TestDefaultRules tests rule set construction from settings.
func TestDefaultRules(t *testing.T) {
	t.Parallel()

	t.Run("all rules by default", func(t *testing.T) {
		t.Parallel()

		rules := DefaultRules(DefaultSettings(), nil)
		if len(rules) != 8 {
			t.Fatalf("got %d rules, expected 8", len(rules))
		}

		names := make(map[string]bool)
		for _, r := range rules {
			names[r.Name()] = true
		}
		for _, want := range []string{
			"cache_control", "uncompressed", "static_no_cookie", "total_bytes",
			"long_duration", "frequent_layout", "domain_spread", "image_metadata",
		} {
			if !names[want] {
				t.Errorf("rule %s missing from default set", want)
			}
		}
	})

	t.Run("disabled rules are left out", func(t *testing.T) {
		t.Parallel()

		s := DefaultSettings()
		s.Disabled = []string{"image_metadata", "domain_spread"}

		rules := DefaultRules(s, nil)
		if len(rules) != 6 {
			t.Fatalf("got %d rules, expected 6", len(rules))
		}
		for _, r := range rules {
			if r.Name() == "image_metadata" || r.Name() == "domain_spread" {
				t.Errorf("disabled rule %s present", r.Name())
			}
		}
	})

	t.Run("threshold overrides reach the rules", func(t *testing.T) {
		t.Parallel()

		s := DefaultSettings()
		s.Thresholds["long_duration"] = map[string]float64{"warn_ms": 10}

		var long *LongDurationRule
		for _, r := range DefaultRules(s, nil) {
			if ld, ok := r.(*LongDurationRule); ok {
				long = ld
			}
		}
		if long == nil {
			t.Fatal("long_duration rule missing")
		}
		if long.warnMs != 10 {
			t.Errorf("warnMs = %v, expected override 10", long.warnMs)
		}
	})
}
