package casenumber

import (
	"regexp"
	"testing"
	"time"
)

func TestGenerateFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^FXV-2026-\d{6}$`)

	for i := 0; i < 100; i++ {
		got := Generate(now)
		if !pattern.MatchString(got) {
			t.Fatalf("Generate() = %q, want match for %s", got, pattern)
		}
	}
}

func TestGenerateUsesYear(t *testing.T) {
	got := Generate(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC))
	if got[:9] != "FXV-2031-" {
		t.Errorf("Generate() = %q, want FXV-2031- prefix", got)
	}
}
