package mcp

import (
	"testing"
)

// TestOptionalTimeRange verifies absent bounds stay nil and both layouts
// parse.
func TestOptionalTimeRange(t *testing.T) {
	from, to, err := optionalTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from != nil || to != nil {
		t.Errorf("bounds = %v, %v, want nil, nil", from, to)
	}

	from, to, err = optionalTimeRange("2025-07-01", "2025-07-02T12:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from == nil || from.Day() != 1 {
		t.Errorf("from = %v, want 2025-07-01", from)
	}
	if to == nil || to.Hour() != 12 {
		t.Errorf("to = %v, want 12:00", to)
	}

	if _, _, err := optionalTimeRange("not-a-date", ""); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestParseRangeHours verifies the 24-hour default and integer parsing.
func TestParseRangeHours(t *testing.T) {
	if hours, err := parseRangeHours(""); err != nil || hours != 24 {
		t.Errorf("parseRangeHours(\"\") = %d, %v, want 24, nil", hours, err)
	}
	if hours, err := parseRangeHours("72"); err != nil || hours != 72 {
		t.Errorf("parseRangeHours(72) = %d, %v, want 72, nil", hours, err)
	}
	if _, err := parseRangeHours("soon"); err == nil {
		t.Error("expected error for non-integer")
	}
}
