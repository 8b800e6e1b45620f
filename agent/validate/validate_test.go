package validate

import (
	"strings"
	"testing"
	"time"
)

func TestIsValidPhone(t *testing.T) {
	t.Parallel()

	valid := []string{"9876543210", "+919876543210", "+91-98765-43210", "98765 43210", "6000000000"}
	for _, phone := range valid {
		if !IsValidPhone(phone) {
			t.Errorf("IsValidPhone(%q) = false, want true", phone)
		}
	}

	invalid := []string{"", "12345", "5876543210", "98765432101", "98765abcde", "+1-9876543210"}
	for _, phone := range invalid {
		if IsValidPhone(phone) {
			t.Errorf("IsValidPhone(%q) = true, want false", phone)
		}
	}
}

func TestIsValidDateOn(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 21, 45, 0, 0, time.Local)

	cases := map[string]bool{
		"2025-03-10": true,
		"2025-03-11": true,
		"2026-01-01": true,
		"2025-03-09": false,
		"2025-3-11":  false,
		"2025-02-30": false,
		"11-03-2025": false,
		"":           false,
		"tomorrow":   false,
	}
	for in, want := range cases {
		if got := IsValidDateOn(in, now); got != want {
			t.Errorf("IsValidDateOn(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsValidDateUsesCurrentClock(t *testing.T) {
	t.Parallel()

	if !IsValidDate(time.Now().Format(DateLayout)) {
		t.Fatal("today should be valid")
	}
	if IsValidDate(time.Now().AddDate(0, 0, -1).Format(DateLayout)) {
		t.Fatal("yesterday should be invalid")
	}
}

func TestIsValidTimeSlot(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"18:00", "18:30", "00:00", "23:30"} {
		if !IsValidTimeSlot(in) {
			t.Errorf("IsValidTimeSlot(%q) = false", in)
		}
	}
	for _, in := range []string{"18:15", "18:45", "25:00", "9:30", "1830", "", "18:00:00"} {
		if IsValidTimeSlot(in) {
			t.Errorf("IsValidTimeSlot(%q) = true", in)
		}
	}
}

func TestRangePredicates(t *testing.T) {
	t.Parallel()

	if !IsValidPartySize(1) || !IsValidPartySize(20) || IsValidPartySize(0) || IsValidPartySize(21) {
		t.Fatal("party size bounds are 1..20")
	}
	if !IsValidRating(1) || !IsValidRating(5) || IsValidRating(0) || IsValidRating(6) {
		t.Fatal("rating bounds are 1..5")
	}
}

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	if !IsValidEmail("guest@goodfoods.in") {
		t.Fatal("expected valid email")
	}
	for _, in := range []string{"", "guest@", "@goodfoods.in", "guest@goodfoods", "guest goodfoods.in"} {
		if IsValidEmail(in) {
			t.Errorf("IsValidEmail(%q) = true", in)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	if got := SanitizeString("  window seat  ", 500); got != "window seat" {
		t.Fatalf("SanitizeString() = %q", got)
	}
	long := strings.Repeat("ab", 300)
	if got := SanitizeString(long, 500); len(got) != 500 {
		t.Fatalf("len = %d, want 500", len(got))
	}
	if got := SanitizeString("", 10); got != "" {
		t.Fatalf("SanitizeString(\"\") = %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	if got := NormalizePhone(" +91-98765 43210 "); got != "9876543210" {
		t.Fatalf("NormalizePhone() = %q", got)
	}
}
