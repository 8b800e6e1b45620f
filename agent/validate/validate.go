// Package validate holds the input predicates shared by the booking tools and
// the session layer.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	MinPartySize = 1
	MaxPartySize = 20
	MinRating    = 1
	MaxRating    = 5

	DefaultMaxTextLength = 500
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern  = regexp.MustCompile(`^\d{2}:\d{2}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// IsValidPhone accepts Indian mobile numbers: ten digits starting with 6-9,
// optionally prefixed with +91 and separated by spaces or dashes.
func IsValidPhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	cleaned = strings.TrimPrefix(cleaned, "+91")

	if len(cleaned) != 10 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return strings.ContainsRune("6789", rune(cleaned[0]))
}

// IsValidDate reports whether s is a YYYY-MM-DD date that is today or later
// on the local clock.
func IsValidDate(s string) bool {
	return IsValidDateOn(s, time.Now())
}

// IsValidDateOn is IsValidDate against an explicit reference time.
func IsValidDateOn(s string, now time.Time) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	d, err := time.ParseInLocation(DateLayout, s, now.Location())
	if err != nil {
		return false
	}
	return !d.Before(StartOfDay(now))
}

// IsValidTimeSlot accepts 24-hour HH:MM times on a half-hour boundary.
func IsValidTimeSlot(s string) bool {
	if !timePattern.MatchString(s) {
		return false
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return false
	}
	return t.Minute() == 0 || t.Minute() == 30
}

func IsValidPartySize(n int) bool {
	return n >= MinPartySize && n <= MaxPartySize
}

func IsValidRating(n int) bool {
	return n >= MinRating && n <= MaxRating
}

func IsValidEmail(s string) bool {
	return s != "" && emailPattern.MatchString(s)
}

// SanitizeString trims surrounding whitespace and caps the result at maxLen
// runes.
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:maxLen]))
}

// NormalizePhone strips separators and the +91 prefix.
func NormalizePhone(phone string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	return strings.TrimPrefix(cleaned, "+91")
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
