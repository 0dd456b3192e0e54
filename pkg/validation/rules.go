package validation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	namePattern = regexp.MustCompile(`^[a-zA-Z ]+$`)
	panPattern  = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

	// Greeting tokens that people type instead of their name.
	greetingStoplist = map[string]struct{}{
		"hi": {}, "hello": {}, "hey": {}, "yo": {}, "bro": {}, "hii": {}, "hai": {},
	}
)

// ValidFullName accepts at least two alphabetic words and rejects bare
// greetings. Matching is case-insensitive.
func ValidFullName(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))

	if _, greeting := greetingStoplist[text]; greeting {
		return false
	}
	if !namePattern.MatchString(text) {
		return false
	}
	return len(strings.Fields(text)) >= 2
}

// NormalizeName collapses whitespace in an already-validated full name.
func NormalizeName(text string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(text)), " ")
}

// NormalizePAN upper-cases and strips all whitespace from a candidate PAN.
func NormalizePAN(text string) string {
	return strings.ToUpper(strings.Join(strings.Fields(text), ""))
}

// ValidPAN checks the 10-character PAN layout: 5 letters, 4 digits, 1 letter.
// Input must already be normalized.
func ValidPAN(pan string) bool {
	return panPattern.MatchString(pan)
}

// ParseAmount parses a non-negative integer amount (income, EMI, loan amount).
func ParseAmount(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// ParseEMI parses an existing-EMI answer: the literal "none" counts as zero.
func ParseEMI(text string) (int64, bool) {
	if strings.EqualFold(strings.TrimSpace(text), "none") {
		return 0, true
	}
	return ParseAmount(text)
}

// ParseTenure parses a tenure in months; zero is not a valid tenure.
func ParseTenure(text string) (int, bool) {
	value, ok := ParseAmount(text)
	if !ok || value <= 0 {
		return 0, false
	}
	return int(value), true
}
