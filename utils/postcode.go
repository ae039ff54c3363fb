// File: utils/postcode.go
package utils

import (
	"regexp"
	"strings"
)

// Postcode validation outcomes.
const (
	PostcodeOK             = "OK"
	PostcodeBadFormat      = "BAD_FORMAT"
	PostcodeUnservicedArea = "UNSERVICED_AREA"
	PostcodeUnknown        = "UNKNOWN_POSTCODE"
)

// ukPostcodePattern matches the standard UK postcode shape: 1-2 letters,
// a digit, an optional alphanumeric, then a digit and two letters.
var ukPostcodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$`)

var postcodeAreaPattern = regexp.MustCompile(`^[A-Z]+`)

// PostcodeResult is the verdict for a single postcode check.
type PostcodeResult struct {
	Valid      bool   `json:"valid"`
	Normalized string `json:"normalized"`
	Area       string `json:"area"`
	Reason     string `json:"reason"`
}

// ServiceAreaReference is the read-only reference data the validator
// checks against. Serviceable is the full allow-list of covered
// postcodes; Blacklist holds explicitly non-serviced entries compared
// space-insensitively (they are not required to be UK-shaped).
type ServiceAreaReference struct {
	Serviceable []string
	Blacklist   []string
}

// FormatPostcode converts a raw postcode to canonical UK form: spaces
// stripped, uppercased, a single space re-inserted before the final
// three characters.
func FormatPostcode(raw string) string {
	pc := strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
	if len(pc) > 3 {
		pc = pc[:len(pc)-3] + " " + pc[len(pc)-3:]
	}
	return pc
}

// ValidateUKPostcodeFormat checks the UK postcode shape.
func ValidateUKPostcodeFormat(postcode string) bool {
	return ukPostcodePattern.MatchString(strings.ToUpper(postcode))
}

// PostcodeArea extracts the leading alphabetic area code, e.g. "SW"
// from "SW1A 1AA".
func PostcodeArea(postcode string) string {
	return postcodeAreaPattern.FindString(strings.ToUpper(strings.ReplaceAll(postcode, " ", "")))
}

// ValidatePostcode normalizes a raw postcode and checks it against the
// supplied reference data. Policy: the blacklist is consulted first so
// that configured non-serviced entries (which may not even be UK-shaped)
// report UNSERVICED_AREA rather than BAD_FORMAT; then the UK shape is
// enforced; then full allow-list membership decides serviceability. A
// well-formed postcode that misses the allow-list reports
// UNKNOWN_POSTCODE when its area matches a serviced area, and
// UNSERVICED_AREA when the whole area is outside coverage.
// Pure function: no I/O, same input always yields the same verdict.
func ValidatePostcode(raw string, ref ServiceAreaReference) PostcodeResult {
	normalized := FormatPostcode(raw)
	compact := strings.ReplaceAll(normalized, " ", "")

	// Blocked or malformed values are echoed compact; the UK spacing
	// only applies to values that actually have the UK shape.
	for _, blocked := range ref.Blacklist {
		if strings.EqualFold(strings.ReplaceAll(blocked, " ", ""), compact) {
			return PostcodeResult{Normalized: compact, Reason: PostcodeUnservicedArea}
		}
	}

	if !ValidateUKPostcodeFormat(normalized) {
		return PostcodeResult{Normalized: compact, Reason: PostcodeBadFormat}
	}

	area := PostcodeArea(normalized)

	if len(ref.Serviceable) == 0 {
		// No allow-list configured: format validity is the only gate.
		return PostcodeResult{Valid: true, Normalized: normalized, Area: area, Reason: PostcodeOK}
	}

	servicedAreas := make(map[string]bool, len(ref.Serviceable))
	for _, covered := range ref.Serviceable {
		if FormatPostcode(covered) == normalized {
			return PostcodeResult{Valid: true, Normalized: normalized, Area: area, Reason: PostcodeOK}
		}
		servicedAreas[PostcodeArea(covered)] = true
	}

	if servicedAreas[area] {
		return PostcodeResult{Normalized: normalized, Area: area, Reason: PostcodeUnknown}
	}
	return PostcodeResult{Normalized: normalized, Area: area, Reason: PostcodeUnservicedArea}
}
