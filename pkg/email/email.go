// Package email normalises and validates applicant and referee addresses.
package email

import (
	"regexp"
	"strings"
)

// MaxLength is the RFC 5321 path limit.
const MaxLength = 254

var pattern = regexp.MustCompile(`^[A-Za-z0-9.!#$%&'*+/=?^_{|}~-]+@[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)+$`)

// Normalize trims and lowercases an address so lookups are case-insensitive.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Valid reports whether a normalised address is well formed.
func Valid(address string) bool {
	if address == "" || len(address) > MaxLength {
		return false
	}
	return pattern.MatchString(address)
}

// Mask hides most of the local part for log lines: "jane.doe@x.com" -> "j***@x.com".
func Mask(address string) string {
	at := strings.LastIndexByte(address, '@')
	if at <= 0 {
		return "***"
	}
	return address[:1] + "***" + address[at:]
}
