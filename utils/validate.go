package utils

import (
	"regexp"
	"strings"
)

var addressRe = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

func IsValidAddress(v string) bool {
	return addressRe.MatchString(v)
}

func CleanUpHex(s string) string {
	s = strings.Replace(strings.TrimPrefix(s, "0x"), " ", "", -1)

	return strings.ToLower(s)
}

// SameAddress compares two hex addresses ignoring case and checksum.
func SameAddress(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return CleanUpHex(a) == CleanUpHex(b)
}
