package utils

import (
	"regexp"
	"strconv"
)

var rxNonDigits = regexp.MustCompile(`\D`)

// ParseDigits drops every non-digit and parses the rest as base 10:
// "5.000" -> 5000, "R$ 1.234,00" -> 123400, "-7" -> 7.
// Empty or overflowing input reports false.
func ParseDigits(s string) (int64, bool) {
	s = rxNonDigits.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
