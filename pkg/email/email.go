// Package email holds the structural email checks shared by validation and
// logging. It is deliberately not an RFC 5322 parser.
package email

import (
	"regexp"
	"strings"
)

// shape is "local@domain.tld" where no part contains whitespace or '@'.
// Multiple dots and upper-case letters are accepted.
var shape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// HasShape reports whether s looks like local@domain.tld.
func HasShape(s string) bool {
	return shape.MatchString(s)
}

// Redact keeps the first character of the local part and the full domain so
// log lines can be correlated without carrying the address.
func Redact(s string) string {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return "***"
	}
	return s[:1] + "***" + s[at:]
}
