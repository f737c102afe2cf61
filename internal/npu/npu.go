// Package npu parses the 20-digit national process number (NNNNNNN-DD.AAAA.J.TR.OOOO).
package npu

import (
	"errors"
	"strings"
)

// Length is the number of digits in a valid NPU.
const Length = 20

// ErrInvalidFormat is returned when the input does not hold exactly 20 digits.
var ErrInvalidFormat = errors.New("npu: invalid format")

// RoutingCode is the justice digit followed by the two-digit tribunal segment, e.g. "826".
type RoutingCode string

// Justice returns the justice-branch digit.
func (c RoutingCode) Justice() byte {
	if len(c) != 3 {
		return 0
	}
	return c[0]
}

// Region returns the two-digit tribunal/region segment.
func (c RoutingCode) Region() string {
	if len(c) != 3 {
		return ""
	}
	return string(c[1:])
}

// Parse extracts the routing code from a formatted or digits-only NPU.
func Parse(number string) (RoutingCode, error) {
	digits := Digits(number)
	if len(digits) != Length {
		return "", ErrInvalidFormat
	}
	return RoutingCode(digits[13:16]), nil
}

// Digits drops every non-digit character.
func Digits(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for i := 0; i < len(number); i++ {
		if c := number[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Format renders a valid NPU in the canonical masked form; other input is returned unchanged.
func Format(number string) string {
	d := Digits(number)
	if len(d) != Length {
		return number
	}
	return d[0:7] + "-" + d[7:9] + "." + d[9:13] + "." + d[13:14] + "." + d[14:16] + "." + d[16:20]
}

// Short returns the last nine digits, used in alert titles.
func Short(number string) string {
	if len(number) < 9 {
		return number
	}
	return number[len(number)-9:]
}
