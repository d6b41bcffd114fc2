// Package format renders phone numbers and timestamps for display.
package format

import (
	"strings"
	"time"
)

// DateTimeLayout is the display layout used across listings.
const DateTimeLayout = "02.01.2006 15:04"

// DateLayout is the display layout for date-only columns.
const DateLayout = "02.01.2006"

// Phone renders a Russian phone number as +7 (XXX) XXX-XX-XX. Partial
// input is formatted progressively so the result is usable while the
// number is still being typed.
func Phone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	if !strings.HasPrefix(number, "7") {
		number = "7" + number
	}

	var out strings.Builder
	out.WriteString("+7")
	if len(number) > 1 {
		out.WriteString(" (")
		out.WriteString(slice(number, 1, 4))
	}
	if len(number) > 4 {
		out.WriteString(") ")
		out.WriteString(slice(number, 4, 7))
	}
	if len(number) > 7 {
		out.WriteString("-")
		out.WriteString(slice(number, 7, 9))
	}
	if len(number) > 9 {
		out.WriteString("-")
		out.WriteString(slice(number, 9, 11))
	}
	return out.String()
}

// DateTime renders a timestamp as dd.MM.yyyy HH:mm.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}

// Date renders a timestamp as dd.MM.yyyy.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func slice(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}
