// Package dates validates calendar dates written as YYYY-MM-DD.
//
// Parsing is strict: a day that does not exist in the given month is
// rejected instead of rolling over into the next month.
package dates

import (
	"errors"
	"fmt"
)

const Layout = "YYYY-MM-DD"

var ErrFormat = errors.New("date must use the YYYY-MM-DD format")

// IsValid reports whether text is an existing calendar date in YYYY-MM-DD form.
func IsValid(text string) bool {
	return Validate(text) == nil
}

// Validate returns nil for a valid date and a descriptive error otherwise.
func Validate(text string) error {
	if len(text) != len(Layout) || text[4] != '-' || text[7] != '-' {
		return fmt.Errorf("%w: %q", ErrFormat, text)
	}

	year, ok := digits(text[0:4])
	if !ok {
		return fmt.Errorf("%w: year %q is not numeric", ErrFormat, text[0:4])
	}
	month, ok := digits(text[5:7])
	if !ok {
		return fmt.Errorf("%w: month %q is not numeric", ErrFormat, text[5:7])
	}
	day, ok := digits(text[8:10])
	if !ok {
		return fmt.Errorf("%w: day %q is not numeric", ErrFormat, text[8:10])
	}

	if year < 1 {
		return fmt.Errorf("year %04d is out of range", year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("month %02d is out of range", month)
	}
	if maxDay := DaysIn(year, month); day < 1 || day > maxDay {
		return fmt.Errorf("day %02d is out of range for %04d-%02d (max %d)", day, year, month, maxDay)
	}
	return nil
}

// DaysIn returns the number of days in the given month, or 0 if month is
// outside 1..12.
func DaysIn(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// digits parses s as an unsigned decimal made only of ASCII digits.
func digits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
