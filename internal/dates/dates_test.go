package dates

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"ordinary date", "2023-01-15", true},
		{"leap day in leap year", "2024-02-29", true},
		{"leap day in non leap year", "2023-02-29", false},
		{"february 30", "2023-02-30", false},
		{"april 31", "2023-04-31", false},
		{"april 30", "2023-04-30", true},
		{"december 31", "2023-12-31", true},
		{"month 13", "2023-13-01", false},
		{"month 00", "2023-00-10", false},
		{"day 00", "2023-01-00", false},
		{"century non leap", "1900-02-29", false},
		{"quadricentennial leap", "2000-02-29", true},
		{"year zero", "0000-01-01", false},
		{"year one", "0001-01-01", true},
		{"empty", "", false},
		{"slashes", "2023/01/15", false},
		{"single digit month", "2023-1-15", false},
		{"single digit day", "2023-01-5", false},
		{"trailing space", "2023-01-15 ", false},
		{"leading space", " 2023-01-15", false},
		{"signed year", "+023-01-15", false},
		{"letters", "abcd-ef-gh", false},
		{"five digit year", "20230-01-15", false},
		{"timestamp", "2023-01-15T00:00:00Z", false},
		{"arabic-indic digit", "2023-01-1٥", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.in), "IsValid(%q)", tt.in)
		})
	}
}

func TestIsValid_RejectsEverythingOffPattern(t *testing.T) {
	inputs := []string{"2023", "2023-06", "06-01-2023", "2023-06-01-", "yyyy-mm-dd", "2023--06-01", "2023-06--1"}
	for _, in := range inputs {
		assert.False(t, IsValid(in), "IsValid(%q)", in)
	}
}

func TestValidate_ErrorKinds(t *testing.T) {
	err := Validate("2023/06/01")
	assert.True(t, errors.Is(err, ErrFormat))

	err = Validate("2023-02-29")
	assert.ErrorContains(t, err, "day 29 is out of range for 2023-02 (max 28)")

	err = Validate("2023-13-01")
	assert.ErrorContains(t, err, "month 13")
	assert.False(t, errors.Is(err, ErrFormat))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(2023, 1))
	assert.Equal(t, 28, DaysIn(2023, 2))
	assert.Equal(t, 29, DaysIn(2024, 2))
	assert.Equal(t, 30, DaysIn(2023, 11))
	assert.Equal(t, 0, DaysIn(2023, 13))
}
