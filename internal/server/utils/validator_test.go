package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupForm struct {
	City string `json:"city" validate:"required,max=5"`
	Date string `json:"date" validate:"required,calendar_date"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		form      lookupForm
		wantField string
		wantTag   string
	}{
		{name: "valid", form: lookupForm{City: "Oslo", Date: "2024-02-29"}},
		{name: "missing city", form: lookupForm{Date: "2024-02-29"}, wantField: "city", wantTag: "required"},
		{name: "long city", form: lookupForm{City: "Reykjavik", Date: "2024-02-29"}, wantField: "city", wantTag: "max"},
		{name: "not a leap year", form: lookupForm{City: "Oslo", Date: "2023-02-29"}, wantField: "date", wantTag: "calendar_date"},
		{name: "loose format", form: lookupForm{City: "Oslo", Date: "2023-2-28"}, wantField: "date", wantTag: "calendar_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStruct(tt.form)
			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantField, errs[0].Field)
			assert.Equal(t, tt.wantTag, errs[0].Tag)
			assert.NotEmpty(t, errs[0].Message)
		})
	}
}

func TestGetErrorMessage_CalendarDate(t *testing.T) {
	errs := ValidateStruct(lookupForm{City: "Oslo", Date: "2023-04-31"})

	require.Len(t, errs, 1)
	assert.Equal(t, "date must be a valid calendar date in YYYY-MM-DD format", errs[0].Message)
}
