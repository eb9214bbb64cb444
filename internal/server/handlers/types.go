package handlers

import "github.com/vzahanych/weather-history-app/internal/server/utils"

// HistoryRequest is the query of GET /history.
type HistoryRequest struct {
	City string `form:"city" json:"city" validate:"required,max=200"`
	Date string `form:"date" json:"date" validate:"required,calendar_date"`
}

// HistoryResponse carries the day's extremes as displayed text, e.g. "25.0".
type HistoryResponse struct {
	City     string `json:"city"`
	Date     string `json:"date"`
	MaxTempC string `json:"max_temp_c"`
	MinTempC string `json:"min_temp_c"`
}

type ValidateResponse struct {
	Date   string `json:"date"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type ErrorResponse struct {
	Error   string                  `json:"error"`
	Code    string                  `json:"code,omitempty"`
	Details string                  `json:"details,omitempty"`
	Fields  []utils.ValidationError `json:"fields,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
