package service

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// historyResponse is the subset of the history.json payload that is consumed.
// Pointers distinguish an absent or null field from a zero value.
type historyResponse struct {
	Forecast *struct {
		ForecastDay []struct {
			Day *struct {
				MaxTempC *float64 `json:"maxtemp_c"`
				MinTempC *float64 `json:"mintemp_c"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// errorEnvelope reads only the provider error, so it still decodes when
// other members of the body have unexpected types.
type errorEnvelope struct {
	Error *apiErrorPayload `json:"error"`
}

type apiErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ParseHistoryResponse maps a history.json exchange to an Outcome. The
// status code is the HTTP status of the response that produced body.
func ParseHistoryResponse(status int, body []byte) Outcome {
	ok := status >= http.StatusOK && status < http.StatusMultipleChoices

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		msg := envelope.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("provider error code %d", envelope.Error.Code)
		}
		return Failed(&FetchError{Kind: KindAPI, Message: msg, Code: envelope.Error.Code})
	}

	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if !ok {
			return Failed(unexpectedStatus(status, len(body)))
		}
		return Failed(malformed("response body is not valid JSON", err))
	}

	if !ok {
		return Failed(unexpectedStatus(status, len(body)))
	}

	switch {
	case resp.Forecast == nil:
		return Failed(malformed("missing forecast", nil))
	case len(resp.Forecast.ForecastDay) == 0:
		return Failed(malformed("forecast.forecastday is empty", nil))
	}

	day := resp.Forecast.ForecastDay[0].Day
	switch {
	case day == nil:
		return Failed(malformed("missing forecast.forecastday[0].day", nil))
	case day.MaxTempC == nil:
		return Failed(malformed("missing forecast.forecastday[0].day.maxtemp_c", nil))
	case day.MinTempC == nil:
		return Failed(malformed("missing forecast.forecastday[0].day.mintemp_c", nil))
	}

	return Succeeded(Forecast{MaxTempC: *day.MaxTempC, MinTempC: *day.MinTempC})
}

func unexpectedStatus(status, bodyLen int) *FetchError {
	msg := fmt.Sprintf("unexpected status %d %s", status, http.StatusText(status))
	if bodyLen == 0 {
		msg += " with empty body"
	}
	return &FetchError{Kind: KindNetwork, Message: msg}
}
