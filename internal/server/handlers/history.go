package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-history-app/internal/dates"
	"github.com/vzahanych/weather-history-app/internal/server/utils"
	"github.com/vzahanych/weather-history-app/internal/service"
)

// HistorySubmitter runs a query in the background and returns the channel
// its outcome arrives on.
type HistorySubmitter interface {
	Submit(ctx context.Context, q service.Query) (<-chan service.Outcome, error)
}

type HistoryHandler struct {
	submitter HistorySubmitter
	logger    *zap.Logger
}

func NewHistoryHandler(submitter HistorySubmitter, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		submitter: submitter,
		logger:    logger,
	}
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		reqLogger.Warn("Invalid request parameters", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: err.Error(),
		})
		return
	}

	if fieldErrs := utils.ValidateStruct(req); len(fieldErrs) > 0 {
		code := "INVALID_CITY"
		for _, fe := range fieldErrs {
			if fe.Field == "date" {
				code = "INVALID_DATE"
				break
			}
		}
		reqLogger.Warn("Rejected history request", zap.String("code", code))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    code,
			Details: fieldErrs[0].Message,
			Fields:  fieldErrs,
		})
		return
	}

	q, ferr := service.NewQuery(req.City, req.Date)
	if ferr != nil {
		h.writeFailure(c, ferr)
		return
	}

	reqLogger.Info("Processing history request",
		zap.String("city", q.City),
		zap.String("date", q.Date))

	resultCh, err := h.submitter.Submit(ctx, q)
	if err != nil {
		reqLogger.Error("Failed to submit history request", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "Lookup is not available",
			Code:    "UNAVAILABLE",
			Details: err.Error(),
		})
		return
	}

	outcome, ok := <-resultCh
	if !ok {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Lookup is not available",
			Code:  "UNAVAILABLE",
		})
		return
	}

	outcome.Match(func(f service.Forecast) {
		c.JSON(http.StatusOK, HistoryResponse{
			City:     q.City,
			Date:     q.Date,
			MaxTempC: f.MaxTemp(),
			MinTempC: f.MinTemp(),
		})
	}, func(ferr *service.FetchError) {
		reqLogger.Warn("History lookup failed",
			zap.Stringer("kind", ferr.Kind),
			zap.String("message", ferr.Message))
		h.writeFailure(c, ferr)
	})
}

// ValidateDate reports whether the date query parameter is a calendar date.
func (h *HistoryHandler) ValidateDate(c *gin.Context) {
	date := c.Query("date")
	resp := ValidateResponse{Date: date, Valid: true}
	if err := dates.Validate(date); err != nil {
		resp.Valid = false
		resp.Reason = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HistoryHandler) writeFailure(c *gin.Context, ferr *service.FetchError) {
	status, code := StatusForKind(ferr.Kind)
	_ = c.Error(ferr)
	c.JSON(status, ErrorResponse{
		Error:   "Failed to fetch weather history",
		Code:    code,
		Details: ferr.Message,
	})
}

// StatusForKind maps a failure kind to the HTTP status and error code
// returned to clients.
func StatusForKind(kind service.ErrorKind) (int, string) {
	switch kind {
	case service.KindInvalidDate:
		return http.StatusBadRequest, "INVALID_DATE"
	case service.KindInvalidCity:
		return http.StatusBadRequest, "INVALID_CITY"
	case service.KindAPI:
		return http.StatusUnprocessableEntity, "API_ERROR"
	case service.KindMalformedResponse:
		return http.StatusBadGateway, "MALFORMED_RESPONSE"
	case service.KindNetwork:
		return http.StatusBadGateway, "NETWORK_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
