package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/delivery/http/request"
	"github.com/user/weather-crawler/internal/delivery/http/response"
	"github.com/user/weather-crawler/internal/repository"
	"github.com/user/weather-crawler/internal/usecase"
)

const healthTimeout = 2 * time.Second

type Handler struct {
	ingestor usecase.Ingestor
	reporter usecase.Reporter
	location string
	logger   *zap.Logger
}

// NewHandler creates the API handlers. location is used when a request does
// not name one.
func NewHandler(ingestor usecase.Ingestor, reporter usecase.Reporter, location string, logger *zap.Logger) *Handler {
	return &Handler{
		ingestor: ingestor,
		reporter: reporter,
		location: location,
		logger:   logger,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.reporter.Health(ctx); err != nil {
		h.logger.Error("health check failed for store", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, response.HealthResponse{Status: "unhealthy", Store: "unhealthy"})
		return
	}
	h.writeJSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Store: "healthy"})
}

func (h *Handler) HandleBackfill(w http.ResponseWriter, r *http.Request) {
	report, err := h.ingestor.FullBackfill(r.Context())
	if err != nil {
		h.writeUseCaseError(w, "full backfill", err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	report, err := h.ingestor.IncrementalUpdate(r.Context())
	if err != nil {
		h.writeUseCaseError(w, "incremental update", err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleMonthlyAggregate(w http.ResponseWriter, r *http.Request) {
	q, err := request.ParseMonthlyAggregateQuery(r, h.location)
	if err != nil {
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	months, err := h.reporter.MonthlyAggregate(r.Context(), q.Location, q.StartYear, q.EndYear)
	if err != nil {
		h.writeUseCaseError(w, "monthly aggregate", err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.MonthlyAggregateResponse{
		Location:  q.Location,
		StartYear: q.StartYear,
		EndYear:   q.EndYear,
		Months:    months,
	})
}

func (h *Handler) HandleDailySeries(w http.ResponseWriter, r *http.Request) {
	q, err := request.ParseDailySeriesQuery(r, h.location)
	if err != nil {
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	days, err := h.reporter.DailySeries(r.Context(), q.Location, q.Year, q.Month)
	if err != nil {
		h.writeUseCaseError(w, "daily series", err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.DailySeriesResponse{
		Location: q.Location,
		Year:     q.Year,
		Month:    int(q.Month),
		Days:     days,
	})
}

func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.reporter.Status(r.Context(), request.Location(r, h.location))
	if err != nil {
		h.writeUseCaseError(w, "store status", err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) writeUseCaseError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrBackfillRequired), errors.Is(err, usecase.ErrRunInProgress):
		h.writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrInvalidQuery):
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		h.logger.Warn("request cancelled", zap.String("op", op))
		h.writeJSONError(w, "Request cancelled", http.StatusServiceUnavailable)
	default:
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}

