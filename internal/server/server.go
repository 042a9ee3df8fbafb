// Package server exposes the amortization engine and the suggestion service
// over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/internal/suggestions"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options configures NewHandler.
type Options struct {
	MaxRequestSize int64
	Version        string
	// Suggestions may be nil, in which case suggestion requests report the
	// service as disabled.
	Suggestions *suggestions.Service
	// RateLimiter guards the suggestion endpoint when set.
	RateLimiter *RateLimiter
	CORS        CORSConfig
}

type handler struct {
	logger         *zap.Logger
	generator      *loans.AmortizationScheduleGenerator
	suggestions    *suggestions.Service
	limiter        *RateLimiter
	maxRequestSize int64
	version        string
}

// NewHandler constructs the HTTP handler that serves the schedule API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxRequestSize := opts.MaxRequestSize
	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	svc := opts.Suggestions
	if svc == nil {
		svc = suggestions.NewService(logger, suggestions.Options{})
	}

	h := &handler{
		logger:         logger,
		generator:      loans.NewAmortizationScheduleGenerator(logger),
		suggestions:    svc,
		limiter:        opts.RateLimiter,
		maxRequestSize: maxRequestSize,
		version:        version,
	}

	mux := http.NewServeMux()

	// Schedule as JSON, with the CSV rendering inline
	mux.HandleFunc("/api/schedule", h.handleSchedule)

	// Schedule as a CSV download
	mux.HandleFunc("/api/schedule/csv", h.handleScheduleCSV)

	// Prepayment suggestions
	mux.HandleFunc("/api/suggestions", h.rateLimit(h.handleSuggestions))

	// Metadata for clients
	mux.HandleFunc("/api/frequencies", h.handleFrequencies)
	mux.HandleFunc("/api/version", h.handleVersion)

	return withCORS(opts.CORS, withRequestID(logger, mux))
}

type scheduleResponse struct {
	Parameters loans.LoanParameters `json:"parameters"`
	Summary    loans.Summary        `json:"summary"`
	Totals     moneyTotals          `json:"totals"`
	Records    []loans.PeriodRecord `json:"records"`
	CSV        string               `json:"csv"`
	Warnings   []string             `json:"warnings,omitempty"`
	Duration   string               `json:"duration"`
}

// moneyTotals are the display totals rounded to paise, encoded as decimal strings.
type moneyTotals struct {
	PaymentPerPeriod       decimal.Decimal  `json:"paymentPerPeriod"`
	PaymentAfterRateChange *decimal.Decimal `json:"paymentAfterRateChange,omitempty"`
	TotalInterest          decimal.Decimal  `json:"totalInterest"`
	TotalPaid              decimal.Decimal  `json:"totalPaid"`
}

func money(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x).Round(2)
}

func newMoneyTotals(s loans.Summary) moneyTotals {
	totals := moneyTotals{
		PaymentPerPeriod: money(s.PaymentPerPeriod),
		TotalInterest:    money(s.TotalInterest),
		TotalPaid:        money(s.TotalPaid),
	}
	if s.RateChangePeriod > 0 {
		after := money(s.PaymentAfterRateChange)
		totals.PaymentAfterRateChange = &after
	}
	return totals
}

type suggestionRequest struct {
	Loan                    config.LoanConfig `json:"loan"`
	AnnualSalary            float64           `json:"annualSalary"`
	AdditionalAffordability float64           `json:"additionalAffordability"`
}

type frequencyInfo struct {
	Name            string  `json:"name"`
	Payments        int     `json:"payments"`
	Years           int     `json:"years"`
	PaymentsPerYear float64 `json:"paymentsPerYear"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	var loan config.LoanConfig
	if !h.decodeJSON(w, r, &loan, op) {
		return
	}

	schedule, ok := h.computeSchedule(w, r, loan, op)
	if !ok {
		return
	}

	elapsed := time.Since(start)
	response := scheduleResponse{
		Parameters: schedule.Parameters,
		Summary:    schedule.Summary,
		Totals:     newMoneyTotals(schedule.Summary),
		Records:    schedule.Records,
		CSV:        output.CsvString(schedule.Records),
		Warnings:   validation.FloatingRateWarnings(schedule.Parameters),
		Duration:   elapsed.String(),
	}

	h.requestLogger(r).Info("schedule computed",
		zap.String("op", op),
		zap.Int("payments", len(response.Records)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleScheduleCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleCSV"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var loan config.LoanConfig
	if !h.decodeJSON(w, r, &loan, op) {
		return
	}

	schedule, ok := h.computeSchedule(w, r, loan, op)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.CsvFileName))
	w.WriteHeader(http.StatusOK)
	if err := output.CsvFormat(w, schedule.Records); err != nil {
		h.requestLogger(r).Error("failed to write CSV response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSuggestions"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req suggestionRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	params, err := req.Loan.ToParameters()
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	result := h.suggestions.Suggest(r.Context(), suggestions.Request{
		Loan:                    params,
		AnnualSalary:            req.AnnualSalary,
		AdditionalAffordability: req.AdditionalAffordability,
	})

	status := suggestionStatus(result)
	if result.State == suggestions.StateFailed {
		h.requestLogger(r).Debug("suggestion request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.Error(result.Err),
		)
	}
	h.writeJSON(w, status, result)
}

// suggestionStatus maps a suggestion outcome to an HTTP status. The body
// always carries the result so clients can show its message.
func suggestionStatus(result suggestions.Result) int {
	if result.State != suggestions.StateFailed {
		return http.StatusOK
	}
	switch err := result.Err; {
	case errors.Is(err, suggestions.ErrMissingFinancials), errors.Is(err, loans.ErrInvalidParameters):
		return http.StatusBadRequest
	case errors.Is(err, suggestions.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, suggestions.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, suggestions.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *handler) handleFrequencies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	list := loans.Frequencies()
	infos := make([]frequencyInfo, 0, len(list))
	for _, f := range list {
		infos = append(infos, frequencyInfo{
			Name:            f.Name,
			Payments:        f.Payments,
			Years:           f.Years,
			PaymentsPerYear: f.PaymentsPerYear(),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"frequencies": infos,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":     h.version,
		"suggestions": h.suggestions.Enabled(),
	})
}

func (h *handler) computeSchedule(w http.ResponseWriter, r *http.Request, loan config.LoanConfig, op string) (loans.Schedule, bool) {
	params, err := loan.ToParameters()
	if err == nil {
		var schedule loans.Schedule
		schedule, err = h.generator.GenerateSchedule(params)
		if err == nil {
			return schedule, true
		}
	}

	status := http.StatusInternalServerError
	if errors.Is(err, loans.ErrInvalidParameters) {
		status = http.StatusBadRequest
	}
	h.respondErrorWithOp(w, r, status, err.Error(), op)
	return loans.Schedule{}, false
}

// decodeJSON reads a size-limited JSON body into dst, responding on failure.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) requestLogger(r *http.Request) *zap.Logger {
	if id := RequestIDFromContext(r.Context()); id != "" {
		return h.logger.With(zap.String("requestId", id))
	}
	return h.logger
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.requestLogger(r).Warn("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
