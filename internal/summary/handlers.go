package summary

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/growmax/nextjs-ecommerce-sub003/internal/common"
	"github.com/growmax/nextjs-ecommerce-sub003/internal/refdata"
)

// Handler exposes the quote calculation pipeline over HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// Calculate handles POST /api/v1/quotes/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var payload QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if details := h.validate(payload); details != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", details)
		return
	}
	out, err := h.Svc.Quote(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Solve handles POST /api/v1/quotes/spr.
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var payload SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if details := h.validate(payload); details != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", details)
		return
	}
	out, err := h.Svc.Solve(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// validate runs struct validation and flattens field errors for the response.
func (h *Handler) validate(v any) []string {
	if h.Validate == nil {
		return nil
	}
	err := h.Validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return details
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrNotReady):
		common.JSONError(w, http.StatusUnprocessableEntity, "NOT_READY", "reference data incomplete", nil)
	case errors.Is(err, refdata.ErrUnavailable):
		common.JSONError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "reference data source unavailable", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote calculation failed", nil)
	}
}
