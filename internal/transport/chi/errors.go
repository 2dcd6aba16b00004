package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kailas-cloud/fewshot/internal/domain"
	leaveuc "github.com/kailas-cloud/fewshot/internal/usecase/leave"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest          = "bad_request"
	CodeUnauthorized        = "unauthorized"
	CodeValidationFailed    = "validation_failed"
	CodeNotFound            = "not_found"
	CodeDataFormat          = "data_format_error"
	CodeInsufficientBalance = "insufficient_balance"
	CodeIndexEmpty          = "index_empty"
	CodeQuotaExceeded       = "quota_exceeded"
	CodeModelServiceError   = "model_service_error"
	CodeInternalError       = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		validationHandler,
		insufficientBalanceHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrDataFormat, http.StatusUnprocessableEntity, CodeDataFormat),
		sentinelHandler(domain.ErrIndexEmpty, http.StatusConflict, CodeIndexEmpty),
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusPaymentRequired, CodeQuotaExceeded),
		sentinelHandler(domain.ErrService, http.StatusBadGateway, CodeModelServiceError),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrDataFormat,
		domain.ErrInsufficientBalance,
		domain.ErrIndexEmpty,
		domain.ErrQuotaExceeded,
		domain.ErrService,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler returns the validation detail, which services build from
// request fields only.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	msg := err.Error()
	if i := strings.Index(msg, domain.ErrInvalidInput.Error()); i >= 0 {
		msg = msg[i:]
	}
	writeError(w, http.StatusBadRequest, CodeValidationFailed, msg)
	return true
}

// insufficientBalanceHandler adds the requested and available day counts.
func insufficientBalanceHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		return false
	}
	var ibe *leaveuc.InsufficientBalanceError
	if errors.As(err, &ibe) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":      CodeInsufficientBalance,
			"message":   msg,
			"requested": ibe.Requested,
			"available": ibe.Available,
		})
		return true
	}
	writeError(w, http.StatusConflict, CodeInsufficientBalance, msg)
	return true
}
