package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Spok95/block-plant/internal/infra/report"
	"github.com/Spok95/block-plant/internal/ledger"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeBadRequest        = "BAD_REQUEST"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeAlreadyDispatched = "ALREADY_DISPATCHED"
	CodeMissingFormula    = "MISSING_FORMULATION"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInsufficientYard  = "INSUFFICIENT_YARD_STOCK"
	CodeNegativeStock     = "NEGATIVE_STOCK"
	CodeInternal          = "INTERNAL_ERROR"
)

// apiError is the body of every non-2xx JSON response.
type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	status  int
}

func (e *apiError) Error() string { return e.Code + ": " + e.Message }

func badRequest(msg string) *apiError {
	return &apiError{Code: CodeBadRequest, Message: msg, status: http.StatusBadRequest}
}

var errorTable = []struct {
	target error
	code   string
	status int
}{
	{ledger.ErrValidation, CodeValidation, http.StatusBadRequest},
	{report.ErrBadFile, CodeBadRequest, http.StatusBadRequest},
	{ledger.ErrNotFound, CodeNotFound, http.StatusNotFound},
	{ledger.ErrConflict, CodeConflict, http.StatusConflict},
	{ledger.ErrAlreadyDispatched, CodeAlreadyDispatched, http.StatusConflict},
	{ledger.ErrMissingFormulation, CodeMissingFormula, http.StatusUnprocessableEntity},
	{ledger.ErrInsufficientStock, CodeInsufficientStock, http.StatusUnprocessableEntity},
	{ledger.ErrInsufficientYardStock, CodeInsufficientYard, http.StatusUnprocessableEntity},
	{ledger.ErrNegativeStock, CodeNegativeStock, http.StatusUnprocessableEntity},
}

// toAPIError maps ledger sentinels to status codes. Storage failures never leak their message.
func toAPIError(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	out := &apiError{Code: CodeInternal, Message: "internal error", status: http.StatusInternalServerError}
	for _, row := range errorTable {
		if errors.Is(err, row.target) {
			out = &apiError{Code: row.code, Message: err.Error(), status: row.status}
			break
		}
	}
	var re *report.RowError
	if errors.As(err, &re) {
		out.Details = map[string]string{"row": strconv.Itoa(re.Row)}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := toAPIError(err)
	if ae.status >= http.StatusInternalServerError {
		a.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "err", err)
	}
	writeJSON(w, ae.status, ae)
}
