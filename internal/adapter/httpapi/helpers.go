package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rmvieira/fundledger-backend/internal/domain"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps ledger errors to HTTP status codes:
// duplicate fund 409, unknown fund 404, insufficient cash or shares 422,
// quote failures 502, validation failures 400, anything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		dupErr      *domain.DuplicateFundError
		notFoundErr *domain.FundNotFoundError
		cashErr     *domain.InsufficientFundsError
		sharesErr   *domain.InsufficientSharesError
		priceErr    *domain.PriceUnavailableError
	)

	switch {
	case errors.As(err, &dupErr):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &cashErr), errors.As(err, &sharesErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &priceErr):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrNoValuations):
		writeError(w, http.StatusNotFound, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// isValidationError recognizes the domain layer's input validation messages.
func isValidationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "cannot be") || strings.Contains(msg, "must be")
}

// parsePagination extracts limit and offset query parameters.
// Defaults: limit=50 (max 500), offset=0.
func parsePagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()

	limit = 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	offset = 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
