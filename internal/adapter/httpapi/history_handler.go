package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/rmvieira/fundledger-backend/internal/usecase/history"
)

// HistoryHandler serves the read-only valuation and operation history
// endpoints.
type HistoryHandler struct {
	history *history.HistoryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler with the given service and
// logger.
func NewHistoryHandler(svc *history.HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: svc,
		logger:  logger,
	}
}

type listValuationsResponse struct {
	Valuations []valuationResponse `json:"valuations"`
}

// ListValuations returns the fund's valuations, newest first.
// GET /api/funds/{name}/valuations?limit=50&offset=0
func (h *HistoryHandler) ListValuations(w http.ResponseWriter, r *http.Request) {
	fundName := r.PathValue("name")
	limit, offset := parsePagination(r)

	valuations, err := h.history.ListValuations(r.Context(), fundName, limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list valuations failed",
			slog.String("fund", fundName),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	out := listValuationsResponse{Valuations: make([]valuationResponse, 0, len(valuations))}
	for _, v := range valuations {
		out.Valuations = append(out.Valuations, toValuationResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

// LatestValuation returns the fund's most recent valuation.
// GET /api/funds/{name}/valuations/latest
func (h *HistoryHandler) LatestValuation(w http.ResponseWriter, r *http.Request) {
	fundName := r.PathValue("name")

	valuation, err := h.history.LatestValuation(r.Context(), fundName)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: latest valuation failed",
			slog.String("fund", fundName),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toValuationResponse(valuation))
}

type listOperationsResponse struct {
	Operations []operationResponse `json:"operations"`
	Total      int                 `json:"total"`
}

// ListOperations returns the fund's audit log entries, newest first, along
// with the total count for pagination.
// GET /api/funds/{name}/operations?limit=50&offset=0
func (h *HistoryHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	fundName := r.PathValue("name")
	limit, offset := parsePagination(r)

	ops, total, err := h.history.ListOperations(r.Context(), fundName, limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list operations failed",
			slog.String("fund", fundName),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	out := listOperationsResponse{
		Operations: make([]operationResponse, 0, len(ops)),
		Total:      total,
	}
	for _, op := range ops {
		out.Operations = append(out.Operations, toOperationResponse(op))
	}
	writeJSON(w, http.StatusOK, out)
}
