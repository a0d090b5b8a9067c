package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rmvieira/fundledger-backend/internal/usecase/ledger"
)

// FundHandler serves the fund lifecycle endpoints: creation, trades,
// valuations and composition.
type FundHandler struct {
	ledger *ledger.LedgerService
	logger *slog.Logger
}

// NewFundHandler creates a FundHandler with the given service and logger.
func NewFundHandler(svc *ledger.LedgerService, logger *slog.Logger) *FundHandler {
	return &FundHandler{
		ledger: svc,
		logger: logger,
	}
}

type createFundRequest struct {
	Name        string          `json:"name"`
	InitialCash decimal.Decimal `json:"initial_cash"`
}

// CreateFund registers a new fund with a starting cash balance.
// POST /api/funds
func (h *FundHandler) CreateFund(w http.ResponseWriter, r *http.Request) {
	var req createFundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	fund, err := h.ledger.CreateFund(r.Context(), req.Name, req.InitialCash)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: create fund failed",
			slog.String("fund", req.Name),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFundResponse(fund))
}

type tradeRequest struct {
	Ticker string          `json:"ticker"`
	Shares decimal.Decimal `json:"shares"`
}

type tradeFunc func(ctx context.Context, fundName, ticker string, numShares decimal.Decimal) (*ledger.TradeResult, error)

// BuyShares purchases shares of a ticker for the named fund.
// POST /api/funds/{name}/buy
func (h *FundHandler) BuyShares(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, "buy", h.ledger.BuyShares)
}

// SellShares sells shares of a ticker out of the named fund.
// POST /api/funds/{name}/sell
func (h *FundHandler) SellShares(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, "sell", h.ledger.SellShares)
}

func (h *FundHandler) trade(w http.ResponseWriter, r *http.Request, kind string, exec tradeFunc) {
	fundName := r.PathValue("name")

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := exec(r.Context(), fundName, req.Ticker, req.Shares)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: trade failed",
			slog.String("kind", kind),
			slog.String("fund", fundName),
			slog.String("ticker", req.Ticker),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTradeResponse(res))
}

// ValuateFund computes and records a fresh valuation for the named fund.
// POST /api/funds/{name}/valuations
func (h *FundHandler) ValuateFund(w http.ResponseWriter, r *http.Request) {
	fundName := r.PathValue("name")

	valuation, err := h.ledger.ValuateFund(r.Context(), fundName)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: valuate fund failed",
			slog.String("fund", fundName),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toValuationResponse(valuation))
}

// ValuateAllFunds valuates every registered fund. Individual failures are
// reported in the response body without failing the whole batch.
// POST /api/valuations
func (h *FundHandler) ValuateAllFunds(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.ValuateAllFunds(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: valuate all funds failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toValuateAllResponse(report))
}

// GetComposition returns the fund's cash, positions at current market
// prices, and total value. A fresh valuation is recorded as a side effect.
// GET /api/funds/{name}/composition
func (h *FundHandler) GetComposition(w http.ResponseWriter, r *http.Request) {
	fundName := r.PathValue("name")

	comp, err := h.ledger.GetComposition(r.Context(), fundName)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get composition failed",
			slog.String("fund", fundName),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCompositionResponse(comp))
}
