package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmvieira/fundledger-backend/internal/domain"
	"github.com/rmvieira/fundledger-backend/internal/usecase/ledger"
)

// Monetary amounts travel as JSON strings (shopspring quotes them by
// default) so clients never lose precision to float64.

type fundResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Cash      decimal.Decimal `json:"cash"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toFundResponse(f *domain.Fund) fundResponse {
	return fundResponse{
		ID:        f.ID.String(),
		Name:      f.Name,
		Cash:      f.Cash,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

type positionResponse struct {
	Ticker           string          `json:"ticker"`
	SharesHeld       decimal.Decimal `json:"shares_held"`
	AvgPurchasePrice decimal.Decimal `json:"avg_purchase_price"`
	LastPurchaseAt   time.Time       `json:"last_purchase_at"`
}

func toPositionResponse(p *domain.Position) positionResponse {
	return positionResponse{
		Ticker:           p.Ticker,
		SharesHeld:       p.SharesHeld,
		AvgPurchasePrice: p.AvgPurchasePrice,
		LastPurchaseAt:   p.LastPurchaseAt,
	}
}

type tradeResponse struct {
	Fund     fundResponse     `json:"fund"`
	Position positionResponse `json:"position"`
	Price    decimal.Decimal  `json:"price"`
}

func toTradeResponse(res *ledger.TradeResult) tradeResponse {
	return tradeResponse{
		Fund:     toFundResponse(res.Fund),
		Position: toPositionResponse(res.Position),
		Price:    res.Price,
	}
}

type valuationResponse struct {
	ID          string          `json:"id"`
	FundID      string          `json:"fund_id"`
	ValuationAt time.Time       `json:"valuation_at"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

func toValuationResponse(v *domain.Valuation) valuationResponse {
	return valuationResponse{
		ID:          v.ID.String(),
		FundID:      v.FundID.String(),
		ValuationAt: v.ValuationAt,
		TotalValue:  v.TotalValue,
	}
}

type compositionRowResponse struct {
	Ticker           string          `json:"ticker"`
	SharesHeld       decimal.Decimal `json:"shares_held"`
	MarketPrice      decimal.Decimal `json:"market_price"`
	AvgPurchasePrice decimal.Decimal `json:"avg_purchase_price"`
	LastPurchaseAt   time.Time       `json:"last_purchase_at"`
	MarketValue      decimal.Decimal `json:"market_value"`
}

type compositionResponse struct {
	FundName   string                   `json:"fund_name"`
	Cash       decimal.Decimal          `json:"cash"`
	Positions  []compositionRowResponse `json:"positions"`
	TotalValue decimal.Decimal          `json:"total_value"`
}

func toCompositionResponse(c *ledger.Composition) compositionResponse {
	rows := make([]compositionRowResponse, 0, len(c.Positions))
	for _, p := range c.Positions {
		rows = append(rows, compositionRowResponse{
			Ticker:           p.Ticker,
			SharesHeld:       p.SharesHeld,
			MarketPrice:      p.MarketPrice,
			AvgPurchasePrice: p.AvgPurchasePrice,
			LastPurchaseAt:   p.LastPurchaseAt,
			MarketValue:      p.MarketValue,
		})
	}
	return compositionResponse{
		FundName:   c.FundName,
		Cash:       c.Cash,
		Positions:  rows,
		TotalValue: c.TotalValue,
	}
}

type operationResponse struct {
	ID         string          `json:"id"`
	Ticker     string          `json:"ticker,omitempty"`
	Kind       string          `json:"kind"`
	Shares     decimal.Decimal `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func toOperationResponse(op *domain.Operation) operationResponse {
	return operationResponse{
		ID:         op.ID.String(),
		Ticker:     op.Ticker,
		Kind:       string(op.Kind),
		Shares:     op.Shares,
		Price:      op.Price,
		OccurredAt: op.OccurredAt,
	}
}

type valuatedFundResponse struct {
	FundName   string          `json:"fund_name"`
	TotalValue decimal.Decimal `json:"total_value"`
	ValuedAt   time.Time       `json:"valued_at"`
}

type failedFundResponse struct {
	FundName string `json:"fund_name"`
	Error    string `json:"error"`
}

type valuateAllResponse struct {
	Valuated []valuatedFundResponse `json:"valuated"`
	Failed   []failedFundResponse   `json:"failed"`
}

func toValuateAllResponse(report *ledger.ValuateAllReport) valuateAllResponse {
	out := valuateAllResponse{
		Valuated: make([]valuatedFundResponse, 0, len(report.Valuated)),
		Failed:   make([]failedFundResponse, 0, len(report.Failed)),
	}
	for _, v := range report.Valuated {
		out.Valuated = append(out.Valuated, valuatedFundResponse{
			FundName:   v.FundName,
			TotalValue: v.TotalValue,
			ValuedAt:   v.ValuedAt,
		})
	}
	for _, f := range report.Failed {
		out.Failed = append(out.Failed, failedFundResponse{
			FundName: f.FundName,
			Error:    f.Err.Error(),
		})
	}
	return out
}
