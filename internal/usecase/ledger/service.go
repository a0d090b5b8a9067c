package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmvieira/fundledger-backend/internal/domain"
)

// LedgerService is the fund ledger engine. Every operation executes as one
// all-or-nothing unit of work against the store: it either fully commits its
// effects or leaves state unchanged.
type LedgerService struct {
	FundRepo      domain.FundRepository
	PositionRepo  domain.PositionRepository
	ValuationRepo domain.ValuationRepository
	OperationRepo domain.OperationRepository
	Oracle        domain.PriceOracle
	Tx            domain.TxManager
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(
	fundRepo domain.FundRepository,
	positionRepo domain.PositionRepository,
	valuationRepo domain.ValuationRepository,
	operationRepo domain.OperationRepository,
	oracle domain.PriceOracle,
	tx domain.TxManager,
) *LedgerService {
	return &LedgerService{
		FundRepo:      fundRepo,
		PositionRepo:  positionRepo,
		ValuationRepo: valuationRepo,
		OperationRepo: operationRepo,
		Oracle:        oracle,
		Tx:            tx,
	}
}

// TradeResult reports the outcome of a buy or sell: the fund's state after
// the trade, the affected position, and the oracle price the trade executed
// at.
type TradeResult struct {
	Fund     *domain.Fund
	Position *domain.Position
	Price    decimal.Decimal
}

// PositionDetail is one row of a fund composition
type PositionDetail struct {
	Ticker           string
	SharesHeld       decimal.Decimal
	MarketPrice      decimal.Decimal
	AvgPurchasePrice decimal.Decimal
	LastPurchaseAt   time.Time
	MarketValue      decimal.Decimal
}

// Composition is the up-to-date breakdown of a fund: cash, per-ticker
// positions with current market prices, and the grand total value.
type Composition struct {
	FundName   string
	Cash       decimal.Decimal
	Positions  []PositionDetail
	TotalValue decimal.Decimal
}

// FundValuationResult is the per-fund outcome of a batch valuation
type FundValuationResult struct {
	FundName   string
	TotalValue decimal.Decimal
	ValuedAt   time.Time
}

// FundValuationFailure reports a fund whose batch valuation failed
type FundValuationFailure struct {
	FundName string
	Err      error
}

// ValuateAllReport aggregates the outcome of ValuateAllFunds. A fund's
// failure never blocks the valuation of the others.
type ValuateAllReport struct {
	Valuated []FundValuationResult
	Failed   []FundValuationFailure
}

// CreateFund creates a new fund with the given name and starting cash.
// It records a CREATE operation and an initial valuation equal to the
// starting cash; all three inserts commit atomically.
// Returns *domain.DuplicateFundError if the name is already taken.
func (s *LedgerService) CreateFund(ctx context.Context, name string, initialCash decimal.Decimal) (*domain.Fund, error) {
	if name == "" {
		return nil, errors.New("fund name cannot be empty")
	}
	if initialCash.IsNegative() {
		return nil, errors.New("initial cash cannot be negative")
	}

	now := time.Now().UTC()
	fund := &domain.Fund{
		ID:        uuid.New(),
		Name:      name,
		Cash:      initialCash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := fund.Validate(); err != nil {
		return nil, err
	}

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.FundRepo.Create(ctx, fund); err != nil {
			return err
		}

		op := &domain.Operation{
			ID:         uuid.New(),
			FundID:     fund.ID,
			Kind:       domain.OperationKindCreate,
			Shares:     decimal.Zero,
			Price:      decimal.Zero,
			OccurredAt: now,
		}
		if err := s.OperationRepo.Add(ctx, op); err != nil {
			return err
		}

		return s.ValuationRepo.Add(ctx, &domain.Valuation{
			ID:          uuid.New(),
			FundID:      fund.ID,
			ValuationAt: now,
			TotalValue:  initialCash,
		})
	})
	if err != nil {
		return nil, err
	}

	return fund, nil
}

// BuyShares buys numShares of ticker for the fund at the oracle's current
// price, debiting cash and folding the purchase into the position's
// weighted-average cost basis. Nothing is mutated on any failure.
func (s *LedgerService) BuyShares(ctx context.Context, fundName, ticker string, numShares decimal.Decimal) (*TradeResult, error) {
	if err := validateTradeInput(ticker, numShares); err != nil {
		return nil, err
	}

	var result *TradeResult
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		fund, err := s.FundRepo.GetByName(ctx, fundName)
		if err != nil {
			return err
		}

		price, err := s.Oracle.Quote(ctx, ticker)
		if err != nil {
			return &domain.PriceUnavailableError{Ticker: ticker, Err: err}
		}

		cost := price.Mul(numShares)
		if fund.Cash.LessThan(cost) {
			return &domain.InsufficientFundsError{
				FundName:  fundName,
				Required:  cost,
				Available: fund.Cash,
			}
		}

		now := time.Now().UTC()

		if err := fund.Debit(cost); err != nil {
			return err
		}

		position, err := s.PositionRepo.GetByFundAndTicker(ctx, fund.ID, ticker)
		if err != nil {
			return err
		}
		if position == nil {
			position = &domain.Position{
				ID:     uuid.New(),
				FundID: fund.ID,
				Ticker: ticker,
			}
		}
		position.ApplyBuy(numShares, price, now)
		if err := position.Validate(); err != nil {
			return err
		}
		if err := s.PositionRepo.Upsert(ctx, position); err != nil {
			return err
		}

		op := &domain.Operation{
			ID:         uuid.New(),
			FundID:     fund.ID,
			Ticker:     ticker,
			Kind:       domain.OperationKindBuy,
			Shares:     numShares,
			Price:      price,
			OccurredAt: now,
		}
		if err := s.OperationRepo.Add(ctx, op); err != nil {
			return err
		}

		fund.UpdatedAt = now
		if err := s.FundRepo.Update(ctx, fund); err != nil {
			return err
		}

		result = &TradeResult{Fund: fund, Position: position, Price: price}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SellShares sells numShares of ticker from the fund at the oracle's
// current price, crediting the proceeds to cash. The position's average
// purchase price is left unchanged: selling does not alter the cost basis
// of the remaining shares. Nothing is mutated on any failure.
func (s *LedgerService) SellShares(ctx context.Context, fundName, ticker string, numShares decimal.Decimal) (*TradeResult, error) {
	if err := validateTradeInput(ticker, numShares); err != nil {
		return nil, err
	}

	var result *TradeResult
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		fund, err := s.FundRepo.GetByName(ctx, fundName)
		if err != nil {
			return err
		}

		position, err := s.PositionRepo.GetByFundAndTicker(ctx, fund.ID, ticker)
		if err != nil {
			return err
		}

		available := decimal.Zero
		if position != nil {
			available = position.SharesHeld
		}
		if position == nil || available.LessThan(numShares) {
			return &domain.InsufficientSharesError{
				FundName:  fundName,
				Ticker:    ticker,
				Requested: numShares,
				Available: available,
			}
		}

		price, err := s.Oracle.Quote(ctx, ticker)
		if err != nil {
			return &domain.PriceUnavailableError{Ticker: ticker, Err: err}
		}
		proceeds := price.Mul(numShares)

		now := time.Now().UTC()

		if err := position.ApplySell(numShares); err != nil {
			return err
		}
		if err := s.PositionRepo.Upsert(ctx, position); err != nil {
			return err
		}

		if err := fund.Credit(proceeds); err != nil {
			return err
		}

		op := &domain.Operation{
			ID:         uuid.New(),
			FundID:     fund.ID,
			Ticker:     ticker,
			Kind:       domain.OperationKindSell,
			Shares:     numShares,
			Price:      price,
			OccurredAt: now,
		}
		if err := s.OperationRepo.Add(ctx, op); err != nil {
			return err
		}

		fund.UpdatedAt = now
		if err := s.FundRepo.Update(ctx, fund); err != nil {
			return err
		}

		result = &TradeResult{Fund: fund, Position: position, Price: price}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ValuateFund recomputes the fund's total value (cash plus market value of
// every held position, one oracle quote per distinct ticker) and appends a
// new valuation snapshot. Cash and positions are not mutated. If any held
// ticker has no quote, no valuation is recorded.
func (s *LedgerService) ValuateFund(ctx context.Context, fundName string) (*domain.Valuation, error) {
	var valuation *domain.Valuation
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		snap, err := s.takeSnapshot(ctx, fundName)
		if err != nil {
			return err
		}
		valuation = snap.valuation
		return nil
	})
	if err != nil {
		return nil, err
	}

	return valuation, nil
}

// ValuateAllFunds applies ValuateFund's snapshot logic to every fund in the
// store. Each fund is valuated in its own transaction so that one fund's
// failure (e.g. a ticker with no quote) does not prevent valuation of the
// others; failures are collected and reported in the aggregate result.
func (s *LedgerService) ValuateAllFunds(ctx context.Context) (*ValuateAllReport, error) {
	funds, err := s.FundRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &ValuateAllReport{
		Valuated: make([]FundValuationResult, 0, len(funds)),
		Failed:   make([]FundValuationFailure, 0),
	}

	for _, fund := range funds {
		valuation, err := s.ValuateFund(ctx, fund.Name)
		if err != nil {
			report.Failed = append(report.Failed, FundValuationFailure{
				FundName: fund.Name,
				Err:      err,
			})
			continue
		}
		report.Valuated = append(report.Valuated, FundValuationResult{
			FundName:   fund.Name,
			TotalValue: valuation.TotalValue,
			ValuedAt:   valuation.ValuationAt,
		})
	}

	return report, nil
}

// GetComposition forces a fresh valuation (so a snapshot is always recorded
// as a side effect of reading composition) and returns the fund's cash,
// per-ticker positions with current market prices, and grand total value.
// The composition is built from the same quotes the valuation used, so each
// distinct ticker is quoted exactly once.
func (s *LedgerService) GetComposition(ctx context.Context, fundName string) (*Composition, error) {
	var composition *Composition
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		snap, err := s.takeSnapshot(ctx, fundName)
		if err != nil {
			return err
		}

		details := make([]PositionDetail, 0, len(snap.positions))
		for _, pos := range snap.positions {
			if !pos.SharesHeld.IsPositive() {
				continue
			}
			price := snap.quotes[pos.Ticker]
			details = append(details, PositionDetail{
				Ticker:           pos.Ticker,
				SharesHeld:       pos.SharesHeld,
				MarketPrice:      price,
				AvgPurchasePrice: pos.AvgPurchasePrice,
				LastPurchaseAt:   pos.LastPurchaseAt,
				MarketValue:      pos.MarketValue(price),
			})
		}

		composition = &Composition{
			FundName:   snap.fund.Name,
			Cash:       snap.fund.Cash,
			Positions:  details,
			TotalValue: snap.valuation.TotalValue,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return composition, nil
}

// fundSnapshot carries everything a single valuation pass produced
type fundSnapshot struct {
	fund      *domain.Fund
	positions []*domain.Position
	quotes    map[string]decimal.Decimal
	valuation *domain.Valuation
}

// takeSnapshot quotes every held ticker once, appends a valuation record and
// bumps the fund's updated_at. Must run inside a transaction.
func (s *LedgerService) takeSnapshot(ctx context.Context, fundName string) (*fundSnapshot, error) {
	fund, err := s.FundRepo.GetByName(ctx, fundName)
	if err != nil {
		return nil, err
	}

	positions, err := s.PositionRepo.ListByFund(ctx, fund.ID)
	if err != nil {
		return nil, err
	}

	totalValue := fund.Cash
	quotes := make(map[string]decimal.Decimal)
	for _, pos := range positions {
		if !pos.SharesHeld.IsPositive() {
			continue
		}
		price, err := s.Oracle.Quote(ctx, pos.Ticker)
		if err != nil {
			return nil, &domain.PriceUnavailableError{Ticker: pos.Ticker, Err: err}
		}
		quotes[pos.Ticker] = price
		totalValue = totalValue.Add(pos.MarketValue(price))
	}

	now := time.Now().UTC()
	valuation := &domain.Valuation{
		ID:          uuid.New(),
		FundID:      fund.ID,
		ValuationAt: now,
		TotalValue:  totalValue,
	}
	if err := s.ValuationRepo.Add(ctx, valuation); err != nil {
		return nil, err
	}

	fund.UpdatedAt = now
	if err := s.FundRepo.Update(ctx, fund); err != nil {
		return nil, err
	}

	return &fundSnapshot{
		fund:      fund,
		positions: positions,
		quotes:    quotes,
		valuation: valuation,
	}, nil
}

// validateTradeInput rejects empty tickers and non-positive share counts
// before any store or oracle access
func validateTradeInput(ticker string, numShares decimal.Decimal) error {
	if ticker == "" {
		return errors.New("ticker cannot be empty")
	}
	if !numShares.IsPositive() {
		return errors.New("number of shares must be positive")
	}
	return nil
}
