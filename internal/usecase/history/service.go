package history

import (
	"context"
	"errors"

	"github.com/rmvieira/fundledger-backend/internal/domain"
)

// HistoryService serves the read side of the ledger: valuation history and
// the operation audit log. It never mutates fund state.
type HistoryService struct {
	FundRepo      domain.FundRepository
	ValuationRepo domain.ValuationRepository
	OperationRepo domain.OperationRepository
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(
	fundRepo domain.FundRepository,
	valuationRepo domain.ValuationRepository,
	operationRepo domain.OperationRepository,
) *HistoryService {
	return &HistoryService{
		FundRepo:      fundRepo,
		ValuationRepo: valuationRepo,
		OperationRepo: operationRepo,
	}
}

// ListValuations returns a page of the fund's valuation snapshots, newest
// first
func (s *HistoryService) ListValuations(ctx context.Context, fundName string, limit, offset int) ([]*domain.Valuation, error) {
	if err := validatePagination(limit, offset); err != nil {
		return nil, err
	}

	fund, err := s.FundRepo.GetByName(ctx, fundName)
	if err != nil {
		return nil, err
	}

	return s.ValuationRepo.ListByFund(ctx, fund.ID, limit, offset)
}

// LatestValuation returns the fund's most recent valuation snapshot.
// Returns domain.ErrNoValuations when the fund has never been valuated.
func (s *HistoryService) LatestValuation(ctx context.Context, fundName string) (*domain.Valuation, error) {
	fund, err := s.FundRepo.GetByName(ctx, fundName)
	if err != nil {
		return nil, err
	}

	return s.ValuationRepo.GetLatest(ctx, fund.ID)
}

// ListOperations returns a page of the fund's audit log, newest first,
// together with the total number of operations recorded for accurate
// pagination
func (s *HistoryService) ListOperations(ctx context.Context, fundName string, limit, offset int) ([]*domain.Operation, int, error) {
	if err := validatePagination(limit, offset); err != nil {
		return nil, 0, err
	}

	fund, err := s.FundRepo.GetByName(ctx, fundName)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.OperationRepo.CountByFund(ctx, fund.ID)
	if err != nil {
		return nil, 0, err
	}

	operations, err := s.OperationRepo.ListByFund(ctx, fund.ID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return operations, total, nil
}

func validatePagination(limit, offset int) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}
	if offset < 0 {
		return errors.New("offset must be non-negative")
	}
	return nil
}
