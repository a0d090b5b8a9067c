// Package memory provides an in-memory Ledger Store with the same
// transactional contract as the postgres adapter. It backs unit tests and
// local runs that do not need durability.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rmvieira/fundledger-backend/internal/domain"
)

// txMarker flags a context as already inside a store transaction.
type txMarker struct{}

// Store holds all ledger state in process memory. The per-aggregate
// repositories are exposed through Funds, Positions, Valuations and
// Operations; Store itself implements domain.TxManager.
//
// WithinTx locks the whole store and restores a snapshot when the unit of
// work fails, giving the same all-or-nothing guarantee as a database
// transaction.
type Store struct {
	mu sync.Mutex

	funds      map[uuid.UUID]domain.Fund
	fundNames  map[string]uuid.UUID
	positions  map[uuid.UUID]map[string]domain.Position // fund ID -> ticker
	valuations map[uuid.UUID][]domain.Valuation
	operations map[uuid.UUID][]domain.Operation
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		funds:      make(map[uuid.UUID]domain.Fund),
		fundNames:  make(map[string]uuid.UUID),
		positions:  make(map[uuid.UUID]map[string]domain.Position),
		valuations: make(map[uuid.UUID][]domain.Valuation),
		operations: make(map[uuid.UUID][]domain.Operation),
	}
}

// Funds returns the fund repository view of the store
func (s *Store) Funds() domain.FundRepository { return &fundRepo{s} }

// Positions returns the position repository view of the store
func (s *Store) Positions() domain.PositionRepository { return &positionRepo{s} }

// Valuations returns the valuation repository view of the store
func (s *Store) Valuations() domain.ValuationRepository { return &valuationRepo{s} }

// Operations returns the operation repository view of the store
func (s *Store) Operations() domain.OperationRepository { return &operationRepo{s} }

// WithinTx runs fn while holding the store lock. If fn returns an error the
// store is rolled back to its state at the start of the call.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls join the already-open unit of work
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, struct{}{})); err != nil {
		s.restore(snap)
		return err
	}

	return nil
}

// lock acquires the store lock unless ctx is already inside a transaction.
// The returned func releases whatever was acquired.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txMarker{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type storeSnapshot struct {
	funds      map[uuid.UUID]domain.Fund
	fundNames  map[string]uuid.UUID
	positions  map[uuid.UUID]map[string]domain.Position
	valuations map[uuid.UUID][]domain.Valuation
	operations map[uuid.UUID][]domain.Operation
}

// snapshot copies the store state. Valuation and operation records are
// write-once, so copying the slice headers is enough.
func (s *Store) snapshot() storeSnapshot {
	snap := storeSnapshot{
		funds:      make(map[uuid.UUID]domain.Fund, len(s.funds)),
		fundNames:  make(map[string]uuid.UUID, len(s.fundNames)),
		positions:  make(map[uuid.UUID]map[string]domain.Position, len(s.positions)),
		valuations: make(map[uuid.UUID][]domain.Valuation, len(s.valuations)),
		operations: make(map[uuid.UUID][]domain.Operation, len(s.operations)),
	}
	for id, fund := range s.funds {
		snap.funds[id] = fund
	}
	for name, id := range s.fundNames {
		snap.fundNames[name] = id
	}
	for id, byTicker := range s.positions {
		cp := make(map[string]domain.Position, len(byTicker))
		for ticker, pos := range byTicker {
			cp[ticker] = pos
		}
		snap.positions[id] = cp
	}
	for id, vals := range s.valuations {
		snap.valuations[id] = vals[:len(vals):len(vals)]
	}
	for id, ops := range s.operations {
		snap.operations[id] = ops[:len(ops):len(ops)]
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.funds = snap.funds
	s.fundNames = snap.fundNames
	s.positions = snap.positions
	s.valuations = snap.valuations
	s.operations = snap.operations
}

// --- fund repository ---

type fundRepo struct{ s *Store }

func (r *fundRepo) Create(ctx context.Context, fund *domain.Fund) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.fundNames[fund.Name]; exists {
		return &domain.DuplicateFundError{Name: fund.Name}
	}

	r.s.funds[fund.ID] = *fund
	r.s.fundNames[fund.Name] = fund.ID
	return nil
}

func (r *fundRepo) GetByName(ctx context.Context, name string) (*domain.Fund, error) {
	defer r.s.lock(ctx)()

	id, exists := r.s.fundNames[name]
	if !exists {
		return nil, &domain.FundNotFoundError{Name: name}
	}

	fund := r.s.funds[id]
	return &fund, nil
}

func (r *fundRepo) Update(ctx context.Context, fund *domain.Fund) error {
	defer r.s.lock(ctx)()

	r.s.funds[fund.ID] = *fund
	return nil
}

func (r *fundRepo) List(ctx context.Context) ([]*domain.Fund, error) {
	defer r.s.lock(ctx)()

	funds := make([]*domain.Fund, 0, len(r.s.funds))
	for _, fund := range r.s.funds {
		cp := fund
		funds = append(funds, &cp)
	}
	sort.Slice(funds, func(i, j int) bool { return funds[i].Name < funds[j].Name })
	return funds, nil
}

// --- position repository ---

type positionRepo struct{ s *Store }

func (r *positionRepo) GetByFundAndTicker(ctx context.Context, fundID uuid.UUID, ticker string) (*domain.Position, error) {
	defer r.s.lock(ctx)()

	pos, exists := r.s.positions[fundID][ticker]
	if !exists {
		return nil, nil
	}
	return &pos, nil
}

func (r *positionRepo) ListByFund(ctx context.Context, fundID uuid.UUID) ([]*domain.Position, error) {
	defer r.s.lock(ctx)()

	byTicker := r.s.positions[fundID]
	positions := make([]*domain.Position, 0, len(byTicker))
	for _, pos := range byTicker {
		cp := pos
		positions = append(positions, &cp)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Ticker < positions[j].Ticker })
	return positions, nil
}

func (r *positionRepo) Upsert(ctx context.Context, position *domain.Position) error {
	defer r.s.lock(ctx)()

	byTicker, exists := r.s.positions[position.FundID]
	if !exists {
		byTicker = make(map[string]domain.Position)
		r.s.positions[position.FundID] = byTicker
	}
	byTicker[position.Ticker] = *position
	return nil
}

// --- valuation repository ---

type valuationRepo struct{ s *Store }

func (r *valuationRepo) Add(ctx context.Context, valuation *domain.Valuation) error {
	defer r.s.lock(ctx)()

	r.s.valuations[valuation.FundID] = append(r.s.valuations[valuation.FundID], *valuation)
	return nil
}

func (r *valuationRepo) ListByFund(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*domain.Valuation, error) {
	defer r.s.lock(ctx)()

	all := r.s.valuations[fundID]
	page := make([]*domain.Valuation, 0, limit)
	for i := len(all) - 1 - offset; i >= 0 && len(page) < limit; i-- {
		cp := all[i]
		page = append(page, &cp)
	}
	return page, nil
}

func (r *valuationRepo) GetLatest(ctx context.Context, fundID uuid.UUID) (*domain.Valuation, error) {
	defer r.s.lock(ctx)()

	all := r.s.valuations[fundID]
	if len(all) == 0 {
		return nil, domain.ErrNoValuations
	}
	cp := all[len(all)-1]
	return &cp, nil
}

// --- operation repository ---

type operationRepo struct{ s *Store }

func (r *operationRepo) Add(ctx context.Context, operation *domain.Operation) error {
	defer r.s.lock(ctx)()

	r.s.operations[operation.FundID] = append(r.s.operations[operation.FundID], *operation)
	return nil
}

func (r *operationRepo) ListByFund(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*domain.Operation, error) {
	defer r.s.lock(ctx)()

	all := r.s.operations[fundID]
	page := make([]*domain.Operation, 0, limit)
	for i := len(all) - 1 - offset; i >= 0 && len(page) < limit; i-- {
		cp := all[i]
		page = append(page, &cp)
	}
	return page, nil
}

func (r *operationRepo) CountByFund(ctx context.Context, fundID uuid.UUID) (int, error) {
	defer r.s.lock(ctx)()

	return len(r.s.operations[fundID]), nil
}
