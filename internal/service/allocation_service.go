package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/fifo"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
)

// AllocationService manages the assignment of held units to owners and goals.
//
// All writes for a given stock/account pair are serialized through a per-pair
// lock so the check-then-insert on available units cannot race: the sum of
// allocation quantities for a pair never exceeds the quantity held.
type AllocationService struct {
	allocationRepo *repository.AllocationRepository
	ownerRepo      *repository.OwnerRepository
	goalRepo       *repository.GoalRepository
	stockRepo      *repository.StockRepository
	accountRepo    *repository.AccountRepository
	tradeRepo      *repository.TradeRepository
	holdings       *HoldingsService
	log            zerolog.Logger

	mu        sync.Mutex
	pairLocks map[string]*sync.Mutex
}

// NewAllocationService creates a new AllocationService with the provided dependencies.
func NewAllocationService(
	allocationRepo *repository.AllocationRepository,
	ownerRepo *repository.OwnerRepository,
	goalRepo *repository.GoalRepository,
	stockRepo *repository.StockRepository,
	accountRepo *repository.AccountRepository,
	tradeRepo *repository.TradeRepository,
	holdings *HoldingsService,
	log zerolog.Logger,
) *AllocationService {
	return &AllocationService{
		allocationRepo: allocationRepo,
		ownerRepo:      ownerRepo,
		goalRepo:       goalRepo,
		stockRepo:      stockRepo,
		accountRepo:    accountRepo,
		tradeRepo:      tradeRepo,
		holdings:       holdings,
		log:            log.With().Str("component", "allocation_service").Logger(),
		pairLocks:      make(map[string]*sync.Mutex),
	}
}

func (s *AllocationService) pairLock(stockID, accountID string) *sync.Mutex {
	key := stockID + "|" + accountID
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.pairLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.pairLocks[key] = lock
	}
	return lock
}

// NewAllocationInput carries the caller-chosen fields of an allocation.
// BuyPrice and BuyDate are derived, never supplied.
type NewAllocationInput struct {
	StockID   string
	AccountID string
	OwnerID   string
	GoalID    string
	Quantity  int64
}

// AvailableUnits returns how many held units of a pair are not yet assigned
// to any allocation.
func (s *AllocationService) AvailableUnits(stockID, accountID string) (int64, error) {
	engine, err := s.holdings.ReplayPair(stockID, accountID)
	if err != nil {
		return 0, err
	}
	allocated, err := s.allocationRepo.SumQuantityForPair(stockID, accountID)
	if err != nil {
		return 0, err
	}
	return engine.AvailableQuantity() - allocated, nil
}

// CreateAllocation assigns units of a holding to an owner and goal. The
// allocation's buy price and buy date are frozen from the FIFO lots that
// notionally fund it: open lots are walked oldest first, units already
// claimed by existing allocations are skipped, and the new allocation takes
// the next unclaimed units.
//
// Owner and goal references are validated before the quantity, so a request
// that is wrong in both ways reports the reference problem.
func (s *AllocationService) CreateAllocation(ctx context.Context, input NewAllocationInput) (model.Allocation, error) {
	lock := s.pairLock(input.StockID, input.AccountID)
	lock.Lock()
	defer lock.Unlock()

	ok, err := s.ownerRepo.OwnerExists(input.OwnerID)
	if err != nil {
		return model.Allocation{}, err
	}
	if !ok {
		return model.Allocation{}, fmt.Errorf("owner %s: %w", input.OwnerID, apperrors.ErrInvalidOwner)
	}
	ok, err = s.goalRepo.GoalExists(input.GoalID)
	if err != nil {
		return model.Allocation{}, err
	}
	if !ok {
		return model.Allocation{}, fmt.Errorf("goal %s: %w", input.GoalID, apperrors.ErrInvalidGoal)
	}
	if input.Quantity <= 0 {
		return model.Allocation{}, apperrors.ErrInvalidQuantity
	}

	engine, err := s.holdings.ReplayPair(input.StockID, input.AccountID)
	if err != nil {
		return model.Allocation{}, err
	}
	allocated, err := s.allocationRepo.SumQuantityForPair(input.StockID, input.AccountID)
	if err != nil {
		return model.Allocation{}, err
	}

	available := engine.AvailableQuantity() - allocated
	if available < 0 {
		// Existing allocations already exceed the holding; the pair needs a
		// sync before anything new can be assigned.
		return model.Allocation{}, fmt.Errorf("pair %s/%s: %w",
			input.StockID, input.AccountID, apperrors.ErrAllocationInvariant)
	}
	if input.Quantity > available {
		return model.Allocation{}, fmt.Errorf("requested %d of %d unassigned units: %w",
			input.Quantity, available, apperrors.ErrInsufficientUnits)
	}

	buyPrice, buyDate := fundingLots(engine.Lots(), allocated, input.Quantity)

	now := time.Now().UTC()
	allocation := model.Allocation{
		ID:        uuid.New().String(),
		StockID:   input.StockID,
		AccountID: input.AccountID,
		OwnerID:   input.OwnerID,
		GoalID:    input.GoalID,
		Quantity:  input.Quantity,
		BuyPrice:  buyPrice,
		BuyDate:   buyDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.allocationRepo.InsertAllocation(ctx, &allocation); err != nil {
		return model.Allocation{}, err
	}
	return allocation, nil
}

// fundingLots walks open lots oldest first, skips units already claimed by
// earlier allocations, and returns the weighted average price and earliest
// buy date of the next quantity unclaimed units.
func fundingLots(lots []fifo.Lot, skip, quantity int64) (decimal.Decimal, time.Time) {
	var buyDate time.Time
	totalValue := decimal.Zero
	taken := int64(0)

	for _, lot := range lots {
		lotUnits := lot.RemainingQty
		if skip >= lotUnits {
			skip -= lotUnits
			continue
		}
		lotUnits -= skip
		skip = 0

		take := min(lotUnits, quantity-taken)
		if take <= 0 {
			break
		}
		if buyDate.IsZero() {
			buyDate = lot.TradeDate
		}
		totalValue = totalValue.Add(lot.Price.Mul(decimal.NewFromInt(take)))
		taken += take
		if taken == quantity {
			break
		}
	}

	if taken == 0 {
		return decimal.Zero, buyDate
	}
	return totalValue.Div(decimal.NewFromInt(taken)).Round(4), buyDate
}

// ReallocateToDefault assigns unallocated units of a pair to the seeded
// default owner and goal, parking units that have no explicit owner yet. The
// allocation goes through the normal create path, so the frozen buy price and
// the available-units check apply unchanged.
func (s *AllocationService) ReallocateToDefault(ctx context.Context, stockID, accountID string, quantity int64) (model.Allocation, error) {
	owner, err := s.ownerRepo.GetDefaultOwner()
	if err != nil {
		return model.Allocation{}, err
	}
	goal, err := s.goalRepo.GetDefaultGoal()
	if err != nil {
		return model.Allocation{}, err
	}
	return s.CreateAllocation(ctx, NewAllocationInput{
		StockID:   stockID,
		AccountID: accountID,
		OwnerID:   owner.ID,
		GoalID:    goal.ID,
		Quantity:  quantity,
	})
}

// UpdateAllocationInput carries the updatable fields of an allocation.
// A nil field means keep the current value. StockID and AccountID, when set,
// assert which pair the allocation is expected to belong to.
type UpdateAllocationInput struct {
	StockID   string
	AccountID string
	OwnerID   *string
	GoalID    *string
	Quantity  *int64
}

// UpdateAllocation changes an allocation's owner, goal, or quantity. The
// frozen buy price and buy date are never recalculated; a quantity increase
// must still fit within the pair's held units.
func (s *AllocationService) UpdateAllocation(ctx context.Context, id string, input UpdateAllocationInput) (model.Allocation, error) {
	allocation, err := s.allocationRepo.GetAllocation(id)
	if err != nil {
		return model.Allocation{}, err
	}
	if input.StockID != "" && input.StockID != allocation.StockID {
		return model.Allocation{}, fmt.Errorf("allocation %s: %w", id, apperrors.ErrAllocationMismatch)
	}
	if input.AccountID != "" && input.AccountID != allocation.AccountID {
		return model.Allocation{}, fmt.Errorf("allocation %s: %w", id, apperrors.ErrAllocationMismatch)
	}

	lock := s.pairLock(allocation.StockID, allocation.AccountID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: a concurrent sync may have shrunk it.
	allocation, err = s.allocationRepo.GetAllocation(id)
	if err != nil {
		return model.Allocation{}, err
	}

	if input.OwnerID != nil {
		ok, err := s.ownerRepo.OwnerExists(*input.OwnerID)
		if err != nil {
			return model.Allocation{}, err
		}
		if !ok {
			return model.Allocation{}, fmt.Errorf("owner %s: %w", *input.OwnerID, apperrors.ErrInvalidOwner)
		}
		allocation.OwnerID = *input.OwnerID
	}
	if input.GoalID != nil {
		ok, err := s.goalRepo.GoalExists(*input.GoalID)
		if err != nil {
			return model.Allocation{}, err
		}
		if !ok {
			return model.Allocation{}, fmt.Errorf("goal %s: %w", *input.GoalID, apperrors.ErrInvalidGoal)
		}
		allocation.GoalID = *input.GoalID
	}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return model.Allocation{}, apperrors.ErrInvalidQuantity
		}
		engine, err := s.holdings.ReplayPair(allocation.StockID, allocation.AccountID)
		if err != nil {
			return model.Allocation{}, err
		}
		allocated, err := s.allocationRepo.SumQuantityForPair(allocation.StockID, allocation.AccountID)
		if err != nil {
			return model.Allocation{}, err
		}
		otherAllocated := allocated - allocation.Quantity
		if otherAllocated+*input.Quantity > engine.AvailableQuantity() {
			return model.Allocation{}, fmt.Errorf("requested %d with %d units held and %d assigned elsewhere: %w",
				*input.Quantity, engine.AvailableQuantity(), otherAllocated, apperrors.ErrInsufficientUnits)
		}
		allocation.Quantity = *input.Quantity
	}

	allocation.UpdatedAt = time.Now().UTC()
	if err := s.allocationRepo.UpdateAllocation(ctx, &allocation); err != nil {
		return model.Allocation{}, err
	}
	return allocation, nil
}

// DeleteAllocation removes an allocation, returning its units to the
// unassigned pool.
func (s *AllocationService) DeleteAllocation(ctx context.Context, id string) error {
	allocation, err := s.allocationRepo.GetAllocation(id)
	if err != nil {
		return err
	}

	lock := s.pairLock(allocation.StockID, allocation.AccountID)
	lock.Lock()
	defer lock.Unlock()

	return s.allocationRepo.DeleteAllocation(ctx, id)
}

// SyncPair restores the assigned-never-exceeds-held invariant for one pair
// after new sells shrank the holding. Excess allocated units are released
// oldest buy date first; an allocation whose quantity reaches zero is
// deleted. Sync never creates allocations and never grows one.
func (s *AllocationService) SyncPair(ctx context.Context, stockID, accountID string) (model.SyncResult, error) {
	lock := s.pairLock(stockID, accountID)
	lock.Lock()
	defer lock.Unlock()

	var result model.SyncResult

	engine, err := s.holdings.ReplayPair(stockID, accountID)
	if err != nil {
		return result, err
	}
	allocations, err := s.allocationRepo.GetAllocationsForPair(stockID, accountID)
	if err != nil {
		return result, err
	}

	var allocated int64
	for _, a := range allocations {
		allocated += a.Quantity
	}
	excess := allocated - engine.AvailableQuantity()
	if excess <= 0 {
		return result, nil
	}

	s.log.Info().
		Str("stock_id", stockID).
		Str("account_id", accountID).
		Int64("excess", excess).
		Msg("allocations exceed holdings, shrinking")

	for _, a := range allocations {
		if excess <= 0 {
			break
		}
		if a.Quantity <= excess {
			excess -= a.Quantity
			if err := s.allocationRepo.DeleteAllocation(ctx, a.ID); err != nil {
				return result, err
			}
			result.Deleted++
			continue
		}
		a.Quantity -= excess
		a.UpdatedAt = time.Now().UTC()
		excess = 0
		if err := s.allocationRepo.UpdateAllocation(ctx, &a); err != nil {
			return result, err
		}
		result.Adjusted++
	}

	return result, nil
}

// SyncAll runs SyncPair for every traded stock/account pair.
func (s *AllocationService) SyncAll(ctx context.Context) (model.SyncResult, error) {
	pairs, err := s.tradeRepo.GetTradedPairs("")
	if err != nil {
		return model.SyncResult{}, err
	}

	var total model.SyncResult
	for _, pair := range pairs {
		result, err := s.SyncPair(ctx, pair.StockID, pair.AccountID)
		if err != nil {
			return total, err
		}
		total.Adjusted += result.Adjusted
		total.Deleted += result.Deleted
	}
	return total, nil
}

// GetAllocations retrieves allocations with display names resolved,
// optionally filtered by owner or goal.
func (s *AllocationService) GetAllocations(ownerID, goalID string) ([]model.AllocationResponse, error) {
	allocations, err := s.allocationRepo.ListAllocations(ownerID, goalID)
	if err != nil {
		return nil, err
	}

	stocks, err := s.stockRepo.GetStocks()
	if err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.GetAccounts()
	if err != nil {
		return nil, err
	}
	owners, err := s.ownerRepo.ListOwners()
	if err != nil {
		return nil, err
	}
	goals, err := s.goalRepo.ListGoals()
	if err != nil {
		return nil, err
	}

	ownerNames := make(map[string]string, len(owners))
	for _, o := range owners {
		ownerNames[o.ID] = o.Name
	}
	goalNames := make(map[string]string, len(goals))
	for _, g := range goals {
		goalNames[g.ID] = g.Name
	}

	responses := make([]model.AllocationResponse, 0, len(allocations))
	for _, a := range allocations {
		r := model.AllocationResponse{
			Allocation: a,
			OwnerName:  ownerNames[a.OwnerID],
			GoalName:   goalNames[a.GoalID],
		}
		if stock, ok := stocks[a.StockID]; ok {
			r.Symbol = stock.Symbol
			r.StockName = stock.Name
		}
		if account, ok := accounts[a.AccountID]; ok {
			r.AccountNumber = account.AccountNumber
		}
		responses = append(responses, r)
	}
	return responses, nil
}
