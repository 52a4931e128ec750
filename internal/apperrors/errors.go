package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrStockNotFound indicates that a stock with the given ID does not exist.
	ErrStockNotFound = errors.New("stock not found")

	// ErrAccountNotFound indicates that an account with the given ID does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrOwnerNotFound indicates that an owner with the given ID does not exist.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrGoalNotFound indicates that a goal with the given ID does not exist.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrTradeNotFound indicates that a trade with the given ID does not exist.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrAllocationNotFound indicates that an allocation with the given ID does not exist.
	ErrAllocationNotFound = errors.New("allocation not found")

	// ErrCorporateActionNotFound indicates that a corporate action record does not exist.
	ErrCorporateActionNotFound = errors.New("corporate action not found")

	// ErrPriceUnavailable indicates no cached price exists for the requested stock.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business
// rules. They are caller-correctable and are never retried automatically.
var (
	// ErrInsufficientHoldings indicates that a sell cannot be matched because
	// the requested quantity exceeds the remaining quantity across all open lots.
	ErrInsufficientHoldings = errors.New("sell quantity exceeds available holdings")

	// ErrInsufficientUnits indicates that an allocation cannot be created or
	// grown because the requested quantity exceeds the unassigned unit pool.
	ErrInsufficientUnits = errors.New("insufficient unallocated units")

	// ErrInvalidOwner indicates that the referenced owner does not exist.
	ErrInvalidOwner = errors.New("owner does not exist")

	// ErrInvalidGoal indicates that the referenced goal does not exist.
	ErrInvalidGoal = errors.New("goal does not exist")

	// ErrAllocationMismatch indicates that an allocation does not belong to the
	// stock/account pair the ledger is scoped to.
	ErrAllocationMismatch = errors.New("allocation does not belong to this stock/account")

	// ErrActionAlreadyApplied indicates an attempt to apply a corporate action
	// that has already transitioned to the applied state.
	ErrActionAlreadyApplied = errors.New("corporate action already applied")

	// ErrDuplicateTrade indicates that a trade with the same external trade ID
	// already exists for the account.
	ErrDuplicateTrade = errors.New("duplicate trade for account")

	// ErrInvalidQuantity indicates a quantity that is zero or negative.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidPrice indicates a price that is zero or negative.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrInvalidTradeType indicates a trade type other than buy or sell.
	ErrInvalidTradeType = errors.New("trade type must be buy or sell")

	// ErrInvalidDate indicates a date that could not be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")
)

// Data integrity errors represent inconsistencies discovered outside the
// documented mutation paths. These indicate a programming defect and the
// surrounding operation must abort rather than silently self-correct.
var (
	// ErrAllocationInvariant indicates that total allocated quantity exceeds
	// total held quantity for a stock/account pair.
	ErrAllocationInvariant = errors.New("allocated quantity exceeds held quantity")
)
