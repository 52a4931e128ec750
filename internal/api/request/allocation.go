package request

type CreateAllocationRequest struct {
	StockID   string `json:"stockId"`
	AccountID string `json:"accountId"`
	OwnerID   string `json:"ownerId"`
	GoalID    string `json:"goalId"`
	Quantity  int64  `json:"quantity"`
}

type UpdateAllocationRequest struct {
	StockID   string  `json:"stockId,omitempty"`
	AccountID string  `json:"accountId,omitempty"`
	OwnerID   *string `json:"ownerId,omitempty"`
	GoalID    *string `json:"goalId,omitempty"`
	Quantity  *int64  `json:"quantity,omitempty"`
}

type ReallocateAllocationRequest struct {
	StockID   string `json:"stockId"`
	AccountID string `json:"accountId"`
	Quantity  int64  `json:"quantity"`
}

type SyncAllocationsRequest struct {
	StockID   string `json:"stockId,omitempty"`
	AccountID string `json:"accountId,omitempty"`
}
