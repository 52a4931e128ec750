package request

type CreateStockRequest struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	ISIN     string `json:"isin,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Sector   string `json:"sector,omitempty"`
}

type CreateAccountRequest struct {
	AccountNumber string `json:"accountNumber"`
	Broker        string `json:"broker,omitempty"`
	Description   string `json:"description,omitempty"`
}

type CreateOwnerRequest struct {
	Name string `json:"name"`
}

type CreateGoalRequest struct {
	Name         string   `json:"name"`
	TargetAmount *float64 `json:"targetAmount,omitempty"`
}
