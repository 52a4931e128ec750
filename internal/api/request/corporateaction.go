package request

type CreateCorporateActionRequest struct {
	StockID    string   `json:"stockId"`
	ActionType string   `json:"actionType"`
	RecordDate string   `json:"recordDate,omitempty"`
	RatioFrom  int64    `json:"ratioFrom"`
	RatioTo    int64    `json:"ratioTo"`
	OldPrice   *float64 `json:"oldPrice,omitempty"`
	NewPrice   *float64 `json:"newPrice,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}
