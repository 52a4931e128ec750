package request

type ImportPnLEntryRequest struct {
	StockID       string  `json:"stockId"`
	AccountID     string  `json:"accountId"`
	EntryDate     string  `json:"entryDate"`
	ExitDate      string  `json:"exitDate"`
	Quantity      int64   `json:"quantity"`
	BuyValue      float64 `json:"buyValue"`
	SellValue     float64 `json:"sellValue"`
	FinancialYear string  `json:"financialYear,omitempty"`
}

type ImportPnLRequest struct {
	Entries []ImportPnLEntryRequest `json:"entries"`
}
