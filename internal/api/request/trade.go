package request

type CreateTradeRequest struct {
	StockID       string  `json:"stockId"`
	AccountID     string  `json:"accountId"`
	TradeType     string  `json:"tradeType"`
	TradeDate     string  `json:"tradeDate"`
	TradeDatetime string  `json:"tradeDatetime,omitempty"`
	Quantity      int64   `json:"quantity"`
	Price         float64 `json:"price"`
	TradeID       string  `json:"tradeId"`
	OrderID       string  `json:"orderId,omitempty"`
	Exchange      string  `json:"exchange,omitempty"`
}

type ImportTradesRequest struct {
	Trades []CreateTradeRequest `json:"trades"`
}
