package holdings

// Holding is a fund position the user actually owns
type Holding struct {
	FundCode            string  `json:"fund_code"`
	Name                string  `json:"name"`
	CostBasis           float64 `json:"cost_basis"` // per-share purchase NAV
	Amount              float64 `json:"amount"`     // total invested, currency
	PurchaseDate        string  `json:"purchase_date,omitempty"`
	InvestmentStartDate string  `json:"investment_start_date,omitempty"`
	Note                string  `json:"note,omitempty"`
	CreatedAt           string  `json:"created_at,omitempty"`
	UpdatedAt           string  `json:"updated_at,omitempty"`
}

// WatchItem is a fund tracked without a position
type WatchItem struct {
	FundCode       string `json:"fund_code"`
	Name           string `json:"name"`
	WatchStartDate string `json:"watch_start_date,omitempty"`
	Note           string `json:"note,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}
