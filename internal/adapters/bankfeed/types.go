package bankfeed

import "time"

// Direction of a bank transaction relative to the configured account.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Transaction is one entry in the bank's transaction history.
// It is read-only to this service; the description is free text typed by
// whoever made the transfer and must be treated as untrusted.
type Transaction struct {
	ID          string
	Direction   Direction
	Amount      int64 // minor currency units
	Description string
	Date        time.Time
}

// wireTransaction mirrors one item of the bank API response.
type wireTransaction struct {
	TransactionID   string  `json:"transactionID"`
	Type            string  `json:"type"` // "IN" | "OUT"
	Amount          float64 `json:"amount"`
	Description     string  `json:"description"`
	TransactionDate string  `json:"transactionDate"`
}

// wireResponse is the bank API response envelope.
// Success is a pointer so a missing indicator is distinguishable from false.
type wireResponse struct {
	Success      *bool             `json:"success"`
	Transactions []wireTransaction `json:"transactions"`
}
