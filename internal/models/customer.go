package models

// DrCr classifies which side of the book a balance (or entry) sits on.
type DrCr string

const (
	// DrCrDebit and DrCrCredit are transaction entry types.
	DrCrDebit  DrCr = "Debit"
	DrCrCredit DrCr = "Credit"

	// StatusDR, StatusCR and StatusNill classify a customer balance.
	// DR means the customer owes us, CR means we owe the customer.
	StatusDR   DrCr = "DR"
	StatusCR   DrCr = "CR"
	StatusNill DrCr = "Nill"
)

// Customer is the long-lived owner of a running balance.
type Customer struct {
	ID              string  `json:"id"`
	Name            string  `json:"name" validate:"required,min=2"`
	Balance         float64 `json:"balance"`
	DrCr            DrCr    `json:"drCr"`
	LastTransaction string  `json:"lastTransaction"` // business date, YYYY-MM-DD
}

// Stats is the aggregate position over every customer, computed on demand.
type Stats struct {
	TotalCustomers int     `json:"totalCustomers"`
	TotalDR        float64 `json:"totalDR"`
	TotalCR        float64 `json:"totalCR"`
	NetPosition    float64 `json:"netPosition"`
}

// BalanceSheet is the aggregate view served to the dashboard and by the
// remote ledger's getBalanceSheet action.
type BalanceSheet struct {
	Stats
	Customers []Customer `json:"customers"`
}
