package models

import (
	"time"
)

// Transaction is a single immutable ledger entry against a customer.
// Corrections are new transactions; entries are never edited in place.
type Transaction struct {
	ID           string    `json:"id" validate:"required"`
	CustomerID   string    `json:"customerId" validate:"required"`
	CustomerName string    `json:"customerName"` // name snapshot at creation, never re-derived
	Date         string    `json:"date"`         // business date, may differ from Timestamp
	Description  string    `json:"description" validate:"required"`
	Item         string    `json:"item,omitempty"`
	Weight       string    `json:"weight,omitempty"`
	Rate         string    `json:"rate,omitempty"`
	Amount       float64   `json:"amount" validate:"required,gt=0"`
	DrCr         DrCr      `json:"drCr" validate:"required,oneof=Debit Credit"`
	Timestamp    time.Time `json:"timestamp"`
	Synced       bool      `json:"synced"`
}

// Notification is a user-facing occasion the UI renders and auto-dismisses.
type Notification struct {
	Message   string    `json:"message"`
	Severity  string    `json:"severity"` // success | warning | error
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SyncStatus is the queue state exposed to the UI badge.
type SyncStatus struct {
	Online      bool       `json:"online"`
	QueueLength int        `json:"queueLength"`
	LastSync    *time.Time `json:"lastSync,omitempty"`
}
