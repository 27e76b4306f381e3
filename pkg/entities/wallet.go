package entities

import (
	"time"
)

// User represents a participant's coin account
type User struct {
	UserID      string    // Discord user ID
	Username    string    // Last known display name
	Balance     int64     // Current balance in coins, never negative
	CreatedAt   time.Time // When the user was first seen
	LastUpdated time.Time // When the balance was last changed
}

// TransactionType represents the type of ledger transaction
type TransactionType string

const (
	TransactionTypeEntryFee    TransactionType = "ENTRY_FEE"
	TransactionTypeRefund      TransactionType = "REFUND"
	TransactionTypePurchase    TransactionType = "PURCHASE"
	TransactionTypeAdminCredit TransactionType = "ADMIN_CREDIT"
)

// Transaction represents a single ledger transaction
type Transaction struct {
	ID           string          // Unique identifier
	UserID       string          // User associated with the transaction
	Amount       int64           // Amount (positive for credits, negative for debits)
	Type         TransactionType // Type of transaction
	ReferenceID  string          // Optional reference (e.g., entrant ID for entry fees)
	Description  string          // Human-readable description
	Timestamp    time.Time       // When the transaction occurred
	BalanceAfter int64           // Balance after this transaction
}

// PurchaseStatus tracks a coin checkout
type PurchaseStatus string

const (
	PurchaseStatusPending  PurchaseStatus = "pending"
	PurchaseStatusCredited PurchaseStatus = "credited"
)

// Purchase is a coin checkout created with a payment provider
type Purchase struct {
	CheckoutRef string
	UserID      string
	Coins       int64
	Provider    string
	Status      PurchaseStatus
	CreatedAt   time.Time
}
