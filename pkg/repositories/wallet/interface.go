package wallet

import (
	"context"
	"errors"

	"github.com/fadedpez/trackbattle/pkg/entities"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPurchaseNotFound  = errors.New("purchase not found")
	ErrAlreadyCredited   = errors.New("purchase already credited")
)

// Entry describes one balance change to apply and log
type Entry struct {
	UserID      string
	Username    string
	Amount      int64 // Always positive; direction comes from Debit or Credit
	Type        entities.TransactionType
	ReferenceID string
	Description string
}

// Repository defines the interface for ledger data operations
type Repository interface {
	// EnsureUser creates the user with a zero balance if unseen
	EnsureUser(ctx context.Context, userID, username string) (*entities.User, error)

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, userID string) (*entities.User, error)

	// Debit atomically subtracts entry.Amount, failing with ErrInsufficientFunds
	Debit(ctx context.Context, entry Entry) (*entities.Transaction, error)

	// Credit atomically adds entry.Amount
	Credit(ctx context.Context, entry Entry) (*entities.Transaction, error)

	// GetTransactions retrieves recent transactions for a user
	GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)

	// CreatePurchase records a pending checkout
	CreatePurchase(ctx context.Context, purchase *entities.Purchase) error

	// GetPurchase retrieves a checkout by its provider reference
	GetPurchase(ctx context.Context, checkoutRef string) (*entities.Purchase, error)

	// CreditPurchase marks a pending purchase credited and credits its coins, once
	CreditPurchase(ctx context.Context, checkoutRef string) (*entities.Transaction, error)
}
