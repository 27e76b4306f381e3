package wallet

import (
	"context"

	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/fadedpez/trackbattle/pkg/payments"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_wallet_service
type WalletService interface {
	EnsureUser(ctx context.Context, userID, username string) (*entities.User, error)
	GetBalance(ctx context.Context, userID string) (int64, error)
	Debit(ctx context.Context, userID string, amount int64, txType entities.TransactionType, reference, description string) (int64, error)
	Credit(ctx context.Context, userID string, amount int64, txType entities.TransactionType, reference, description string) (int64, error)
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)
	PurchaseCoins(ctx context.Context, userID, provider string, coins int64) (*entities.Purchase, *payments.Checkout, error)
	VerifyPurchase(ctx context.Context, userID, checkoutRef string) (*VerifyResult, error)
}

// VerifyResult reports what VerifyPurchase found and did
type VerifyResult struct {
	Purchase        *entities.Purchase
	Status          payments.Status
	Credited        bool // Coins were credited by this call
	AlreadyCredited bool
	Balance         int64
}
