package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/fadedpez/trackbattle/pkg/lock"
	"github.com/fadedpez/trackbattle/pkg/metrics"
	"github.com/fadedpez/trackbattle/pkg/payments"
	walletRepo "github.com/fadedpez/trackbattle/pkg/repositories/wallet"
	"github.com/fadedpez/trackbattle/pkg/retry"
)

// Purchases are capped so a typo can't create a huge checkout
const MaxPurchaseCoins = 1000

// Options configures the ledger service
type Options struct {
	Payments *payments.Registry
	Retry    retry.Policy
	Metrics  *metrics.Metrics
	Logger   *logging.Logger
}

// Service handles ledger business logic
type Service struct {
	repo     walletRepo.Repository
	payments *payments.Registry
	retry    retry.Policy
	metrics  *metrics.Metrics
	logger   *logging.Logger
	users    *lock.Keyed[string]
}

var _ WalletService = (*Service)(nil)

// NewService creates a new ledger service
func NewService(repo walletRepo.Repository, opts Options) *Service {
	if opts.Payments == nil {
		opts.Payments = payments.NewRegistry()
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultPolicy()
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = retry.Temporary
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default
	}
	return &Service{
		repo:     repo,
		payments: opts.Payments,
		retry:    opts.Retry,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("LEDGER"),
		users:    lock.NewKeyed[string](),
	}
}

// EnsureUser creates the user with a zero balance on first interaction
func (s *Service) EnsureUser(ctx context.Context, userID, username string) (*entities.User, error) {
	if userID == "" {
		return nil, types.NewBattleError(types.ErrInvalidArgument, "user id is required")
	}
	user, err := s.repo.EnsureUser(ctx, userID, username)
	if err != nil {
		return nil, types.WrapError(types.ErrInternalError, "failed to load user", err)
	}
	return user, nil
}

// GetBalance returns the current balance; unseen users have zero
func (s *Service) GetBalance(ctx context.Context, userID string) (int64, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, walletRepo.ErrUserNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, types.WrapError(types.ErrInternalError, "failed to read balance", err)
	}
	return user.Balance, nil
}

// Debit subtracts amount and returns the new balance
func (s *Service) Debit(ctx context.Context, userID string, amount int64, txType entities.TransactionType, reference, description string) (int64, error) {
	if amount <= 0 {
		return 0, types.NewBattleError(types.ErrInvalidArgument, "amount must be positive")
	}

	unlock := s.users.Lock(userID)
	defer unlock()

	s.logger.Debug("Debiting %d from user %s (%s)", amount, userID, txType)

	record, err := s.repo.Debit(ctx, walletRepo.Entry{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		ReferenceID: reference,
		Description: description,
	})
	if errors.Is(err, walletRepo.ErrInsufficientFunds) {
		s.metrics.RecordLedger(string(txType), "insufficient")
		balance, _ := s.GetBalance(ctx, userID)
		return balance, types.WrapError(types.ErrInsufficientFunds,
			fmt.Sprintf("Needed %d coins, balance is %d.", amount, balance), err)
	}
	if err != nil {
		s.metrics.RecordLedger(string(txType), "error")
		s.logger.Error("Error debiting user %s: %v", userID, err)
		return 0, types.WrapError(types.ErrInternalError, "failed to debit", err)
	}

	s.metrics.RecordLedger(string(txType), "ok")
	return record.BalanceAfter, nil
}

// Credit adds amount and returns the new balance
func (s *Service) Credit(ctx context.Context, userID string, amount int64, txType entities.TransactionType, reference, description string) (int64, error) {
	if amount < 0 {
		return 0, types.NewBattleError(types.ErrInvalidArgument, "amount cannot be negative")
	}
	if userID == "" {
		return 0, types.NewBattleError(types.ErrInvalidArgument, "user id is required")
	}

	unlock := s.users.Lock(userID)
	defer unlock()

	s.logger.Debug("Crediting %d to user %s (%s)", amount, userID, txType)

	record, err := s.repo.Credit(ctx, walletRepo.Entry{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		ReferenceID: reference,
		Description: description,
	})
	if err != nil {
		s.metrics.RecordLedger(string(txType), "error")
		s.logger.Error("Error crediting user %s: %v", userID, err)
		return 0, types.WrapError(types.ErrInternalError, "failed to credit", err)
	}

	s.metrics.RecordLedger(string(txType), "ok")
	return record.BalanceAfter, nil
}

// GetRecentTransactions retrieves recent transactions for a user
func (s *Service) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	txs, err := s.repo.GetTransactions(ctx, userID, limit)
	if err != nil {
		return nil, types.WrapError(types.ErrInternalError, "failed to read transactions", err)
	}
	return txs, nil
}
