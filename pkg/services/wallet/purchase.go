package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/fadedpez/trackbattle/pkg/payments"
	walletRepo "github.com/fadedpez/trackbattle/pkg/repositories/wallet"
)

// PurchaseCoins opens a checkout with the provider and records it as pending
func (s *Service) PurchaseCoins(ctx context.Context, userID, providerName string, coins int64) (*entities.Purchase, *payments.Checkout, error) {
	if coins <= 0 || coins > MaxPurchaseCoins {
		return nil, nil, types.NewBattleError(types.ErrInvalidArgument,
			fmt.Sprintf("Coins must be between 1 and %d.", MaxPurchaseCoins))
	}
	provider, err := s.payments.Get(providerName)
	if err != nil {
		return nil, nil, types.NewBattleError(types.ErrInvalidArgument,
			fmt.Sprintf("Unknown payment method %q.", providerName))
	}

	var checkout *payments.Checkout
	err = s.retry.Do(ctx, func(ctx context.Context) error {
		var cerr error
		checkout, cerr = provider.CreateCheckout(ctx, payments.PriceFor(coins), fmt.Sprintf("%d Battle Coins", coins))
		return cerr
	})
	if err != nil {
		s.metrics.RecordAdapterFailure(provider.Name(), "create_checkout")
		s.logger.Warn("Checkout with %s failed for user %s: %v", provider.Name(), userID, err)
		return nil, nil, types.WrapError(types.ErrAdapterFailure, "checkout failed", err)
	}

	purchase := &entities.Purchase{
		CheckoutRef: checkout.Ref,
		UserID:      userID,
		Coins:       coins,
		Provider:    provider.Name(),
		Status:      entities.PurchaseStatusPending,
	}
	if err := s.repo.CreatePurchase(ctx, purchase); err != nil {
		return nil, nil, types.WrapError(types.ErrInternalError, "failed to record purchase", err)
	}

	s.metrics.RecordPurchase(provider.Name(), "created")
	s.logger.Info("User %s opened %s checkout %s for %d coins", userID, provider.Name(), checkout.Ref, coins)
	return purchase, checkout, nil
}

// VerifyPurchase asks the provider about the checkout and credits the coins
// the first time it reports the payment completed
func (s *Service) VerifyPurchase(ctx context.Context, userID, checkoutRef string) (*VerifyResult, error) {
	purchase, err := s.repo.GetPurchase(ctx, checkoutRef)
	if errors.Is(err, walletRepo.ErrPurchaseNotFound) || (err == nil && purchase.UserID != userID) {
		return nil, types.NewBattleError(types.ErrNotFound, "No purchase with that reference.")
	}
	if err != nil {
		return nil, types.WrapError(types.ErrInternalError, "failed to load purchase", err)
	}

	result := &VerifyResult{Purchase: purchase}
	if purchase.Status == entities.PurchaseStatusCredited {
		result.AlreadyCredited = true
		result.Status = payments.StatusCompleted
		result.Balance, _ = s.GetBalance(ctx, userID)
		return result, nil
	}

	provider, err := s.payments.Get(purchase.Provider)
	if err != nil {
		return nil, types.WrapError(types.ErrAdapterFailure, "payment provider not configured", err)
	}

	status, err := s.providerCall(ctx, provider, "verify", checkoutRef, provider.Verify)
	if err != nil {
		return nil, err
	}
	if status == payments.StatusApproved {
		if status, err = s.providerCall(ctx, provider, "capture", checkoutRef, provider.Capture); err != nil {
			return nil, err
		}
	}
	result.Status = status

	if status != payments.StatusCompleted {
		result.Balance, _ = s.GetBalance(ctx, userID)
		return result, nil
	}

	unlock := s.users.Lock(userID)
	defer unlock()

	record, err := s.repo.CreditPurchase(ctx, checkoutRef)
	switch {
	case errors.Is(err, walletRepo.ErrAlreadyCredited):
		result.AlreadyCredited = true
		result.Balance, _ = s.GetBalance(ctx, userID)
		return result, nil
	case err != nil:
		return nil, types.WrapError(types.ErrInternalError, "failed to credit purchase", err)
	}

	s.metrics.RecordPurchase(provider.Name(), "credited")
	s.metrics.RecordLedger(string(entities.TransactionTypePurchase), "ok")
	s.logger.Info("Credited %d coins to user %s for checkout %s", purchase.Coins, userID, checkoutRef)

	result.Credited = true
	result.Purchase.Status = entities.PurchaseStatusCredited
	result.Balance = record.BalanceAfter
	return result, nil
}

func (s *Service) providerCall(ctx context.Context, provider payments.Provider, op, ref string,
	call func(context.Context, string) (payments.Status, error)) (payments.Status, error) {
	var status payments.Status
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		var cerr error
		status, cerr = call(ctx, ref)
		return cerr
	})
	if err != nil {
		s.metrics.RecordAdapterFailure(provider.Name(), op)
		s.logger.Warn("%s %s of %s failed: %v", provider.Name(), op, ref, err)
		return "", types.WrapError(types.ErrAdapterFailure, "payment provider unavailable", err)
	}
	return status, nil
}
