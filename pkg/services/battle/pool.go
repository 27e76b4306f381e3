package battle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/entities"
	battleRepo "github.com/fadedpez/trackbattle/pkg/repositories/battle"
	"github.com/fadedpez/trackbattle/pkg/services/notify"
)

// Admit charges the pool's tier and enters the submission into the pool's
// pending battle, creating the battle if the pool has none
func (s *Service) Admit(ctx context.Context, req AdmitRequest) (*entities.Entrant, error) {
	entrant, err := s.admit(ctx, req)
	if err != nil {
		s.metrics.RecordEntryRejected(string(types.CodeOf(err)))
		return nil, err
	}
	return entrant, nil
}

func (s *Service) admit(ctx context.Context, req AdmitRequest) (*entities.Entrant, error) {
	if req.UserID == "" {
		return nil, types.NewBattleError(types.ErrInvalidArgument, "user id is required")
	}
	req.SubmissionRef = strings.TrimSpace(req.SubmissionRef)
	if req.SubmissionRef == "" {
		return nil, types.NewBattleError(types.ErrInvalidArgument, "A track link is required.")
	}
	category, err := s.validatePool(req.Category, req.Tier)
	if err != nil {
		return nil, err
	}

	// One admit per user at a time so the cooldown check can't be raced
	unlock := s.users.Lock(req.UserID)
	defer unlock()

	now := s.now()
	if s.rules.EntryCooldown > 0 {
		last, err := s.repo.LastEntryAt(ctx, req.UserID, category, req.Tier)
		if err != nil {
			return nil, s.mapRepoErr(err, "")
		}
		if last != nil && now.Sub(*last) < s.rules.EntryCooldown {
			wait := last.Add(s.rules.EntryCooldown).Sub(now).Round(time.Minute)
			return nil, types.NewBattleError(types.ErrRateLimited, fmt.Sprintf("Try again in %s.", wait))
		}
	}

	battle, entrant, err := s.repo.AdmitEntrant(ctx, battleRepo.AdmitParams{
		Category:      category,
		Tier:          req.Tier,
		UserID:        req.UserID,
		Username:      req.Username,
		SubmissionRef: req.SubmissionRef,
		Now:           now,
	})
	if err != nil {
		return nil, s.mapRepoErr(err, "This pool is not accepting entries right now.")
	}

	s.metrics.RecordEntry(category, req.Tier)
	s.metrics.RecordLedger(string(entities.TransactionTypeEntryFee), "ok")
	s.logger.Info("User %s entered battle %d (%s) as entrant %d", req.UserID, battle.ID, battle.Pool(), entrant.ID)

	total := s.poolTotal(ctx, category, req.Tier)
	s.metrics.SetPoolTotal(category, req.Tier, total.TotalAmount)

	if err := s.notifier.AnnounceEntry(ctx, notify.EntryEvent{
		Battle:    battle,
		Entrant:   entrant,
		PoolTotal: total.TotalAmount,
	}); err != nil {
		s.logger.Warn("Failed to announce entrant %d: %v", entrant.ID, err)
	}

	return entrant, nil
}

// Close stops new entries into the pool's pending battle
func (s *Service) Close(ctx context.Context, category string, tier int64) (*entities.Battle, error) {
	name, err := s.validatePool(category, tier)
	if err != nil {
		return nil, err
	}

	open, err := s.repo.GetOpenBattle(ctx, name, tier)
	if err != nil {
		return nil, s.mapRepoErr(err, "")
	}

	unlock := s.battles.Lock(open.ID)
	defer unlock()

	battle, err := s.repo.CloseBattle(ctx, name, tier)
	if err != nil {
		return nil, s.mapRepoErr(err, "Only a pending battle can be closed.")
	}

	s.metrics.RecordTransition(string(entities.BattleStatusClosed))
	s.logger.Info("Closed battle %d (%s)", battle.ID, battle.Pool())
	return battle, nil
}

// Remove takes an entrant out of its battle, deleting the votes it received,
// and refunds the entry fee. It returns the refunded amount.
func (s *Service) Remove(ctx context.Context, entrantID int64) (int64, error) {
	entrant, err := s.repo.GetEntrant(ctx, entrantID)
	if err != nil {
		return 0, s.mapRepoErr(err, "")
	}

	unlock := s.battles.Lock(entrant.BattleID)
	defer unlock()

	removal, err := s.repo.RemoveEntrant(ctx, entrantID, s.now())
	if err != nil {
		return 0, s.mapRepoErr(err, "Entrants can't be removed from a completed battle.")
	}

	var refund int64
	if removal.Refund != nil {
		refund = removal.Refund.Amount
		s.metrics.RecordLedger(string(entities.TransactionTypeRefund), "ok")
	}
	s.metrics.RecordRemoval(removal.Battle.Category, removal.Battle.Tier)
	s.logger.Info("Removed entrant %d from battle %d, refunded %d, purged %d votes",
		entrantID, removal.Battle.ID, refund, removal.VotesPurged)

	total := s.poolTotal(ctx, removal.Battle.Category, removal.Battle.Tier)
	s.metrics.SetPoolTotal(removal.Battle.Category, removal.Battle.Tier, total.TotalAmount)

	if ref := removal.Entrant.MessageRef; ref != "" {
		if err := s.notifier.RemoveMessage(ctx, ref); err != nil {
			s.logger.Warn("Failed to remove message for entrant %d: %v", entrantID, err)
		}
	}

	return refund, nil
}

// PoolTotals returns the totals of a category's pools, or of every pool
func (s *Service) PoolTotals(ctx context.Context, category string) ([]*entities.PoolTotal, error) {
	if category != "" {
		name, err := s.NormalizeCategory(category)
		if err != nil {
			return nil, err
		}
		category = name
	}
	totals, err := s.repo.PoolTotals(ctx, category)
	if err != nil {
		return nil, s.mapRepoErr(err, "")
	}
	return totals, nil
}

// ListOpenBattles returns every battle that hasn't completed
func (s *Service) ListOpenBattles(ctx context.Context) ([]*entities.Battle, error) {
	battles, err := s.repo.ListBattles(ctx,
		entities.BattleStatusPending, entities.BattleStatusClosed, entities.BattleStatusVoting)
	if err != nil {
		return nil, s.mapRepoErr(err, "")
	}
	return battles, nil
}

func (s *Service) poolTotal(ctx context.Context, category string, tier int64) *entities.PoolTotal {
	empty := &entities.PoolTotal{Category: category, Tier: tier}
	totals, err := s.repo.PoolTotals(ctx, category)
	if err != nil {
		s.logger.Warn("Failed to read pool total for %s $%d: %v", category, tier, err)
		return empty
	}
	for _, t := range totals {
		if t.Tier == tier {
			return t
		}
	}
	return empty
}
