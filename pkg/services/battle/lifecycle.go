package battle

import (
	"context"
	"errors"

	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/entities"
	battleRepo "github.com/fadedpez/trackbattle/pkg/repositories/battle"
	"github.com/fadedpez/trackbattle/pkg/services/notify"
	"github.com/fadedpez/trackbattle/pkg/services/payout"
	"github.com/fadedpez/trackbattle/pkg/services/voting"
)

// ResolveBattle finds the battle a selector names
func (s *Service) ResolveBattle(ctx context.Context, sel Selector) (*entities.Battle, error) {
	if sel.BattleID > 0 {
		b, err := s.repo.GetBattle(ctx, sel.BattleID)
		if err != nil {
			return nil, s.mapRepoErr(err, "")
		}
		return b, nil
	}

	category, err := s.validatePool(sel.Category, sel.Tier)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.GetOpenBattle(ctx, category, sel.Tier)
	if err != nil {
		return nil, s.mapRepoErr(err, "")
	}
	return b, nil
}

// StartVoting moves a pending or closed battle into voting and numbers its
// eligible entrants
func (s *Service) StartVoting(ctx context.Context, sel Selector) (*entities.Battle, []*entities.Entrant, error) {
	target, err := s.ResolveBattle(ctx, sel)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.battles.Lock(target.ID)
	defer unlock()

	return s.startVoting(ctx, target.ID)
}

// startVoting expects the battle lock to be held
func (s *Service) startVoting(ctx context.Context, battleID int64) (*entities.Battle, []*entities.Entrant, error) {
	endsAt := s.now().Add(s.rules.VotingDuration)
	battle, entrants, err := s.repo.StartVoting(ctx, battleID, endsAt, MinEntrants)
	if err != nil {
		return nil, nil, s.mapRepoErr(err, "Voting can only start on a pending or closed battle.")
	}

	s.metrics.RecordTransition(string(entities.BattleStatusVoting))
	s.logger.Info("Voting started for battle %d (%s) with %d entrants, ends %s",
		battle.ID, battle.Pool(), len(entrants), endsAt.Format("2006-01-02 15:04 MST"))

	s.announceVoting(ctx, battle, entrants)
	return battle, entrants, nil
}

// announceVoting posts the voting messages and stores their refs. Entrants
// that already have a ref are skipped by the notifier, so calling it again
// only fills the gaps.
func (s *Service) announceVoting(ctx context.Context, battle *entities.Battle, entrants []*entities.Entrant) int {
	posted := make(map[int64]bool, len(entrants))
	for _, e := range entrants {
		posted[e.ID] = e.MessageRef != ""
	}

	refs, err := s.notifier.AnnounceVotingStarted(ctx, notify.VotingStartedEvent{Battle: battle, Entrants: entrants})
	if err != nil {
		s.logger.Warn("Failed to announce voting for battle %d: %v", battle.ID, err)
	}
	stored := 0
	for _, e := range entrants {
		ref, ok := refs[e.ID]
		if !ok || ref == "" || posted[e.ID] {
			continue
		}
		if err := s.repo.SetEntrantMessageRef(ctx, e.ID, ref); err != nil {
			s.logger.Warn("Failed to store message for entrant %d: %v", e.ID, err)
			continue
		}
		e.MessageRef = ref
		stored++
	}
	return stored
}

// repostMissing re-announces a voting battle whose entrants are missing
// their voting message. It expects the battle lock to be held.
func (s *Service) repostMissing(ctx context.Context, battleID int64) error {
	battle, err := s.repo.GetBattle(ctx, battleID)
	if err != nil {
		return s.mapRepoErr(err, "")
	}
	if battle.Status != entities.BattleStatusVoting {
		return nil
	}
	all, err := s.repo.ListEntrants(ctx, battleID)
	if err != nil {
		return s.mapRepoErr(err, "")
	}

	entrants := make([]*entities.Entrant, 0, len(all))
	missing := 0
	for _, e := range all {
		if !e.Eligible() || e.DisplayNumber == 0 {
			continue
		}
		if e.MessageRef == "" {
			missing++
		}
		entrants = append(entrants, e)
	}
	if missing == 0 {
		return nil
	}

	stored := s.announceVoting(ctx, battle, entrants)
	s.logger.Info("Reposted voting messages for battle %d: %d of %d missing stored", battleID, stored, missing)
	return nil
}

// PromoteEligible starts voting on every pending or closed battle with enough
// eligible entrants. Battles that fail are logged and skipped.
func (s *Service) PromoteEligible(ctx context.Context) (int, error) {
	battles, err := s.repo.ListBattles(ctx, entities.BattleStatusPending, entities.BattleStatusClosed)
	if err != nil {
		return 0, s.mapRepoErr(err, "")
	}

	promoted := 0
	for _, b := range battles {
		if ctx.Err() != nil {
			return promoted, ctx.Err()
		}

		unlock := s.battles.Lock(b.ID)
		_, _, err := s.startVoting(ctx, b.ID)
		unlock()

		switch {
		case err == nil:
			promoted++
		case errors.Is(err, battleRepo.ErrNotEnoughEntrants), errors.Is(err, battleRepo.ErrPhaseConflict):
			s.logger.Debug("Battle %d not promoted: %v", b.ID, err)
		default:
			s.logger.Warn("Failed to promote battle %d: %v", b.ID, err)
		}
	}
	return promoted, nil
}

// Disqualify excludes an entrant from tally and winner selection. The entry
// fee is kept and received votes stay stored.
func (s *Service) Disqualify(ctx context.Context, entrantID int64) (*entities.Entrant, error) {
	entrant, err := s.repo.GetEntrant(ctx, entrantID)
	if err != nil {
		return nil, s.mapRepoErr(err, "")
	}

	unlock := s.battles.Lock(entrant.BattleID)
	defer unlock()

	entrant, err = s.repo.SetDisqualified(ctx, entrantID)
	if err != nil {
		return nil, s.mapRepoErr(err, "Entrants of a completed battle can't be disqualified.")
	}

	s.logger.Info("Disqualified entrant %d in battle %d", entrantID, entrant.BattleID)
	return entrant, nil
}

// EndVoting completes a voting battle and records its result. Ending an
// already completed battle returns the stored result.
func (s *Service) EndVoting(ctx context.Context, sel Selector) (*entities.BattleResult, error) {
	target, err := s.ResolveBattle(ctx, sel)
	if err != nil {
		return nil, err
	}

	unlock := s.battles.Lock(target.ID)
	defer unlock()

	return s.endVoting(ctx, target.ID)
}

// endVoting expects the battle lock to be held
func (s *Service) endVoting(ctx context.Context, battleID int64) (*entities.BattleResult, error) {
	battle, err := s.repo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, s.mapRepoErr(err, "")
	}

	entrants, err := s.repo.ListEntrants(ctx, battleID)
	if err != nil {
		return nil, s.mapRepoErr(err, "")
	}
	counts, err := s.repo.CountVotes(ctx, battleID)
	if err != nil {
		return nil, s.mapRepoErr(err, "")
	}
	standings := voting.Standings(entrants, counts)

	switch battle.Status {
	case entities.BattleStatusCompleted:
		return s.storedResult(ctx, battleID, standings)
	case entities.BattleStatusVoting:
	default:
		return nil, types.NewBattleError(types.ErrInvalidPhase, "This battle is not in voting.")
	}

	var paid int64
	for _, e := range entrants {
		if e.PaymentStatus == entities.PaymentStatusPaid {
			paid++
		}
	}

	winner, hasWinner := payout.SelectWinner(standings)
	split := payout.Compute(payout.Input{
		PaidEntrants: paid,
		Tier:         battle.Tier,
		WinnerShare:  s.rules.WinnerShare,
		HasWinner:    hasWinner,
	})

	result := &entities.BattleResult{
		BattleID:     battle.ID,
		Category:     battle.Category,
		Tier:         battle.Tier,
		HasWinner:    split.HasWinner,
		PaidEntrants: paid,
		TotalPool:    split.TotalPool,
		WinnerPayout: split.WinnerPayout,
		PlatformFee:  split.PlatformFee,
		Standings:    standings,
		CompletedAt:  s.now(),
	}
	if hasWinner {
		result.WinnerEntrantID = winner.Entrant.ID
		result.WinnerUserID = winner.Entrant.UserID
		result.WinnerVotes = winner.Votes
	}

	if err := s.repo.CompleteBattle(ctx, result); err != nil {
		if errors.Is(err, battleRepo.ErrPhaseConflict) {
			// Lost a race with another process; the stored result wins
			return s.storedResult(ctx, battleID, standings)
		}
		return nil, s.mapRepoErr(err, "")
	}

	completedAt := result.CompletedAt
	battle.Status = entities.BattleStatusCompleted
	battle.CompletedAt = &completedAt

	s.metrics.RecordTransition(string(entities.BattleStatusCompleted))
	s.metrics.RecordCompletion(result.HasWinner, result.WinnerPayout, result.PlatformFee)
	s.metrics.SetPoolTotal(battle.Category, battle.Tier, s.poolTotal(ctx, battle.Category, battle.Tier).TotalAmount)

	if hasWinner {
		s.logger.Info("Battle %d (%s) won by entrant %d with %d votes; pool %s, payout %s, fee %s",
			battle.ID, battle.Pool(), result.WinnerEntrantID, result.WinnerVotes,
			result.TotalPool, result.WinnerPayout, result.PlatformFee)
	} else {
		s.logger.Info("Battle %d (%s) ended without votes", battle.ID, battle.Pool())
	}

	event := notify.ResultEvent{Battle: battle, Result: result}
	if hasWinner {
		event.Winner = winner.Entrant
	}
	if err := s.notifier.AnnounceResult(ctx, event); err != nil {
		s.logger.Warn("Failed to announce result of battle %d: %v", battle.ID, err)
	}
	if s.archiver != nil {
		if err := s.archiver.ArchiveResult(ctx, battle, result); err != nil {
			s.metrics.RecordAdapterFailure("archive", "archive_result")
			s.logger.Warn("Failed to archive result of battle %d: %v", battle.ID, err)
		}
	}

	return result, nil
}

func (s *Service) storedResult(ctx context.Context, battleID int64, standings []entities.Standing) (*entities.BattleResult, error) {
	result, err := s.repo.GetResult(ctx, battleID)
	if err != nil {
		return nil, s.mapRepoErr(err, "")
	}
	result.Standings = standings
	return result, nil
}

// Payouts returns the most recent results first, with what each winner is owed
func (s *Service) Payouts(ctx context.Context, limit int) ([]*entities.BattleResult, error) {
	if limit <= 0 {
		limit = PayoutLimit
	}
	results, err := s.repo.ListResults(ctx, limit)
	if err != nil {
		return nil, s.mapRepoErr(err, "")
	}
	return results, nil
}

// EndExpired completes every voting battle whose deadline has passed. Battles
// still running get their missing voting messages reposted.
func (s *Service) EndExpired(ctx context.Context) (int, error) {
	battles, err := s.repo.ListBattles(ctx, entities.BattleStatusVoting)
	if err != nil {
		return 0, s.mapRepoErr(err, "")
	}

	now := s.now()
	ended := 0
	for _, b := range battles {
		if ctx.Err() != nil {
			return ended, ctx.Err()
		}
		if !b.VotingExpired(now) {
			unlock := s.battles.Lock(b.ID)
			err := s.repostMissing(ctx, b.ID)
			unlock()
			if err != nil {
				s.logger.Warn("Failed to repost voting for battle %d: %v", b.ID, err)
			}
			continue
		}

		unlock := s.battles.Lock(b.ID)
		_, err := s.endVoting(ctx, b.ID)
		unlock()

		if err != nil {
			s.logger.Warn("Failed to end battle %d: %v", b.ID, err)
			continue
		}
		ended++
	}
	return ended, nil
}

// BroadcastStandings publishes every open pool's total and current leaders
func (s *Service) BroadcastStandings(ctx context.Context) error {
	battles, err := s.ListOpenBattles(ctx)
	if err != nil {
		return err
	}
	if len(battles) == 0 {
		return nil
	}

	standings := make([]notify.PoolStanding, 0, len(battles))
	for _, b := range battles {
		total := s.poolTotal(ctx, b.Category, b.Tier)
		s.metrics.SetPoolTotal(b.Category, b.Tier, total.TotalAmount)

		line := notify.PoolStanding{
			Pool:     *total,
			BattleID: b.ID,
			Status:   b.Status,
			WinnerPrize: payout.Compute(payout.Input{
				PaidEntrants: total.EntrantCount,
				Tier:         b.Tier,
				WinnerShare:  s.rules.WinnerShare,
				HasWinner:    true,
			}).WinnerPayout,
		}

		if b.Status == entities.BattleStatusVoting {
			entrants, err := s.repo.ListEntrants(ctx, b.ID)
			if err != nil {
				return s.mapRepoErr(err, "")
			}
			counts, err := s.repo.CountVotes(ctx, b.ID)
			if err != nil {
				return s.mapRepoErr(err, "")
			}
			leaders := voting.Standings(entrants, counts)
			if len(leaders) > LeaderCount {
				leaders = leaders[:LeaderCount]
			}
			line.Leaders = leaders
		}
		standings = append(standings, line)
	}

	return s.notifier.AnnouncePoolStandings(ctx, standings)
}
