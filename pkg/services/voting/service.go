package voting

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/fadedpez/trackbattle/pkg/lock"
	"github.com/fadedpez/trackbattle/pkg/metrics"
	battleRepo "github.com/fadedpez/trackbattle/pkg/repositories/battle"
)

// EntrantSelector picks an entrant by display number or by id. Number wins
// when both are set.
type EntrantSelector struct {
	Number    int
	EntrantID int64
}

// Options configures the voting engine
type Options struct {
	// Locks is shared with the battle lifecycle so votes never race a transition
	Locks   *lock.Keyed[int64]
	Now     func() time.Time
	Metrics *metrics.Metrics
	Logger  *logging.Logger
}

// Service records votes and tallies battles
type Service struct {
	repo    battleRepo.Repository
	locks   *lock.Keyed[int64]
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *logging.Logger
}

var _ VotingService = (*Service)(nil)

// NewService creates a new voting engine
func NewService(repo battleRepo.Repository, opts Options) *Service {
	if opts.Locks == nil {
		opts.Locks = lock.NewKeyed[int64]()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default
	}
	return &Service{
		repo:    repo,
		locks:   opts.Locks,
		now:     opts.Now,
		metrics: opts.Metrics,
		logger:  opts.Logger.With("VOTING"),
	}
}

// CastVote records voterID's vote for the selected entrant
func (s *Service) CastVote(ctx context.Context, battleID int64, voterID string, sel EntrantSelector) (*entities.Vote, error) {
	if voterID == "" {
		return nil, types.NewBattleError(types.ErrInvalidArgument, "voter id is required")
	}

	unlock := s.locks.Lock(battleID)
	defer unlock()

	if _, err := s.votingBattle(ctx, battleID); err != nil {
		return nil, s.reject(err)
	}

	var entrant *entities.Entrant
	var err error
	switch {
	case sel.Number > 0:
		entrant, err = s.repo.GetEntrantByNumber(ctx, battleID, sel.Number)
	case sel.EntrantID > 0:
		entrant, err = s.repo.GetEntrant(ctx, sel.EntrantID)
		if err == nil && entrant.BattleID != battleID {
			err = battleRepo.ErrNotFound
		}
	default:
		return nil, s.reject(types.NewBattleError(types.ErrInvalidArgument, "pick an entrant number"))
	}
	if err != nil {
		return nil, s.reject(mapEntrantErr(err))
	}

	return s.cast(ctx, entrant, voterID)
}

// CastVoteByMessage records a vote for the entrant posted as messageRef
func (s *Service) CastVoteByMessage(ctx context.Context, messageRef, voterID string) (*entities.Vote, error) {
	if voterID == "" || messageRef == "" {
		return nil, types.NewBattleError(types.ErrInvalidArgument, "voter and message are required")
	}

	entrant, err := s.repo.GetEntrantByMessage(ctx, messageRef)
	if err != nil {
		return nil, s.reject(mapEntrantErr(err))
	}

	unlock := s.locks.Lock(entrant.BattleID)
	defer unlock()

	if _, err := s.votingBattle(ctx, entrant.BattleID); err != nil {
		return nil, s.reject(err)
	}

	// Re-read under the lock; a disqualification may have landed
	if entrant, err = s.repo.GetEntrant(ctx, entrant.ID); err != nil {
		return nil, s.reject(mapEntrantErr(err))
	}

	return s.cast(ctx, entrant, voterID)
}

func (s *Service) cast(ctx context.Context, entrant *entities.Entrant, voterID string) (*entities.Vote, error) {
	if entrant.Disqualified {
		return nil, s.reject(types.NewBattleError(types.ErrInvalidPhase, "entrant is disqualified"))
	}
	if !entrant.Eligible() || entrant.DisplayNumber == 0 {
		return nil, s.reject(types.NewBattleError(types.ErrNotFound, "no such entrant in this battle"))
	}

	vote := &entities.Vote{
		BattleID:  entrant.BattleID,
		VoterID:   voterID,
		EntrantID: entrant.ID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CastVote(ctx, vote); err != nil {
		if errors.Is(err, battleRepo.ErrAlreadyVoted) {
			s.metrics.RecordVote("duplicate")
			return nil, types.WrapError(types.ErrAlreadyVoted, "", err)
		}
		return nil, s.reject(types.WrapError(types.ErrInternalError, "failed to cast vote", err))
	}

	s.metrics.RecordVote("cast")
	s.logger.Debug("Vote in battle %d by %s for entrant #%d", vote.BattleID, voterID, entrant.DisplayNumber)
	return vote, nil
}

// WithdrawVote removes voterID's vote. It reports whether a vote existed.
func (s *Service) WithdrawVote(ctx context.Context, battleID int64, voterID string) (bool, error) {
	unlock := s.locks.Lock(battleID)
	defer unlock()

	if _, err := s.votingBattle(ctx, battleID); err != nil {
		return false, err
	}
	return s.withdraw(ctx, battleID, voterID)
}

// WithdrawVoteByMessage removes voterID's vote only if it points at the
// entrant posted as messageRef
func (s *Service) WithdrawVoteByMessage(ctx context.Context, messageRef, voterID string) (bool, error) {
	entrant, err := s.repo.GetEntrantByMessage(ctx, messageRef)
	if err != nil {
		return false, mapEntrantErr(err)
	}

	unlock := s.locks.Lock(entrant.BattleID)
	defer unlock()

	if _, err := s.votingBattle(ctx, entrant.BattleID); err != nil {
		return false, err
	}

	vote, err := s.repo.GetVote(ctx, entrant.BattleID, voterID)
	if errors.Is(err, battleRepo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, types.WrapError(types.ErrInternalError, "failed to load vote", err)
	}
	if vote.EntrantID != entrant.ID {
		return false, nil
	}
	return s.withdraw(ctx, entrant.BattleID, voterID)
}

func (s *Service) withdraw(ctx context.Context, battleID int64, voterID string) (bool, error) {
	removed, err := s.repo.DeleteVote(ctx, battleID, voterID)
	if err != nil {
		return false, types.WrapError(types.ErrInternalError, "failed to withdraw vote", err)
	}
	if removed {
		s.metrics.RecordVote("withdrawn")
	}
	return removed, nil
}

// Tally returns every eligible entrant with its vote count, highest first.
// Ties go to the lower display number, then the earlier submission.
func (s *Service) Tally(ctx context.Context, battleID int64) ([]entities.Standing, error) {
	if _, err := s.repo.GetBattle(ctx, battleID); err != nil {
		return nil, mapBattleErr(err)
	}

	entrants, err := s.repo.ListEntrants(ctx, battleID)
	if err != nil {
		return nil, types.WrapError(types.ErrInternalError, "failed to list entrants", err)
	}
	counts, err := s.repo.CountVotes(ctx, battleID)
	if err != nil {
		return nil, types.WrapError(types.ErrInternalError, "failed to count votes", err)
	}

	return Standings(entrants, counts), nil
}

// Leaders returns the top n standings
func (s *Service) Leaders(ctx context.Context, battleID int64, n int) ([]entities.Standing, error) {
	standings, err := s.Tally(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if n >= 0 && n < len(standings) {
		standings = standings[:n]
	}
	return standings, nil
}

// Standings orders eligible entrants by their counts
func Standings(entrants []*entities.Entrant, counts map[int64]int64) []entities.Standing {
	standings := make([]entities.Standing, 0, len(entrants))
	for _, e := range entrants {
		if !e.Eligible() {
			continue
		}
		standings = append(standings, entities.Standing{Entrant: e, Votes: counts[e.ID]})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}
		if a.Entrant.DisplayNumber != b.Entrant.DisplayNumber {
			return a.Entrant.DisplayNumber < b.Entrant.DisplayNumber
		}
		return a.Entrant.ID < b.Entrant.ID
	})
	return standings
}

func (s *Service) votingBattle(ctx context.Context, battleID int64) (*entities.Battle, error) {
	b, err := s.repo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, mapBattleErr(err)
	}
	if b.Status != entities.BattleStatusVoting {
		return nil, types.NewBattleError(types.ErrInvalidPhase, "voting is not open for this battle")
	}
	return b, nil
}

func (s *Service) reject(err error) error {
	s.metrics.RecordVote("rejected")
	return err
}

func mapBattleErr(err error) error {
	if errors.Is(err, battleRepo.ErrNotFound) {
		return types.WrapError(types.ErrNotFound, "no such battle", err)
	}
	return types.WrapError(types.ErrInternalError, "failed to load battle", err)
}

func mapEntrantErr(err error) error {
	var be *types.BattleError
	if types.As(err, &be) {
		return err
	}
	if errors.Is(err, battleRepo.ErrNotFound) {
		return types.WrapError(types.ErrNotFound, "no such entrant in this battle", err)
	}
	return types.WrapError(types.ErrInternalError, "failed to load entrant", err)
}
