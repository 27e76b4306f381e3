package battle

import (
	"context"
	"errors"
	"time"

	"github.com/fadedpez/trackbattle/pkg/entities"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateOpenBattle = errors.New("more than one open battle for pool")
	ErrPhaseConflict       = errors.New("battle is not in the required phase")
	ErrNotEnoughEntrants   = errors.New("not enough eligible entrants")
	ErrAlreadyVoted        = errors.New("voter already has a vote in this battle")
)

// AdmitParams describes a paid entry into a pool
type AdmitParams struct {
	Category      string
	Tier          int64
	UserID        string
	Username      string
	SubmissionRef string
	Now           time.Time
}

// Removal is what RemoveEntrant took out of the battle
type Removal struct {
	Entrant     *entities.Entrant
	Battle      *entities.Battle
	Refund      *entities.Transaction
	VotesPurged int64
}

// Repository stores battles, entrants, votes, pool totals and results.
// Every method that changes more than one row does so in a single
// transaction.
type Repository interface {
	// AdmitEntrant debits the tier, finds or creates the pending battle,
	// inserts the paid entrant and bumps the pool total
	AdmitEntrant(ctx context.Context, params AdmitParams) (*entities.Battle, *entities.Entrant, error)

	// LastEntryAt returns when the user last entered an unfinished battle of
	// the pool, or nil
	LastEntryAt(ctx context.Context, userID, category string, tier int64) (*time.Time, error)

	GetBattle(ctx context.Context, battleID int64) (*entities.Battle, error)
	GetOpenBattle(ctx context.Context, category string, tier int64) (*entities.Battle, error)
	ListBattles(ctx context.Context, statuses ...entities.BattleStatus) ([]*entities.Battle, error)
	SetChannelRef(ctx context.Context, battleID int64, ref string) error

	// CloseBattle moves the pool's pending battle to closed
	CloseBattle(ctx context.Context, category string, tier int64) (*entities.Battle, error)

	// RemoveEntrant deletes the entrant and its received votes, decrements
	// the pool total and refunds the tier
	RemoveEntrant(ctx context.Context, entrantID int64, now time.Time) (*Removal, error)

	PoolTotals(ctx context.Context, category string) ([]*entities.PoolTotal, error)

	GetEntrant(ctx context.Context, entrantID int64) (*entities.Entrant, error)
	GetEntrantByMessage(ctx context.Context, messageRef string) (*entities.Entrant, error)
	GetEntrantByNumber(ctx context.Context, battleID int64, number int) (*entities.Entrant, error)
	ListEntrants(ctx context.Context, battleID int64) ([]*entities.Entrant, error)
	SetEntrantMessageRef(ctx context.Context, entrantID int64, ref string) error
	SetDisqualified(ctx context.Context, entrantID int64) (*entities.Entrant, error)

	// StartVoting moves a pending or closed battle to voting and numbers
	// its eligible entrants 1..N in submission order
	StartVoting(ctx context.Context, battleID int64, endsAt time.Time, minEntrants int) (*entities.Battle, []*entities.Entrant, error)

	// CompleteBattle moves a voting battle to completed, stores the result
	// and takes the battle's paid entries out of the pool total
	CompleteBattle(ctx context.Context, result *entities.BattleResult) error
	GetResult(ctx context.Context, battleID int64) (*entities.BattleResult, error)
	ListResults(ctx context.Context, limit int) ([]*entities.BattleResult, error)

	CastVote(ctx context.Context, vote *entities.Vote) error
	GetVote(ctx context.Context, battleID int64, voterID string) (*entities.Vote, error)
	DeleteVote(ctx context.Context, battleID int64, voterID string) (bool, error)
	CountVotes(ctx context.Context, battleID int64) (map[int64]int64, error)
}
