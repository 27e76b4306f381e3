package battle

import (
	"context"

	"github.com/fadedpez/trackbattle/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_battle_service
type BattleService interface {
	// Pool registry
	Admit(ctx context.Context, req AdmitRequest) (*entities.Entrant, error)
	Close(ctx context.Context, category string, tier int64) (*entities.Battle, error)
	Remove(ctx context.Context, entrantID int64) (int64, error)
	PoolTotals(ctx context.Context, category string) ([]*entities.PoolTotal, error)
	ListOpenBattles(ctx context.Context) ([]*entities.Battle, error)

	// Lifecycle
	StartVoting(ctx context.Context, sel Selector) (*entities.Battle, []*entities.Entrant, error)
	PromoteEligible(ctx context.Context) (int, error)
	Disqualify(ctx context.Context, entrantID int64) (*entities.Entrant, error)
	EndVoting(ctx context.Context, sel Selector) (*entities.BattleResult, error)
	EndExpired(ctx context.Context) (int, error)
	BroadcastStandings(ctx context.Context) error
	ResolveBattle(ctx context.Context, sel Selector) (*entities.Battle, error)
	Payouts(ctx context.Context, limit int) ([]*entities.BattleResult, error)
}

// Archiver stores completed battles outside the primary database
type Archiver interface {
	ArchiveResult(ctx context.Context, battle *entities.Battle, result *entities.BattleResult) error
}

// AdmitRequest is a paid entry into a pool
type AdmitRequest struct {
	Category      string
	Tier          int64
	UserID        string
	Username      string
	SubmissionRef string
}

// Selector names a battle by id, or by the pool it is open in
type Selector struct {
	BattleID int64
	Category string
	Tier     int64
}
