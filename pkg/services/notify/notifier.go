package notify

import (
	"context"

	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_notify

// EntryEvent is emitted after a paid entrant joins a battle
type EntryEvent struct {
	Battle    *entities.Battle
	Entrant   *entities.Entrant
	PoolTotal int64
}

// VotingStartedEvent carries the numbered, eligible entrants
type VotingStartedEvent struct {
	Battle   *entities.Battle
	Entrants []*entities.Entrant
}

// ResultEvent is emitted after a battle completes
type ResultEvent struct {
	Battle *entities.Battle
	Result *entities.BattleResult
	Winner *entities.Entrant // nil without a winner
}

// PoolStanding is one pool's live stats line
type PoolStanding struct {
	Pool        entities.PoolTotal
	BattleID    int64
	Status      entities.BattleStatus
	WinnerPrize decimal.Decimal
	Leaders     []entities.Standing
}

// Notifier publishes battle events to the chat platform
type Notifier interface {
	AnnounceEntry(ctx context.Context, event EntryEvent) error
	// AnnounceVotingStarted returns a message ref per entrant id
	AnnounceVotingStarted(ctx context.Context, event VotingStartedEvent) (map[int64]string, error)
	AnnounceResult(ctx context.Context, event ResultEvent) error
	AnnouncePoolStandings(ctx context.Context, standings []PoolStanding) error
	RemoveMessage(ctx context.Context, ref string) error
}

// Nop discards every event
type Nop struct{}

var _ Notifier = Nop{}

func (Nop) AnnounceEntry(context.Context, EntryEvent) error { return nil }
func (Nop) AnnounceVotingStarted(context.Context, VotingStartedEvent) (map[int64]string, error) {
	return nil, nil
}
func (Nop) AnnounceResult(context.Context, ResultEvent) error           { return nil }
func (Nop) AnnouncePoolStandings(context.Context, []PoolStanding) error { return nil }
func (Nop) RemoveMessage(context.Context, string) error                 { return nil }
