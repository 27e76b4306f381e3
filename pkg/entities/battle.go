package entities

import (
	"fmt"
	"time"
)

// BattleStatus is a battle's lifecycle state
type BattleStatus string

const (
	BattleStatusPending   BattleStatus = "pending"
	BattleStatusClosed    BattleStatus = "closed"
	BattleStatusVoting    BattleStatus = "voting"
	BattleStatusCompleted BattleStatus = "completed"
)

// IsOpen reports whether the battle still occupies its pool
func (s BattleStatus) IsOpen() bool {
	return s != BattleStatusCompleted
}

// AcceptsEntries reports whether new entrants may join
func (s BattleStatus) AcceptsEntries() bool {
	return s == BattleStatusPending
}

// CanStartVoting reports whether the battle may move to voting
func (s BattleStatus) CanStartVoting() bool {
	return s == BattleStatusPending || s == BattleStatusClosed
}

// PoolKey identifies a pool: a category plus a fixed entry price
type PoolKey struct {
	Category string
	Tier     int64
}

func (k PoolKey) String() string {
	return fmt.Sprintf("%s $%d", k.Category, k.Tier)
}

// Battle is one run of the contest for a pool
type Battle struct {
	ID           int64
	Category     string
	Tier         int64
	Status       BattleStatus
	CreatedAt    time.Time
	VotingEndsAt *time.Time // Set only once status is voting
	CompletedAt  *time.Time
	ChannelRef   string // Owned by the notification adapter
}

// Pool returns the battle's pool key
func (b *Battle) Pool() PoolKey {
	return PoolKey{Category: b.Category, Tier: b.Tier}
}

// VotingExpired reports whether the voting deadline has passed at now
func (b *Battle) VotingExpired(now time.Time) bool {
	return b.Status == BattleStatusVoting && b.VotingEndsAt != nil && !now.Before(*b.VotingEndsAt)
}

// PaymentStatus of an entrant's entry fee
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Entrant is a paid submission within a battle
type Entrant struct {
	ID            int64
	BattleID      int64
	UserID        string
	Username      string
	SubmissionRef string // Track URI
	PaymentStatus PaymentStatus
	Disqualified  bool
	DisplayNumber int    // 1..N once voting starts, 0 before
	MessageRef    string // Owned by the notification adapter
	CreatedAt     time.Time
}

// Eligible reports whether the entrant can receive votes and win
func (e *Entrant) Eligible() bool {
	return e.PaymentStatus == PaymentStatusPaid && !e.Disqualified
}

// Vote is a voter's standing choice within a battle
type Vote struct {
	ID        int64
	BattleID  int64
	VoterID   string
	EntrantID int64
	CreatedAt time.Time
}

// PoolTotal aggregates the open battle's paid entries for a pool
type PoolTotal struct {
	Category     string
	Tier         int64
	TotalAmount  int64
	EntrantCount int64
}
