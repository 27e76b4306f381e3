package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Standing is one row of a battle's tally
type Standing struct {
	Entrant *Entrant
	Votes   int64
}

// BattleResult is the recorded outcome of a completed battle
type BattleResult struct {
	BattleID        int64
	Category        string
	Tier            int64
	HasWinner       bool
	WinnerEntrantID int64
	WinnerUserID    string
	WinnerVotes     int64
	PaidEntrants    int64
	TotalPool       decimal.Decimal
	WinnerPayout    decimal.Decimal
	PlatformFee     decimal.Decimal
	Standings       []Standing
	CompletedAt     time.Time
}
