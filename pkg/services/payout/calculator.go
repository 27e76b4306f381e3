// Package payout splits a battle's pool between the winner and the platform.
package payout

import (
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/shopspring/decimal"
)

// DefaultWinnerShare is the winner's fraction of the pool
var DefaultWinnerShare = decimal.RequireFromString("0.70")

// Input is everything the split depends on
type Input struct {
	PaidEntrants int64
	Tier         int64
	WinnerShare  decimal.Decimal
	HasWinner    bool
}

// Payout is the computed split. WinnerPayout + PlatformFee == TotalPool
// when there is a winner; both are zero otherwise.
type Payout struct {
	TotalPool    decimal.Decimal
	WinnerPayout decimal.Decimal
	PlatformFee  decimal.Decimal
	HasWinner    bool
}

// Compute returns the split for in
func Compute(in Input) Payout {
	share := in.WinnerShare
	if share.IsZero() {
		share = DefaultWinnerShare
	}

	total := decimal.NewFromInt(in.PaidEntrants).Mul(decimal.NewFromInt(in.Tier))
	if !in.HasWinner {
		return Payout{
			TotalPool:    total,
			WinnerPayout: decimal.Zero,
			PlatformFee:  decimal.Zero,
		}
	}

	winner := total.Mul(share)
	return Payout{
		TotalPool:    total,
		WinnerPayout: winner,
		PlatformFee:  total.Sub(winner),
		HasWinner:    true,
	}
}

// SelectWinner returns the first standing with at least one vote. Standings
// must already be in tally order.
func SelectWinner(standings []entities.Standing) (entities.Standing, bool) {
	if len(standings) == 0 || standings[0].Votes <= 0 {
		return entities.Standing{}, false
	}
	return standings[0], true
}
