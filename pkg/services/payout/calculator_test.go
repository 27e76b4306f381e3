package payout

import (
	"testing"

	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	testCases := []struct {
		name     string
		input    Input
		total    string
		winner   string
		fee      string
		hasPrize bool
	}{
		{
			name:     "Five entrants at $5",
			input:    Input{PaidEntrants: 5, Tier: 5, WinnerShare: dec("0.70"), HasWinner: true},
			total:    "25",
			winner:   "17.5",
			fee:      "7.5",
			hasPrize: true,
		},
		{
			name:     "Two entrants at $25",
			input:    Input{PaidEntrants: 2, Tier: 25, WinnerShare: dec("0.70"), HasWinner: true},
			total:    "50",
			winner:   "35",
			fee:      "15",
			hasPrize: true,
		},
		{
			name:     "Default share",
			input:    Input{PaidEntrants: 3, Tier: 15, HasWinner: true},
			total:    "45",
			winner:   "31.5",
			fee:      "13.5",
			hasPrize: true,
		},
		{
			name:   "No winner keeps the total",
			input:  Input{PaidEntrants: 4, Tier: 5, WinnerShare: dec("0.70")},
			total:  "20",
			winner: "0",
			fee:    "0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Compute(tc.input)

			assert.True(t, p.TotalPool.Equal(dec(tc.total)), "total %s", p.TotalPool)
			assert.True(t, p.WinnerPayout.Equal(dec(tc.winner)), "winner %s", p.WinnerPayout)
			assert.True(t, p.PlatformFee.Equal(dec(tc.fee)), "fee %s", p.PlatformFee)
			assert.Equal(t, tc.hasPrize, p.HasWinner)
		})
	}
}

func TestComputeSplitAddsUp(t *testing.T) {
	for n := int64(2); n < 40; n++ {
		for _, tier := range []int64{5, 15, 25} {
			p := Compute(Input{PaidEntrants: n, Tier: tier, WinnerShare: dec("0.70"), HasWinner: true})
			assert.True(t, p.WinnerPayout.Add(p.PlatformFee).Equal(p.TotalPool))
		}
	}
}

func TestSelectWinner(t *testing.T) {
	a := &entities.Entrant{ID: 1}
	b := &entities.Entrant{ID: 2}

	winner, ok := SelectWinner([]entities.Standing{{Entrant: a, Votes: 3}, {Entrant: b, Votes: 1}})
	assert.True(t, ok)
	assert.Equal(t, a, winner.Entrant)

	_, ok = SelectWinner([]entities.Standing{{Entrant: a, Votes: 0}, {Entrant: b, Votes: 0}})
	assert.False(t, ok)

	_, ok = SelectWinner(nil)
	assert.False(t, ok)
}
