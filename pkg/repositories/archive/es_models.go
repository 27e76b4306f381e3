package archive

import (
	"time"

	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/shopspring/decimal"
)

// ESBattleResult is a completed battle document in Elasticsearch
type ESBattleResult struct {
	BattleID        int64           `json:"battle_id"`
	Category        string          `json:"category"`
	Tier            int64           `json:"tier"`
	ChannelRef      string          `json:"channel_ref,omitempty"`
	HasWinner       bool            `json:"has_winner"`
	WinnerEntrantID int64           `json:"winner_entrant_id,omitempty"`
	WinnerUserID    string          `json:"winner_user_id,omitempty"`
	WinnerVotes     int64           `json:"winner_votes"`
	PaidEntrants    int64           `json:"paid_entrants"`
	TotalPool       decimal.Decimal `json:"total_pool"`
	WinnerPayout    decimal.Decimal `json:"winner_payout"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     time.Time       `json:"completed_at"`
	Standings       []ESStanding    `json:"standings"`
}

// ESStanding is one entrant's line in an archived battle
type ESStanding struct {
	EntrantID     int64  `json:"entrant_id"`
	UserID        string `json:"user_id"`
	Username      string `json:"username,omitempty"`
	DisplayNumber int    `json:"display_number"`
	SubmissionRef string `json:"submission_ref"`
	Votes         int64  `json:"votes"`
	Winner        bool   `json:"winner"`
}

func newESBattleResult(b *entities.Battle, r *entities.BattleResult) ESBattleResult {
	doc := ESBattleResult{
		BattleID:        r.BattleID,
		Category:        r.Category,
		Tier:            r.Tier,
		HasWinner:       r.HasWinner,
		WinnerEntrantID: r.WinnerEntrantID,
		WinnerUserID:    r.WinnerUserID,
		WinnerVotes:     r.WinnerVotes,
		PaidEntrants:    r.PaidEntrants,
		TotalPool:       r.TotalPool,
		WinnerPayout:    r.WinnerPayout,
		PlatformFee:     r.PlatformFee,
		CompletedAt:     r.CompletedAt.UTC(),
		Standings:       make([]ESStanding, 0, len(r.Standings)),
	}
	if b != nil {
		doc.ChannelRef = b.ChannelRef
		doc.CreatedAt = b.CreatedAt.UTC()
	}
	for _, st := range r.Standings {
		if st.Entrant == nil {
			continue
		}
		doc.Standings = append(doc.Standings, ESStanding{
			EntrantID:     st.Entrant.ID,
			UserID:        st.Entrant.UserID,
			Username:      st.Entrant.Username,
			DisplayNumber: st.Entrant.DisplayNumber,
			SubmissionRef: st.Entrant.SubmissionRef,
			Votes:         st.Votes,
			Winner:        r.HasWinner && st.Entrant.ID == r.WinnerEntrantID,
		})
	}
	return doc
}
