package voting

import (
	"context"

	"github.com/fadedpez/trackbattle/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_voting
type VotingService interface {
	CastVote(ctx context.Context, battleID int64, voterID string, sel EntrantSelector) (*entities.Vote, error)
	CastVoteByMessage(ctx context.Context, messageRef, voterID string) (*entities.Vote, error)
	WithdrawVote(ctx context.Context, battleID int64, voterID string) (bool, error)
	WithdrawVoteByMessage(ctx context.Context, messageRef, voterID string) (bool, error)
	Tally(ctx context.Context, battleID int64) ([]entities.Standing, error)
	Leaders(ctx context.Context, battleID int64, n int) ([]entities.Standing, error)
}
