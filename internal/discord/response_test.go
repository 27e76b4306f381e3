package discord

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	discordmock "github.com/fadedpez/trackbattle/internal/discord/mock"
	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ResponseTestSuite struct {
	suite.Suite
	session *discordmock.SessionHandler
}

func TestResponseSuite(t *testing.T) {
	suite.Run(t, new(ResponseTestSuite))
}

func (s *ResponseTestSuite) SetupTest() {
	s.session = &discordmock.SessionHandler{}
	s.session.Test(s.T())
}

func (s *ResponseTestSuite) TestNewResponse() {
	resp := NewResponse("test content", nil)

	s.Equal("test content", resp.Content)
	s.False(resp.Ephemeral)
}

func (s *ResponseTestSuite) TestNewEphemeralResponse() {
	resp := NewEphemeralResponse("test content", nil)

	s.Equal("test content", resp.Content)
	s.True(resp.Ephemeral)
}

func (s *ResponseTestSuite) TestNewErrorResponse() {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "insufficient funds",
			err:      types.NewBattleError(types.ErrInsufficientFunds, "Needed 5 coins, balance is 3."),
			expected: "💸 You don't have enough coins for this pool. Needed 5 coins, balance is 3.",
		},
		{
			name:     "already voted",
			err:      types.NewBattleError(types.ErrAlreadyVoted, ""),
			expected: "🗳️ You already voted in this battle. Remove your vote first.",
		},
		{
			name:     "internal details stay hidden",
			err:      types.WrapError(types.ErrInternalError, "sql: database is locked", errors.New("locked")),
			expected: "💥 Something went wrong. Please try again.",
		},
		{
			name:     "foreign error",
			err:      errors.New("boom"),
			expected: "💥 Something went wrong. Please try again.",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp := NewErrorResponse(tc.err)
			s.Equal(tc.expected, resp.Content)
			s.True(resp.Ephemeral)
		})
	}
}

func (s *ResponseTestSuite) TestSendResponse() {
	interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{ID: "i-1"}}

	s.session.On("InteractionRespond", interaction.Interaction, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Type == discordgo.InteractionResponseChannelMessageWithSource &&
			r.Data.Content == "hello" &&
			r.Data.Flags == discordgo.MessageFlagsEphemeral
	})).Return(nil).Once()

	err := SendResponse(s.session, interaction, NewEphemeralResponse("hello", nil))

	s.NoError(err)
	s.session.AssertExpectations(s.T())
}

func (s *ResponseTestSuite) TestSendErrorResponse() {
	interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{ID: "i-2"}}

	s.session.On("InteractionRespond", interaction.Interaction, mock.Anything).Return(errors.New("unknown interaction")).Once()

	err := SendErrorResponse(s.session, interaction, types.NewBattleError(types.ErrNotFound, ""))

	s.Error(err)
	s.session.AssertExpectations(s.T())
}
