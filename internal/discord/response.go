package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/trackbattle/internal/types"
)

// ResponseEmoji maps error codes to appropriate emojis
var ResponseEmoji = map[types.ErrorCode]string{
	types.ErrInsufficientFunds:   "💸",
	types.ErrRateLimited:         "⏱️",
	types.ErrNotFound:            "🔍",
	types.ErrInvalidPhase:        "⚠️",
	types.ErrAlreadyVoted:        "🗳️",
	types.ErrInvalidArgument:     "❗",
	types.ErrInvalidCommand:      "⛔",
	types.ErrPermissionDenied:    "🚫",
	types.ErrDuplicateOpenBattle: "💥",
	types.ErrAdapterFailure:      "🌐",
	types.ErrInternalError:       "💥",
}

// Response represents a Discord interaction response
type Response struct {
	Content    string
	Components []discordgo.MessageComponent
	Ephemeral  bool
}

// NewResponse creates a new Response
func NewResponse(content string, components []discordgo.MessageComponent) *Response {
	return &Response{
		Content:    content,
		Components: components,
		Ephemeral:  false,
	}
}

// NewEphemeralResponse creates a new ephemeral Response (only visible to the user)
func NewEphemeralResponse(content string, components []discordgo.MessageComponent) *Response {
	return &Response{
		Content:    content,
		Components: components,
		Ephemeral:  true,
	}
}

// NewErrorResponse creates an ephemeral response with the error's user message
func NewErrorResponse(err error) *Response {
	emoji := ResponseEmoji[types.CodeOf(err)]
	if emoji == "" {
		emoji = "❌"
	}
	return NewEphemeralResponse(fmt.Sprintf("%s %s", emoji, types.UserMessage(err)), nil)
}

// SendResponse sends a response to a Discord interaction
func SendResponse(s SessionHandler, i *discordgo.InteractionCreate, r *Response) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    r.Content,
			Components: r.Components,
			Flags:      getFlags(r.Ephemeral),
		},
	})
}

// SendErrorResponse sends an error response
func SendErrorResponse(s SessionHandler, i *discordgo.InteractionCreate, err error) error {
	return SendResponse(s, i, NewErrorResponse(err))
}

// Helper functions

func getFlags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}
