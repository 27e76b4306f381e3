package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/trackbattle/internal/types"
)

// VoteEmoji is the reaction that counts as a vote
const VoteEmoji = "✅"

// MessageRef joins a channel and message id into the ref stored on entrants
func MessageRef(channelID, messageID string) string {
	return channelID + "/" + messageID
}

// SplitMessageRef undoes MessageRef
func SplitMessageRef(ref string) (channelID, messageID string, ok bool) {
	channelID, messageID, ok = strings.Cut(ref, "/")
	return channelID, messageID, ok && channelID != "" && messageID != ""
}

func (b *Bot) handleReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil || !b.countsAsVote(r.MessageReaction) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.opts.Timeout)
	defer cancel()

	ref := MessageRef(r.ChannelID, r.MessageID)
	_, err := b.voting.CastVoteByMessage(ctx, ref, r.UserID)
	if err == nil {
		return
	}

	switch types.CodeOf(err) {
	case types.ErrNotFound:
		// Not a submission message
		return
	case types.ErrInternalError:
		b.logger.Error("Failed to record vote on %s by %s: %v", ref, r.UserID, err)
	default:
		b.logger.Debug("Rejected vote on %s by %s: %v", ref, r.UserID, err)
	}

	// A rejected vote must not look counted. The remove event this causes
	// is ignored so it can't withdraw the voter's standing vote.
	key := ref + "|" + r.UserID
	b.suppressed.Store(key, struct{}{})
	if err := b.session.MessageReactionRemove(r.ChannelID, r.MessageID, VoteEmoji, r.UserID); err != nil {
		b.suppressed.Delete(key)
		b.logger.Warn("Failed to remove rejected reaction: %v", err)
	}
}

func (b *Bot) handleReactionRemove(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.MessageReaction == nil || !b.countsAsVote(r.MessageReaction) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.opts.Timeout)
	defer cancel()

	ref := MessageRef(r.ChannelID, r.MessageID)
	if _, ok := b.suppressed.LoadAndDelete(ref + "|" + r.UserID); ok {
		return
	}
	if _, err := b.voting.WithdrawVoteByMessage(ctx, ref, r.UserID); err != nil && types.CodeOf(err) == types.ErrInternalError {
		b.logger.Error("Failed to withdraw vote on %s by %s: %v", ref, r.UserID, err)
	}
}

func (b *Bot) countsAsVote(r *discordgo.MessageReaction) bool {
	if r.Emoji.Name != VoteEmoji {
		return false
	}
	return r.UserID != "" && r.UserID != b.botUserID()
}
