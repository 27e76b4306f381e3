package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/trackbattle/internal/commands"
	"github.com/fadedpez/trackbattle/internal/discord"
	"github.com/fadedpez/trackbattle/internal/types"
)

func (b *Bot) handleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.opts.Timeout)
	defer cancel()

	req := requestFrom(i)
	b.logger.Debug("Command %s from %s", req.Name, req.UserID)

	resp, err := b.table.Dispatch(ctx, req)
	if err != nil {
		if types.CodeOf(err) == types.ErrInternalError {
			b.logger.Error("Command %s failed: %v", req.Name, err)
		}
		if rerr := discord.SendErrorResponse(b.session, i, err); rerr != nil {
			b.logger.Warn("Failed to send error response: %v", rerr)
		}
		return
	}

	out := discord.NewResponse(resp.Message, nil)
	out.Ephemeral = resp.Ephemeral
	if err := discord.SendResponse(b.session, i, out); err != nil {
		b.logger.Warn("Failed to respond to %s: %v", req.Name, err)
	}
}

// requestFrom translates a slash command interaction into a command request
func requestFrom(i *discordgo.InteractionCreate) commands.Request {
	data := i.ApplicationCommandData()
	req := commands.Request{
		Name:   data.Name,
		Source: commands.SourceDiscord,
		Args:   commands.Args{},
	}

	switch {
	case i.Member != nil && i.Member.User != nil:
		req.UserID = i.Member.User.ID
		req.Username = i.Member.User.Username
		if i.Member.Nick != "" {
			req.Username = i.Member.Nick
		}
		req.IsAdmin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	case i.User != nil:
		req.UserID = i.User.ID
		req.Username = i.User.Username
	}

	for _, opt := range data.Options {
		req.Args[opt.Name] = opt.Value
	}
	return req
}
