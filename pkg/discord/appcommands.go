package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/trackbattle/internal/commands"
)

// Discord allows at most this many choices per option
const maxChoices = 25

var adminPermission int64 = discordgo.PermissionAdministrator

// ApplicationCommands converts the command table to slash commands.
// Admin commands are hidden from members without the Administrator permission.
func ApplicationCommands(table *commands.Table) []*discordgo.ApplicationCommand {
	var out []*discordgo.ApplicationCommand
	for _, cmd := range table.Commands() {
		ac := &discordgo.ApplicationCommand{
			Name:        cmd.Name,
			Description: cmd.Description,
		}
		if cmd.AdminOnly {
			ac.DefaultMemberPermissions = &adminPermission
		}

		// Discord requires required options first
		for _, required := range []bool{true, false} {
			for _, opt := range cmd.Options {
				if opt.Required == required {
					ac.Options = append(ac.Options, applicationOption(opt))
				}
			}
		}
		out = append(out, ac)
	}
	return out
}

func applicationOption(opt commands.Option) *discordgo.ApplicationCommandOption {
	o := &discordgo.ApplicationCommandOption{
		Name:        opt.Name,
		Description: opt.Description,
		Required:    opt.Required,
	}
	switch opt.Kind {
	case commands.OptionInteger:
		o.Type = discordgo.ApplicationCommandOptionInteger
		for i, c := range opt.IntChoices {
			if i == maxChoices {
				break
			}
			o.Choices = append(o.Choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  fmt.Sprintf("$%d", c),
				Value: c,
			})
		}
	case commands.OptionUser:
		o.Type = discordgo.ApplicationCommandOptionUser
	default:
		o.Type = discordgo.ApplicationCommandOptionString
		for i, c := range opt.Choices {
			if i == maxChoices {
				break
			}
			o.Choices = append(o.Choices, &discordgo.ApplicationCommandOptionChoice{Name: c, Value: c})
		}
	}
	return o
}
