package discord

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/trackbattle/internal/commands"
	"github.com/fadedpez/trackbattle/internal/discord"
	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/pkg/services/voting"
)

// Options configures the bot
type Options struct {
	AppID   string
	GuildID string // empty registers commands globally
	// CleanupOnStop deletes the registered commands on Stop, for development
	CleanupOnStop bool
	Timeout       time.Duration
	Logger        *logging.Logger
}

// Bot connects the command table and the voting engine to Discord
type Bot struct {
	session discord.SessionHandler
	table   *commands.Table
	voting  voting.VotingService
	opts    Options
	logger  *logging.Logger
	removes []func()

	// reactions the bot removed itself, keyed by message ref and user
	suppressed sync.Map
}

// NewBot creates a new instance of the bot
func NewBot(session discord.SessionHandler, table *commands.Table, votes voting.VotingService, opts Options) *Bot {
	if opts.Logger == nil {
		opts.Logger = logging.Default
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Bot{
		session: session,
		table:   table,
		voting:  votes,
		opts:    opts,
		logger:  opts.Logger.With("DISCORD"),
	}
}

// Start registers handlers, connects to Discord and registers slash commands
func (b *Bot) Start() error {
	b.removes = append(b.removes,
		b.session.AddHandler(b.handleReady),
		b.session.AddHandler(b.handleInteraction),
		b.session.AddHandler(b.handleReactionAdd),
		b.session.AddHandler(b.handleReactionRemove),
	)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	cmds := ApplicationCommands(b.table)
	if _, err := b.session.ApplicationCommandBulkOverwrite(b.opts.AppID, b.opts.GuildID, cmds); err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}
	b.logger.Info("Registered %d slash commands", len(cmds))
	return nil
}

// Stop removes handlers and closes the Discord connection
func (b *Bot) Stop() error {
	for _, remove := range b.removes {
		remove()
	}
	b.removes = nil

	if b.opts.CleanupOnStop {
		b.cleanupCommands()
	}

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing connection: %w", err)
	}
	return nil
}

func (b *Bot) cleanupCommands() {
	registered, err := b.session.ApplicationCommands(b.opts.AppID, b.opts.GuildID)
	if err != nil {
		b.logger.Warn("Failed to list commands for cleanup: %v", err)
		return
	}
	for _, cmd := range registered {
		if err := b.session.ApplicationCommandDelete(b.opts.AppID, b.opts.GuildID, cmd.ID); err != nil {
			b.logger.Warn("Failed to delete command %s: %v", cmd.Name, err)
		}
	}
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("Bot is ready: %s", r.User.Username)
}

// botUserID returns the bot's own user id once connected
func (b *Bot) botUserID() string {
	state := b.session.State()
	if state == nil || state.User == nil {
		return ""
	}
	return state.User.ID
}
