package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/trackbattle/internal/commands"
	"github.com/fadedpez/trackbattle/internal/discord"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/fadedpez/trackbattle/pkg/retry"
	"github.com/fadedpez/trackbattle/pkg/services/notify"
	"golang.org/x/time/rate"
)

// NotifierOptions names the channels events are posted to
type NotifierOptions struct {
	// BattleChannelID receives entries and voting posts for battles without their own channel
	BattleChannelID  string
	StatsChannelID   string
	ResultsChannelID string
	// Limiter paces message sends; nil uses 5 per second
	Limiter *rate.Limiter
}

// Notifier posts battle events to Discord channels
type Notifier struct {
	session discord.SessionHandler
	opts    NotifierOptions
	limiter *rate.Limiter

	mu        sync.Mutex
	statsMsgs map[string]string // channel id -> live stats message id
}

var _ notify.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier sending through session
func NewNotifier(session discord.SessionHandler, opts NotifierOptions) *Notifier {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(5), 5)
	}
	if opts.ResultsChannelID == "" {
		opts.ResultsChannelID = opts.BattleChannelID
	}
	if opts.StatsChannelID == "" {
		opts.StatsChannelID = opts.BattleChannelID
	}
	return &Notifier{
		session:   session,
		opts:      opts,
		limiter:   limiter,
		statsMsgs: make(map[string]string),
	}
}

func (n *Notifier) battleChannel(b *entities.Battle) string {
	if b != nil && b.ChannelRef != "" {
		return b.ChannelRef
	}
	return n.opts.BattleChannelID
}

func (n *Notifier) AnnounceEntry(ctx context.Context, event notify.EntryEvent) error {
	msg := fmt.Sprintf("🎵 <@%s> entered **%s** (battle %d). Pool is now %d coins.",
		event.Entrant.UserID, event.Battle.Pool(), event.Battle.ID, event.PoolTotal)
	_, err := n.send(ctx, n.battleChannel(event.Battle), msg)
	return err
}

// AnnounceVotingStarted posts a header and one message per entrant, each
// seeded with the vote reaction. Entrants that already have a message are
// skipped so a retry doesn't post duplicates.
func (n *Notifier) AnnounceVotingStarted(ctx context.Context, event notify.VotingStartedEvent) (map[int64]string, error) {
	channel := n.battleChannel(event.Battle)
	refs := make(map[int64]string, len(event.Entrants))

	pending := make([]*entities.Entrant, 0, len(event.Entrants))
	for _, e := range event.Entrants {
		if e.MessageRef != "" {
			refs[e.ID] = e.MessageRef
			continue
		}
		pending = append(pending, e)
	}
	if len(pending) == 0 {
		return refs, nil
	}

	if len(pending) == len(event.Entrants) {
		header := fmt.Sprintf("🗳️ Voting is open for **%s** (battle %d)! React with %s on your favourite track.",
			event.Battle.Pool(), event.Battle.ID, VoteEmoji)
		if event.Battle.VotingEndsAt != nil {
			header += fmt.Sprintf(" Voting ends <t:%d:R>.", event.Battle.VotingEndsAt.Unix())
		}
		if _, err := n.send(ctx, channel, header); err != nil {
			return refs, err
		}
	}

	for _, e := range pending {
		msg, err := n.send(ctx, channel, fmt.Sprintf("**#%d** <@%s>\n%s", e.DisplayNumber, e.UserID, e.SubmissionRef))
		if err != nil {
			return refs, err
		}
		// The ref is recorded before the reaction so a failed reaction
		// doesn't post the entrant twice on retry
		e.MessageRef = MessageRef(msg.ChannelID, msg.ID)
		refs[e.ID] = e.MessageRef

		if err := n.limiter.Wait(ctx); err != nil {
			return refs, err
		}
		if err := n.session.MessageReactionAdd(msg.ChannelID, msg.ID, VoteEmoji); err != nil {
			return refs, classify(err)
		}
	}
	return refs, nil
}

func (n *Notifier) AnnounceResult(ctx context.Context, event notify.ResultEvent) error {
	msg := "🏆 " + commands.FormatResult(event.Result)
	if event.Winner != nil {
		msg += "\nWinning track: " + event.Winner.SubmissionRef
	}
	_, err := n.send(ctx, n.opts.ResultsChannelID, msg)
	return err
}

// AnnouncePoolStandings keeps one live stats message up to date
func (n *Notifier) AnnouncePoolStandings(ctx context.Context, standings []notify.PoolStanding) error {
	channel := n.opts.StatsChannelID
	if channel == "" {
		return nil
	}
	content := FormatPoolStandings(standings)

	n.mu.Lock()
	msgID := n.statsMsgs[channel]
	n.mu.Unlock()

	if msgID != "" {
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
		_, err := n.session.ChannelMessageEdit(channel, msgID, content)
		if err == nil {
			return nil
		}
		if !isNotFound(err) {
			return classify(err)
		}
		// The message was deleted; post a new one
	}

	msg, err := n.send(ctx, channel, content)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.statsMsgs[channel] = msg.ID
	n.mu.Unlock()
	return nil
}

func (n *Notifier) RemoveMessage(ctx context.Context, ref string) error {
	channelID, messageID, ok := SplitMessageRef(ref)
	if !ok {
		return retry.Permanent(fmt.Errorf("invalid message ref %q", ref))
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := n.session.ChannelMessageDelete(channelID, messageID); err != nil && !isNotFound(err) {
		return classify(err)
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, channelID, content string) (*discordgo.Message, error) {
	if channelID == "" {
		return nil, retry.Permanent(errors.New("no channel configured"))
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	msg, err := n.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return nil, classify(err)
	}
	return msg, nil
}

// FormatPoolStandings renders the live stats message
func FormatPoolStandings(standings []notify.PoolStanding) string {
	var sb strings.Builder
	sb.WriteString("📊 **Live pools**")
	if len(standings) == 0 {
		sb.WriteString("\nNo open battles.")
		return sb.String()
	}
	for _, st := range standings {
		fmt.Fprintf(&sb, "\n\n**%s $%d** (battle %d, %s): %d coins from %d entrants, winner takes %s",
			st.Pool.Category, st.Pool.Tier, st.BattleID, st.Status,
			st.Pool.TotalAmount, st.Pool.EntrantCount, st.WinnerPrize.StringFixed(2))
		for i, l := range st.Leaders {
			fmt.Fprintf(&sb, "\n%d. #%d <@%s>: %d", i+1, l.Entrant.DisplayNumber, l.Entrant.UserID, l.Votes)
		}
	}
	return sb.String()
}

// classify marks Discord client errors as permanent. Rate limits, server
// errors and network failures stay retryable.
func classify(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		code := rest.Response.StatusCode
		if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
			return err
		}
		return retry.Permanent(err)
	}
	return err
}

func isNotFound(err error) bool {
	var rest *discordgo.RESTError
	return errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound
}
