package commands

import (
	"fmt"
	"strings"

	"github.com/fadedpez/trackbattle/pkg/entities"
)

// FormatStandings renders a battle's leaderboard
func FormatStandings(b *entities.Battle, standings []entities.Standing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** (battle %d, %s)", b.Pool(), b.ID, b.Status)
	if len(standings) == 0 {
		sb.WriteString("\nNo eligible entrants yet.")
		return sb.String()
	}
	for i, st := range standings {
		fmt.Fprintf(&sb, "\n%d. #%d %s: %d %s", i+1, st.Entrant.DisplayNumber, displayName(st.Entrant), st.Votes, plural(st.Votes, "vote"))
	}
	return sb.String()
}

// FormatResult renders a completed battle's outcome
func FormatResult(r *entities.BattleResult) string {
	if !r.HasWinner {
		return fmt.Sprintf("Battle %d (%s $%d) ended without votes. Pool: %s coins, no payout.",
			r.BattleID, r.Category, r.Tier, r.TotalPool.StringFixed(2))
	}
	return fmt.Sprintf("Battle %d (%s $%d) won by <@%s> with %d %s! Pool: %s, winner payout: %s, platform fee: %s.",
		r.BattleID, r.Category, r.Tier, r.WinnerUserID, r.WinnerVotes, plural(r.WinnerVotes, "vote"),
		r.TotalPool.StringFixed(2), r.WinnerPayout.StringFixed(2), r.PlatformFee.StringFixed(2))
}

// FormatPayouts lists what each recent winner is owed
func FormatPayouts(results []*entities.BattleResult) string {
	if len(results) == 0 {
		return "No completed battles yet."
	}
	var sb strings.Builder
	sb.WriteString("**Payouts**")
	for _, r := range results {
		fmt.Fprintf(&sb, "\nBattle %d (%s $%d) %s: ", r.BattleID, r.Category, r.Tier, r.CompletedAt.Format("2006-01-02"))
		if !r.HasWinner {
			fmt.Fprintf(&sb, "no winner, pool %s kept", r.TotalPool.StringFixed(2))
			continue
		}
		fmt.Fprintf(&sb, "<@%s> owed %s of a %s pool", r.WinnerUserID, r.WinnerPayout.StringFixed(2), r.TotalPool.StringFixed(2))
	}
	return sb.String()
}

// FormatHelp lists commands with their options. Required options are shown
// as <name>, optional ones as [name].
func FormatHelp(cmds []*Command) string {
	var sb strings.Builder
	sb.WriteString("**Commands**")
	for _, cmd := range cmds {
		fmt.Fprintf(&sb, "\n/%s", cmd.Name)
		for _, opt := range cmd.Options {
			if opt.Required {
				fmt.Fprintf(&sb, " <%s>", opt.Name)
			} else {
				fmt.Fprintf(&sb, " [%s]", opt.Name)
			}
		}
		fmt.Fprintf(&sb, ": %s", cmd.Description)
	}
	return sb.String()
}

func displayName(e *entities.Entrant) string {
	if e.Username != "" {
		return e.Username
	}
	return "<@" + e.UserID + ">"
}

func plural(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
