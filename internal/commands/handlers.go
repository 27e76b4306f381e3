package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/fadedpez/trackbattle/pkg/services/battle"
	"github.com/fadedpez/trackbattle/pkg/services/voting"
)

// Command names
const (
	CmdEnter          = "enter"
	CmdVote           = "vote"
	CmdWithdrawVote   = "withdraw-vote"
	CmdStandings      = "standings"
	CmdBalance        = "balance"
	CmdBuyCoins       = "buy-coins"
	CmdVerifyPurchase = "verify-purchase"

	CmdStartVoting     = "start-voting"
	CmdEndVoting       = "end-voting"
	CmdClosePool       = "close-pool"
	CmdDisqualify      = "disqualify"
	CmdRemoveEntrant   = "remove-entrant"
	CmdAddBalance      = "add-balance"
	CmdViewBalance     = "view-balance"
	CmdListOpenBattles = "list-open-battles"
	CmdViewPoolTotals  = "view-pool-totals"
	CmdPayouts         = "payouts"

	CmdHelp = "help"
)

const standingsShown = 10

type handlers struct {
	deps  Deps
	table *Table
}

func (h *handlers) commands() []*Command {
	category := Option{Name: "category", Description: "Music category", Kind: OptionString, Choices: h.deps.Categories}
	tier := Option{Name: "tier", Description: "Entry price in coins", Kind: OptionInteger, IntChoices: h.deps.Tiers}
	battleID := Option{Name: "battle", Description: "Battle id", Kind: OptionInteger}
	entrantID := Option{Name: "entrant", Description: "Entrant id", Kind: OptionInteger, Required: true}

	required := func(o Option) Option {
		o.Required = true
		return o
	}

	return []*Command{
		{
			Name:        CmdEnter,
			Description: "Pay the tier price and enter a track into a pool",
			Options: []Option{
				required(category),
				required(tier),
				{Name: "track", Description: "Link to your track", Kind: OptionString, Required: true},
			},
			Handler: h.enter,
		},
		{
			Name:        CmdVote,
			Description: "Vote for an entrant by number",
			Options: []Option{
				{Name: "number", Description: "Entrant number", Kind: OptionInteger, Required: true},
				battleID, category, tier,
			},
			Handler: h.vote,
		},
		{
			Name:        CmdWithdrawVote,
			Description: "Take back your vote",
			Options:     []Option{battleID, category, tier},
			Handler:     h.withdrawVote,
		},
		{
			Name:        CmdStandings,
			Description: "Show a battle's current standings",
			Options:     []Option{battleID, category, tier},
			Handler:     h.standings,
		},
		{
			Name:        CmdBalance,
			Description: "Show your coin balance",
			Handler:     h.balance,
		},
		{
			Name:        CmdBuyCoins,
			Description: "Buy coins",
			Options: []Option{
				{Name: "coins", Description: "How many coins", Kind: OptionInteger, Required: true},
				{Name: "provider", Description: "Payment provider", Kind: OptionString, Choices: h.deps.Providers},
			},
			Handler: h.buyCoins,
		},
		{
			Name:        CmdVerifyPurchase,
			Description: "Check a coin purchase and credit it once paid",
			Options:     []Option{{Name: "reference", Description: "Checkout reference", Kind: OptionString, Required: true}},
			Handler:     h.verifyPurchase,
		},

		{
			Name:        CmdStartVoting,
			Description: "Start voting on a battle",
			AdminOnly:   true,
			Options:     []Option{battleID, category, tier},
			Handler:     h.startVoting,
		},
		{
			Name:        CmdEndVoting,
			Description: "End voting and record the result",
			AdminOnly:   true,
			Options:     []Option{battleID, category, tier},
			Handler:     h.endVoting,
		},
		{
			Name:        CmdClosePool,
			Description: "Stop new entries into a pool",
			AdminOnly:   true,
			Options:     []Option{required(category), required(tier)},
			Handler:     h.closePool,
		},
		{
			Name:        CmdDisqualify,
			Description: "Disqualify an entrant without refund",
			AdminOnly:   true,
			Options:     []Option{entrantID},
			Handler:     h.disqualify,
		},
		{
			Name:        CmdRemoveEntrant,
			Description: "Remove an entrant and refund the entry fee",
			AdminOnly:   true,
			Options:     []Option{entrantID},
			Handler:     h.removeEntrant,
		},
		{
			Name:        CmdAddBalance,
			Description: "Credit coins to a user",
			AdminOnly:   true,
			Options: []Option{
				{Name: "user", Description: "User to credit", Kind: OptionUser, Required: true},
				{Name: "amount", Description: "Coins to add", Kind: OptionInteger, Required: true},
			},
			Handler: h.addBalance,
		},
		{
			Name:        CmdViewBalance,
			Description: "Show a user's balance and recent transactions",
			AdminOnly:   true,
			Options:     []Option{{Name: "user", Description: "User", Kind: OptionUser, Required: true}},
			Handler:     h.viewBalance,
		},
		{
			Name:        CmdListOpenBattles,
			Description: "List battles that haven't completed",
			AdminOnly:   true,
			Handler:     h.listOpenBattles,
		},
		{
			Name:        CmdViewPoolTotals,
			Description: "Show pool totals",
			AdminOnly:   true,
			Options:     []Option{category},
			Handler:     h.viewPoolTotals,
		},
		{
			Name:        CmdPayouts,
			Description: "List recent winners and what they are owed",
			AdminOnly:   true,
			Options:     []Option{{Name: "limit", Description: "How many battles to list", Kind: OptionInteger}},
			Handler:     h.payouts,
		},
		{
			Name:        CmdHelp,
			Description: "List the commands you can use",
			Handler:     h.help,
		},
	}
}

func selectorFrom(args Args) (battle.Selector, error) {
	id, err := args.Int64("battle")
	if err != nil {
		return battle.Selector{}, err
	}
	tier, err := args.Int64("tier")
	if err != nil {
		return battle.Selector{}, err
	}
	sel := battle.Selector{BattleID: id, Category: args.String("category"), Tier: tier}
	if sel.BattleID == 0 && (sel.Category == "" || sel.Tier == 0) {
		return sel, types.NewBattleError(types.ErrInvalidArgument, "Give a battle id, or a category and tier.")
	}
	return sel, nil
}

func (h *handlers) resolve(ctx context.Context, args Args) (*entities.Battle, error) {
	sel, err := selectorFrom(args)
	if err != nil {
		return nil, err
	}
	return h.deps.Battles.ResolveBattle(ctx, sel)
}

func (h *handlers) enter(ctx context.Context, req Request) (*Response, error) {
	tier, err := req.Args.Int64("tier")
	if err != nil {
		return nil, err
	}
	entrant, err := h.deps.Battles.Admit(ctx, battle.AdmitRequest{
		Category:      req.Args.String("category"),
		Tier:          tier,
		UserID:        req.UserID,
		Username:      req.Username,
		SubmissionRef: req.Args.String("track"),
	})
	if err != nil {
		return nil, err
	}
	return &Response{
		Message: fmt.Sprintf("You're in! %d coins paid, entry id %d in battle %d. Your vote number is assigned when voting starts.",
			tier, entrant.ID, entrant.BattleID),
		Data: entrant,
	}, nil
}

func (h *handlers) vote(ctx context.Context, req Request) (*Response, error) {
	b, err := h.resolve(ctx, req.Args)
	if err != nil {
		return nil, err
	}
	number, err := req.Args.Int64("number")
	if err != nil {
		return nil, err
	}
	vote, err := h.deps.Voting.CastVote(ctx, b.ID, req.UserID, voting.EntrantSelector{Number: int(number)})
	if err != nil {
		return nil, err
	}
	return &Response{
		Message:   fmt.Sprintf("Vote for #%d in %s recorded.", number, b.Pool()),
		Data:      vote,
		Ephemeral: true,
	}, nil
}

func (h *handlers) withdrawVote(ctx context.Context, req Request) (*Response, error) {
	b, err := h.resolve(ctx, req.Args)
	if err != nil {
		return nil, err
	}
	removed, err := h.deps.Voting.WithdrawVote(ctx, b.ID, req.UserID)
	if err != nil {
		return nil, err
	}
	msg := "You had no vote in this battle."
	if removed {
		msg = "Your vote was withdrawn."
	}
	return &Response{Message: msg, Ephemeral: true}, nil
}

func (h *handlers) standings(ctx context.Context, req Request) (*Response, error) {
	b, err := h.resolve(ctx, req.Args)
	if err != nil {
		return nil, err
	}
	leaders, err := h.deps.Voting.Leaders(ctx, b.ID, standingsShown)
	if err != nil {
		return nil, err
	}
	return &Response{Message: FormatStandings(b, leaders), Data: leaders}, nil
}

func (h *handlers) balance(ctx context.Context, req Request) (*Response, error) {
	balance, err := h.deps.Wallet.GetBalance(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &Response{
		Message:   fmt.Sprintf("Your balance is %d coins.", balance),
		Data:      map[string]int64{"balance": balance},
		Ephemeral: true,
	}, nil
}

func (h *handlers) buyCoins(ctx context.Context, req Request) (*Response, error) {
	coins, err := req.Args.Int64("coins")
	if err != nil {
		return nil, err
	}
	provider := req.Args.String("provider")
	if provider == "" && len(h.deps.Providers) > 0 {
		provider = h.deps.Providers[0]
	}

	if _, err := h.deps.Wallet.EnsureUser(ctx, req.UserID, req.Username); err != nil {
		return nil, err
	}
	purchase, checkout, err := h.deps.Wallet.PurchaseCoins(ctx, req.UserID, provider, coins)
	if err != nil {
		return nil, err
	}
	return &Response{
		Message: fmt.Sprintf("Pay for %d coins here: %s\nThen run /%s with reference `%s`.",
			coins, checkout.ApproveURL, CmdVerifyPurchase, purchase.CheckoutRef),
		Data:      checkout,
		Ephemeral: true,
	}, nil
}

func (h *handlers) verifyPurchase(ctx context.Context, req Request) (*Response, error) {
	result, err := h.deps.Wallet.VerifyPurchase(ctx, req.UserID, req.Args.String("reference"))
	if err != nil {
		return nil, err
	}

	var msg string
	switch {
	case result.Credited:
		msg = fmt.Sprintf("Payment received! %d coins added, balance is %d.", result.Purchase.Coins, result.Balance)
	case result.AlreadyCredited:
		msg = fmt.Sprintf("This purchase was already credited. Balance is %d.", result.Balance)
	default:
		msg = fmt.Sprintf("Payment is %s. Try again once it's complete.", strings.ToLower(string(result.Status)))
	}
	return &Response{Message: msg, Data: result, Ephemeral: true}, nil
}

func (h *handlers) startVoting(ctx context.Context, req Request) (*Response, error) {
	sel, err := selectorFrom(req.Args)
	if err != nil {
		return nil, err
	}
	b, entrants, err := h.deps.Battles.StartVoting(ctx, sel)
	if err != nil {
		return nil, err
	}
	return &Response{
		Message: fmt.Sprintf("Voting started for battle %d (%s) with %d entrants.", b.ID, b.Pool(), len(entrants)),
		Data:    b,
	}, nil
}

func (h *handlers) endVoting(ctx context.Context, req Request) (*Response, error) {
	sel, err := selectorFrom(req.Args)
	if err != nil {
		return nil, err
	}
	result, err := h.deps.Battles.EndVoting(ctx, sel)
	if err != nil {
		return nil, err
	}
	return &Response{Message: FormatResult(result), Data: result}, nil
}

func (h *handlers) closePool(ctx context.Context, req Request) (*Response, error) {
	tier, err := req.Args.Int64("tier")
	if err != nil {
		return nil, err
	}
	b, err := h.deps.Battles.Close(ctx, req.Args.String("category"), tier)
	if err != nil {
		return nil, err
	}
	return &Response{Message: fmt.Sprintf("Battle %d (%s) is closed to new entries.", b.ID, b.Pool()), Data: b}, nil
}

func (h *handlers) disqualify(ctx context.Context, req Request) (*Response, error) {
	id, err := req.Args.Int64("entrant")
	if err != nil {
		return nil, err
	}
	e, err := h.deps.Battles.Disqualify(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Response{Message: fmt.Sprintf("Entrant %d in battle %d is disqualified.", e.ID, e.BattleID), Data: e}, nil
}

func (h *handlers) removeEntrant(ctx context.Context, req Request) (*Response, error) {
	id, err := req.Args.Int64("entrant")
	if err != nil {
		return nil, err
	}
	refund, err := h.deps.Battles.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Response{
		Message: fmt.Sprintf("Entrant %d removed and refunded %d coins.", id, refund),
		Data:    map[string]int64{"entrant": id, "refund": refund},
	}, nil
}

func (h *handlers) addBalance(ctx context.Context, req Request) (*Response, error) {
	userID := req.Args.String("user")
	amount, err := req.Args.Int64("amount")
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, types.NewBattleError(types.ErrInvalidArgument, "amount must be positive.")
	}
	balance, err := h.deps.Wallet.Credit(ctx, userID, amount, entities.TransactionTypeAdminCredit,
		"admin:"+req.UserID, fmt.Sprintf("Credited by %s", req.Username))
	if err != nil {
		return nil, err
	}
	return &Response{
		Message: fmt.Sprintf("Added %d coins to <@%s>. New balance: %d.", amount, userID, balance),
		Data:    map[string]any{"user": userID, "balance": balance},
	}, nil
}

func (h *handlers) viewBalance(ctx context.Context, req Request) (*Response, error) {
	userID := req.Args.String("user")
	balance, err := h.deps.Wallet.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := h.deps.Wallet.GetRecentTransactions(ctx, userID, 5)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<@%s> has %d coins.", userID, balance)
	for _, tx := range txs {
		fmt.Fprintf(&sb, "\n%s %+d %s", tx.Timestamp.Format("2006-01-02 15:04"), tx.Amount, tx.Type)
	}
	return &Response{
		Message:   sb.String(),
		Data:      map[string]any{"user": userID, "balance": balance, "transactions": txs},
		Ephemeral: true,
	}, nil
}

func (h *handlers) listOpenBattles(ctx context.Context, req Request) (*Response, error) {
	battles, err := h.deps.Battles.ListOpenBattles(ctx)
	if err != nil {
		return nil, err
	}
	if len(battles) == 0 {
		return &Response{Message: "No open battles.", Data: battles}, nil
	}

	var sb strings.Builder
	for i, b := range battles {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Battle %d: %s, %s", b.ID, b.Pool(), b.Status)
		if b.VotingEndsAt != nil {
			fmt.Fprintf(&sb, ", voting ends %s", b.VotingEndsAt.Format("2006-01-02 15:04 MST"))
		}
	}
	return &Response{Message: sb.String(), Data: battles}, nil
}

func (h *handlers) viewPoolTotals(ctx context.Context, req Request) (*Response, error) {
	totals, err := h.deps.Battles.PoolTotals(ctx, req.Args.String("category"))
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return &Response{Message: "No pools have entries yet.", Data: totals}, nil
	}

	var sb strings.Builder
	for i, t := range totals {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s $%d: %d coins from %d entrants", t.Category, t.Tier, t.TotalAmount, t.EntrantCount)
	}
	return &Response{Message: sb.String(), Data: totals}, nil
}

func (h *handlers) payouts(ctx context.Context, req Request) (*Response, error) {
	limit, err := req.Args.Int64("limit")
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, types.NewBattleError(types.ErrInvalidArgument, "limit must be positive.")
	}
	results, err := h.deps.Battles.Payouts(ctx, int(limit))
	if err != nil {
		return nil, err
	}
	return &Response{Message: FormatPayouts(results), Data: results, Ephemeral: true}, nil
}

func (h *handlers) help(_ context.Context, req Request) (*Response, error) {
	var visible []*Command
	for _, cmd := range h.table.Commands() {
		if cmd.AdminOnly && !req.IsAdmin {
			continue
		}
		visible = append(visible, cmd)
	}
	return &Response{Message: FormatHelp(visible), Ephemeral: true}, nil
}
