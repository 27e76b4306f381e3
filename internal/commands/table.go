package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/metrics"
	"github.com/fadedpez/trackbattle/pkg/services/battle"
	"github.com/fadedpez/trackbattle/pkg/services/voting"
	"github.com/fadedpez/trackbattle/pkg/services/wallet"
)

// Where a request came from
const (
	SourceDiscord = "discord"
	SourceHTTP    = "http"
)

// OptionKind is the type of a command option
type OptionKind int

const (
	OptionString OptionKind = iota
	OptionInteger
	OptionUser
)

// Option describes one argument of a command
type Option struct {
	Name        string
	Description string
	Kind        OptionKind
	Required    bool
	Choices     []string // String options only
	IntChoices  []int64  // Integer options only
}

// Request is one invocation of a command
type Request struct {
	Name     string
	Source   string
	UserID   string
	Username string
	IsAdmin  bool
	Args     Args
}

// Response is what a command hands back to the caller
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	// Ephemeral responses are only shown to the caller
	Ephemeral bool `json:"-"`
}

// Handler runs a command
type Handler func(ctx context.Context, req Request) (*Response, error)

// Command is one entry of the table
type Command struct {
	Name        string
	Description string
	AdminOnly   bool
	Options     []Option
	Handler     Handler
}

// Deps are the services commands act on
type Deps struct {
	Battles battle.BattleService
	Voting  voting.VotingService
	Wallet  wallet.WalletService
	// Categories and Tiers become option choices
	Categories []string
	Tiers      []int64
	// Providers are the payment providers offered by buy-coins
	Providers []string
	Metrics   *metrics.Metrics
	Logger    *logging.Logger
}

// Table is the closed set of commands shared by every front end
type Table struct {
	commands map[string]*Command
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewTable builds the command table
func NewTable(deps Deps) *Table {
	if deps.Logger == nil {
		deps.Logger = logging.Default
	}
	t := &Table{
		commands: make(map[string]*Command),
		metrics:  deps.Metrics,
		logger:   deps.Logger.With("COMMANDS"),
	}
	h := &handlers{deps: deps, table: t}
	for _, cmd := range h.commands() {
		t.commands[cmd.Name] = cmd
	}
	return t
}

// Get returns the named command
func (t *Table) Get(name string) (*Command, error) {
	cmd, ok := t.commands[name]
	if !ok {
		return nil, types.NewBattleError(types.ErrInvalidCommand, fmt.Sprintf("Command %s not found", name))
	}
	return cmd, nil
}

// Commands returns every command sorted by name
func (t *Table) Commands() []*Command {
	cmds := make([]*Command, 0, len(t.commands))
	for _, cmd := range t.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Dispatch checks permissions and runs the named command
func (t *Table) Dispatch(ctx context.Context, req Request) (resp *Response, err error) {
	defer func() {
		t.metrics.RecordCommand(req.Name, req.Source, string(codeOf(err)))
	}()

	cmd, err := t.Get(req.Name)
	if err != nil {
		return nil, err
	}
	if cmd.AdminOnly && !req.IsAdmin {
		t.logger.Warn("User %s tried admin command %s via %s", req.UserID, req.Name, req.Source)
		return nil, types.NewBattleError(types.ErrPermissionDenied, "")
	}
	if req.Args == nil {
		req.Args = Args{}
	}
	for _, opt := range cmd.Options {
		if opt.Required && !req.Args.Has(opt.Name) {
			return nil, types.NewBattleError(types.ErrInvalidArgument, fmt.Sprintf("Missing %s.", opt.Name))
		}
	}

	resp, err = cmd.Handler(ctx, req)
	if err != nil {
		if types.CodeOf(err) == types.ErrInternalError {
			t.logger.LogError(err)
		}
		return nil, err
	}
	return resp, nil
}

func codeOf(err error) types.ErrorCode {
	if err == nil {
		return "OK"
	}
	return types.CodeOf(err)
}
