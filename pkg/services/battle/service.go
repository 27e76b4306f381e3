package battle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/lock"
	"github.com/fadedpez/trackbattle/pkg/metrics"
	battleRepo "github.com/fadedpez/trackbattle/pkg/repositories/battle"
	walletRepo "github.com/fadedpez/trackbattle/pkg/repositories/wallet"
	"github.com/fadedpez/trackbattle/pkg/scheduler"
	"github.com/fadedpez/trackbattle/pkg/services/notify"
	"github.com/fadedpez/trackbattle/pkg/services/payout"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

const (
	// MinEntrants is the fewest eligible entrants a vote can run with
	MinEntrants = 2
	// LeaderCount is how many leaders the live stats show per pool
	LeaderCount = 3
	// PayoutLimit is how many results Payouts returns by default
	PayoutLimit = 20
)

// Rules are the configurable battle rules
type Rules struct {
	Categories     []string
	Tiers          []int64
	VotingDuration time.Duration
	EntryCooldown  time.Duration
	WinnerShare    decimal.Decimal
}

// Options configures the battle service
type Options struct {
	Notifier notify.Notifier
	Archiver Archiver // optional
	Clock    scheduler.Clock
	// Locks is shared with the voting engine
	Locks   *lock.Keyed[int64]
	Metrics *metrics.Metrics
	Logger  *logging.Logger
}

// Service runs pools and the battle lifecycle
type Service struct {
	repo     battleRepo.Repository
	rules    Rules
	notifier notify.Notifier
	archiver Archiver
	clock    scheduler.Clock
	battles  *lock.Keyed[int64]
	users    *lock.Keyed[string]
	metrics  *metrics.Metrics
	logger   *logging.Logger

	categories map[string]string // folded name -> configured name
	tiers      map[int64]bool
}

var (
	_ BattleService           = (*Service)(nil)
	_ scheduler.BattleSweeper = (*Service)(nil)
)

// NewService creates a new battle service
func NewService(repo battleRepo.Repository, rules Rules, opts Options) *Service {
	if rules.WinnerShare.IsZero() {
		rules.WinnerShare = payout.DefaultWinnerShare
	}
	if rules.VotingDuration <= 0 {
		rules.VotingDuration = 24 * time.Hour
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.Clock == nil {
		opts.Clock = scheduler.RealClock{}
	}
	if opts.Locks == nil {
		opts.Locks = lock.NewKeyed[int64]()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default
	}

	s := &Service{
		repo:       repo,
		rules:      rules,
		notifier:   opts.Notifier,
		archiver:   opts.Archiver,
		clock:      opts.Clock,
		battles:    opts.Locks,
		users:      lock.NewKeyed[string](),
		metrics:    opts.Metrics,
		logger:     opts.Logger.With("BATTLE"),
		categories: make(map[string]string, len(rules.Categories)),
		tiers:      make(map[int64]bool, len(rules.Tiers)),
	}
	for _, c := range rules.Categories {
		s.categories[foldCategory(c)] = c
	}
	for _, t := range rules.Tiers {
		s.tiers[t] = true
	}
	return s
}

// Categories returns the configured categories
func (s *Service) Categories() []string {
	return append([]string(nil), s.rules.Categories...)
}

// Tiers returns the configured entry prices
func (s *Service) Tiers() []int64 {
	return append([]int64(nil), s.rules.Tiers...)
}

// NormalizeCategory maps user input like "hip hop" or "HIP HOP" to the
// configured category name
func (s *Service) NormalizeCategory(input string) (string, error) {
	if name, ok := s.categories[foldCategory(input)]; ok {
		return name, nil
	}
	return "", types.NewBattleError(types.ErrInvalidArgument,
		fmt.Sprintf("Unknown category %q. Pick one of: %s.", strings.TrimSpace(input), strings.Join(s.rules.Categories, ", ")))
}

func (s *Service) validatePool(category string, tier int64) (string, error) {
	name, err := s.NormalizeCategory(category)
	if err != nil {
		return "", err
	}
	if !s.tiers[tier] {
		return "", types.NewBattleError(types.ErrInvalidArgument, fmt.Sprintf("There is no $%d tier.", tier))
	}
	return name, nil
}

func foldCategory(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// mapRepoErr turns repository sentinels into user-facing errors
func (s *Service) mapRepoErr(err error, phaseMessage string) error {
	var be *types.BattleError
	switch {
	case types.As(err, &be):
		return err
	case errors.Is(err, battleRepo.ErrNotFound):
		return types.WrapError(types.ErrNotFound, "", err)
	case errors.Is(err, battleRepo.ErrPhaseConflict):
		return types.WrapError(types.ErrInvalidPhase, phaseMessage, err)
	case errors.Is(err, battleRepo.ErrNotEnoughEntrants):
		return types.WrapError(types.ErrInvalidPhase,
			fmt.Sprintf("At least %d eligible entrants are needed.", MinEntrants), err)
	case errors.Is(err, walletRepo.ErrInsufficientFunds):
		return types.WrapError(types.ErrInsufficientFunds, "", err)
	case errors.Is(err, battleRepo.ErrDuplicateOpenBattle):
		wrapped := types.WrapError(types.ErrDuplicateOpenBattle, "more than one open battle in pool", err)
		s.logger.LogError(wrapped)
		return wrapped
	}
	return types.WrapError(types.ErrInternalError, "battle storage failed", err)
}
