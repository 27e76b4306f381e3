package scheduler

import (
	"context"
	"time"

	"github.com/fadedpez/trackbattle/internal/logging"
)

// Task names registered by RegisterSweeps
const (
	TaskVotingDeadline = "voting_deadline"
	TaskPoolPromotion  = "pool_promotion"
	TaskLiveStats      = "live_stats"
)

// BattleSweeper is the part of the battle service driven by the clock
type BattleSweeper interface {
	EndExpired(ctx context.Context) (int, error)
	PromoteEligible(ctx context.Context) (int, error)
	BroadcastStandings(ctx context.Context) error
}

// SweepIntervals configures how often each sweep runs
type SweepIntervals struct {
	Deadline  time.Duration
	Promotion time.Duration
	Stats     time.Duration
}

// DefaultSweepIntervals are 1 minute, 24 hours and 5 minutes
func DefaultSweepIntervals() SweepIntervals {
	return SweepIntervals{
		Deadline:  time.Minute,
		Promotion: 24 * time.Hour,
		Stats:     5 * time.Minute,
	}
}

// RegisterSweeps adds the battle sweeps to s
func RegisterSweeps(s *Scheduler, sweeper BattleSweeper, intervals SweepIntervals, logger *logging.Logger) {
	log := logger.With("SWEEP")

	s.AddTask(TaskVotingDeadline, intervals.Deadline, func(ctx context.Context) error {
		n, err := sweeper.EndExpired(ctx)
		if n > 0 {
			log.Info("Ended %d battles past their voting deadline", n)
		}
		return err
	})

	s.AddTask(TaskPoolPromotion, intervals.Promotion, func(ctx context.Context) error {
		n, err := sweeper.PromoteEligible(ctx)
		if n > 0 {
			log.Info("Started voting on %d battles", n)
		}
		return err
	}, SkipStartup())

	if intervals.Stats > 0 {
		s.AddTask(TaskLiveStats, intervals.Stats, sweeper.BroadcastStandings)
	}
}
