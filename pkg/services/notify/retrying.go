package notify

import (
	"context"

	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/pkg/metrics"
	"github.com/fadedpez/trackbattle/pkg/retry"
)

// Retrying retries each call on the wrapped notifier. Fire-and-forget calls
// log the final failure and return nil; AnnounceVotingStarted returns it.
type Retrying struct {
	next    Notifier
	policy  retry.Policy
	logger  *logging.Logger
	metrics *metrics.Metrics
}

var _ Notifier = (*Retrying)(nil)

// NewRetrying wraps next with policy
func NewRetrying(next Notifier, policy retry.Policy, logger *logging.Logger, m *metrics.Metrics) *Retrying {
	if logger == nil {
		logger = logging.Default
	}
	if policy.Retryable == nil {
		policy.Retryable = retry.Temporary
	}
	return &Retrying{
		next:    next,
		policy:  policy,
		logger:  logger.With("NOTIFY"),
		metrics: m,
	}
}

func (r *Retrying) fireAndForget(ctx context.Context, op string, fn func(context.Context) error) error {
	if err := r.policy.Do(ctx, fn); err != nil {
		r.metrics.RecordAdapterFailure("notifier", op)
		r.logger.Warn("%s failed after retries: %v", op, err)
	}
	return nil
}

func (r *Retrying) AnnounceEntry(ctx context.Context, event EntryEvent) error {
	return r.fireAndForget(ctx, "announce_entry", func(ctx context.Context) error {
		return r.next.AnnounceEntry(ctx, event)
	})
}

func (r *Retrying) AnnounceVotingStarted(ctx context.Context, event VotingStartedEvent) (map[int64]string, error) {
	var refs map[int64]string
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var cerr error
		refs, cerr = r.next.AnnounceVotingStarted(ctx, event)
		return cerr
	})
	if err != nil {
		r.metrics.RecordAdapterFailure("notifier", "announce_voting_started")
		r.logger.Warn("announce_voting_started failed after retries: %v", err)
	}
	return refs, err
}

func (r *Retrying) AnnounceResult(ctx context.Context, event ResultEvent) error {
	return r.fireAndForget(ctx, "announce_result", func(ctx context.Context) error {
		return r.next.AnnounceResult(ctx, event)
	})
}

func (r *Retrying) AnnouncePoolStandings(ctx context.Context, standings []PoolStanding) error {
	return r.fireAndForget(ctx, "announce_pool_standings", func(ctx context.Context) error {
		return r.next.AnnouncePoolStandings(ctx, standings)
	})
}

func (r *Retrying) RemoveMessage(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	return r.fireAndForget(ctx, "remove_message", func(ctx context.Context) error {
		return r.next.RemoveMessage(ctx, ref)
	})
}
