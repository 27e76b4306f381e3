package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/pkg/metrics"
	"github.com/fadedpez/trackbattle/pkg/retry"
	"github.com/fadedpez/trackbattle/pkg/services/notify"
	mock_notify "github.com/fadedpez/trackbattle/pkg/services/notify/mock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func fastPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.InitialBackoff = time.Nanosecond
	p.MaxBackoff = time.Nanosecond
	return p
}

func TestRetryingSwallowsFireAndForgetFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mock_notify.NewMockNotifier(ctrl)
	m := metrics.New()
	r := notify.NewRetrying(next, fastPolicy(), logging.Discard(), m)

	next.EXPECT().AnnounceResult(gomock.Any(), gomock.Any()).Return(errors.New("discord 502")).Times(4)

	err := r.AnnounceResult(context.Background(), notify.ResultEvent{})

	assert.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdapterFailures.WithLabelValues("notifier", "announce_result")))
}

func TestRetryingRecoversFromTransientFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mock_notify.NewMockNotifier(ctrl)
	r := notify.NewRetrying(next, fastPolicy(), logging.Discard(), nil)

	gomock.InOrder(
		next.EXPECT().AnnounceEntry(gomock.Any(), gomock.Any()).Return(errors.New("timeout")),
		next.EXPECT().AnnounceEntry(gomock.Any(), gomock.Any()).Return(nil),
	)

	assert.NoError(t, r.AnnounceEntry(context.Background(), notify.EntryEvent{}))
}

func TestRetryingReturnsVotingStartedFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mock_notify.NewMockNotifier(ctrl)
	r := notify.NewRetrying(next, fastPolicy(), logging.Discard(), nil)

	next.EXPECT().AnnounceVotingStarted(gomock.Any(), gomock.Any()).
		Return(nil, retry.Permanent(errors.New("unknown channel"))).Times(1)

	refs, err := r.AnnounceVotingStarted(context.Background(), notify.VotingStartedEvent{})

	assert.Error(t, err)
	assert.Nil(t, refs)
}

func TestRetryingSkipsEmptyRemove(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mock_notify.NewMockNotifier(ctrl)
	r := notify.NewRetrying(next, fastPolicy(), logging.Discard(), nil)

	assert.NoError(t, r.RemoveMessage(context.Background(), ""))

	next.EXPECT().RemoveMessage(gomock.Any(), "c/m").Return(nil)
	assert.NoError(t, r.RemoveMessage(context.Background(), "c/m"))
}
