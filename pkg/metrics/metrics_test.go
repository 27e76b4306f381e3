package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecordEntry(t *testing.T) {
	m := New()

	m.RecordEntry("Rock", 5)
	m.RecordEntry("Rock", 5)
	m.RecordEntry("Trap", 15)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntriesTotal.WithLabelValues("Rock", "5")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntriesTotal.WithLabelValues("Trap", "15")))
}

func TestRecordCompletion(t *testing.T) {
	m := New()

	m.RecordCompletion(true, decimal.RequireFromString("17.5"), decimal.RequireFromString("7.5"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BattlesCompleted.WithLabelValues("true")))
	assert.Equal(t, 17.5, testutil.ToFloat64(m.PrizePool.WithLabelValues("winner")))
	assert.Equal(t, 7.5, testutil.ToFloat64(m.PrizePool.WithLabelValues("platform")))
}

func TestRecordSweep(t *testing.T) {
	m := New()

	m.RecordSweep("voting_deadline", nil, 0.01)
	m.RecordSweep("voting_deadline", errors.New("db locked"), 0.02)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepRuns.WithLabelValues("voting_deadline", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepRuns.WithLabelValues("voting_deadline", "error")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordEntry("Rock", 5)
		m.RecordVote("cast")
		m.RecordCompletion(false, decimal.Zero, decimal.Zero)
		m.RecordSweep("x", nil, 0)
	})
}

func TestRegistryGathers(t *testing.T) {
	m := New()
	m.RecordVote("cast")

	families, err := m.Registry().Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
