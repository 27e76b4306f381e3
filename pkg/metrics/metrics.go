// Package metrics exposes Prometheus metrics for battles, the ledger and adapters.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Metrics collects trackbattle's Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	EntriesTotal     *prometheus.CounterVec
	EntryRejections  *prometheus.CounterVec
	RemovalsTotal    *prometheus.CounterVec
	VotesTotal       *prometheus.CounterVec
	BattlePhase      *prometheus.CounterVec
	BattlesCompleted *prometheus.CounterVec
	PrizePool        *prometheus.CounterVec
	PoolTotal        *prometheus.GaugeVec

	LedgerOps       *prometheus.CounterVec
	PurchasesTotal  *prometheus.CounterVec
	AdapterFailures *prometheus.CounterVec
	SweepRuns       *prometheus.CounterVec
	SweepDuration   *prometheus.HistogramVec
	CommandsTotal   *prometheus.CounterVec
}

// New creates metrics on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		EntriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_entries_total", Help: "Paid entries admitted"},
			[]string{"category", "tier"},
		),
		EntryRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_entry_rejections_total", Help: "Entries rejected, by reason"},
			[]string{"reason"},
		),
		RemovalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_removals_total", Help: "Entrants removed with refund"},
			[]string{"category", "tier"},
		),
		VotesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_votes_total", Help: "Vote operations, by outcome"},
			[]string{"outcome"},
		),
		BattlePhase: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_battle_transitions_total", Help: "Battle state transitions"},
			[]string{"to"},
		),
		BattlesCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_battles_completed_total", Help: "Completed battles"},
			[]string{"has_winner"},
		),
		PrizePool: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_prize_coins_total", Help: "Coins split at completion"},
			[]string{"share"},
		),
		PoolTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "trackbattle_pool_total_coins", Help: "Current pool total per pool"},
			[]string{"category", "tier"},
		),
		LedgerOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_ledger_operations_total", Help: "Ledger debits and credits"},
			[]string{"type", "outcome"},
		),
		PurchasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_purchases_total", Help: "Coin purchases, by provider and stage"},
			[]string{"provider", "stage"},
		),
		AdapterFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_adapter_failures_total", Help: "Adapter calls that failed after retries"},
			[]string{"adapter", "operation"},
		),
		SweepRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_sweep_runs_total", Help: "Scheduled sweep runs"},
			[]string{"task", "outcome"},
		),
		SweepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trackbattle_sweep_duration_seconds",
				Help:    "Scheduled sweep duration",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"task"},
		),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trackbattle_commands_total", Help: "Commands dispatched"},
			[]string{"command", "source", "code"},
		),
	}

	m.registry.MustRegister(
		m.EntriesTotal,
		m.EntryRejections,
		m.RemovalsTotal,
		m.VotesTotal,
		m.BattlePhase,
		m.BattlesCompleted,
		m.PrizePool,
		m.PoolTotal,
		m.LedgerOps,
		m.PurchasesTotal,
		m.AdapterFailures,
		m.SweepRuns,
		m.SweepDuration,
		m.CommandsTotal,
	)
	return m
}

// Registry returns the registry to serve on /metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordEntry(category string, tier int64) {
	if m == nil {
		return
	}
	m.EntriesTotal.WithLabelValues(category, strconv.FormatInt(tier, 10)).Inc()
}

func (m *Metrics) RecordEntryRejected(reason string) {
	if m == nil {
		return
	}
	m.EntryRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordRemoval(category string, tier int64) {
	if m == nil {
		return
	}
	m.RemovalsTotal.WithLabelValues(category, strconv.FormatInt(tier, 10)).Inc()
}

func (m *Metrics) RecordVote(outcome string) {
	if m == nil {
		return
	}
	m.VotesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordTransition(to string) {
	if m == nil {
		return
	}
	m.BattlePhase.WithLabelValues(to).Inc()
}

// RecordCompletion counts a completed battle and its split
func (m *Metrics) RecordCompletion(hasWinner bool, payout, fee decimal.Decimal) {
	if m == nil {
		return
	}
	m.BattlesCompleted.WithLabelValues(strconv.FormatBool(hasWinner)).Inc()
	m.PrizePool.WithLabelValues("winner").Add(DecimalToFloat64(payout))
	m.PrizePool.WithLabelValues("platform").Add(DecimalToFloat64(fee))
}

func (m *Metrics) SetPoolTotal(category string, tier, total int64) {
	if m == nil {
		return
	}
	m.PoolTotal.WithLabelValues(category, strconv.FormatInt(tier, 10)).Set(float64(total))
}

func (m *Metrics) RecordLedger(txType, outcome string) {
	if m == nil {
		return
	}
	m.LedgerOps.WithLabelValues(txType, outcome).Inc()
}

func (m *Metrics) RecordPurchase(provider, stage string) {
	if m == nil {
		return
	}
	m.PurchasesTotal.WithLabelValues(provider, stage).Inc()
}

func (m *Metrics) RecordAdapterFailure(adapter, operation string) {
	if m == nil {
		return
	}
	m.AdapterFailures.WithLabelValues(adapter, operation).Inc()
}

func (m *Metrics) RecordSweep(task string, err error, durationSec float64) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SweepRuns.WithLabelValues(task, outcome).Inc()
	m.SweepDuration.WithLabelValues(task).Observe(durationSec)
}

func (m *Metrics) RecordCommand(command, source, code string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, source, code).Inc()
}

// DecimalToFloat64 converts a decimal for gauge and counter values
func DecimalToFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
