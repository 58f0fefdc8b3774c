package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsAppended *prometheus.CounterVec
	BalanceCacheHits     prometheus.Counter
	BalanceReplays       prometheus.Counter
	ChainVerifications   prometheus.Counter
	ChainFailures        prometheus.Counter

	// Loan metrics
	LoanTransitions  *prometheus.CounterVec
	SweepRuns        prometheus.Counter
	LoansInvalidated prometheus.Counter

	// Account metrics
	AccountsRegistered prometheus.Counter
	AuthAttempts       *prometheus.CounterVec

	// Alert metrics
	AlertsEmitted *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TransactionsAppended: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lcbank_transactions_appended_total",
				Help: "Total number of ledger transactions appended by kind",
			},
			[]string{"kind"},
		),
		BalanceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lcbank_balance_cache_hits_total",
			Help: "Total number of balance reads served from cache",
		}),
		BalanceReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lcbank_balance_replays_total",
			Help: "Total number of balances derived by full ledger replay",
		}),
		ChainVerifications: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lcbank_chain_verifications_total",
			Help: "Total number of full chain integrity checks",
		}),
		ChainFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lcbank_chain_failures_total",
			Help: "Total number of failed chain integrity checks",
		}),

		LoanTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lcbank_loan_transitions_total",
				Help: "Total number of loan state transitions by type",
			},
			[]string{"transition"},
		),
		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lcbank_loan_sweep_runs_total",
			Help: "Total number of invalid-loan sweep runs",
		}),
		LoansInvalidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lcbank_loans_invalidated_total",
			Help: "Total number of loans marked invalid by the sweep",
		}),

		AccountsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lcbank_accounts_registered_total",
			Help: "Total number of accounts registered",
		}),
		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lcbank_auth_attempts_total",
				Help: "Total authentication attempts by status",
			},
			[]string{"status"},
		),

		AlertsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lcbank_alerts_emitted_total",
				Help: "Total alerts emitted by category",
			},
			[]string{"category"},
		),
	}
}
