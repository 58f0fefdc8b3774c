package alerter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/lcbank/backend/internal/usecase"
)

// Subscriber receives alert messages.
type Subscriber interface {
	Notify(message string)
}

// Config holds the alerter schedule.
type Config struct {
	SweepInterval time.Duration
	AlertInterval time.Duration
}

// Alerter periodically invalidates risky loans and broadcasts alerts
// about anomalous loans and drained accounts to its subscribers.
type Alerter struct {
	loanUC  *usecase.LoanUseCase
	alertUC *usecase.AlertUseCase
	logger  zerolog.Logger
	cron    *cron.Cron
	cfg     Config

	mu          sync.RWMutex
	subscribers map[int]Subscriber
	nextID      int
}

// New creates a new Alerter.
func New(loanUC *usecase.LoanUseCase, alertUC *usecase.AlertUseCase, logger zerolog.Logger, cfg Config) *Alerter {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	return &Alerter{
		loanUC:      loanUC,
		alertUC:     alertUC,
		logger:      logger,
		cron:        c,
		cfg:         cfg,
		subscribers: make(map[int]Subscriber),
	}
}

// Subscribe registers a subscriber and returns its id for Unsubscribe.
func (a *Alerter) Subscribe(s Subscriber) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextID++
	a.subscribers[a.nextID] = s
	return a.nextID
}

// Unsubscribe removes a subscriber.
func (a *Alerter) Unsubscribe(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.subscribers, id)
}

// Start registers the jobs and begins the schedule.
func (a *Alerter) Start() error {
	if _, err := a.cron.AddFunc(fmt.Sprintf("@every %s", a.cfg.SweepInterval), a.sweep); err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}

	if _, err := a.cron.AddFunc(fmt.Sprintf("@every %s", a.cfg.AlertInterval), a.broadcast); err != nil {
		return fmt.Errorf("register alert job: %w", err)
	}

	a.cron.Start()
	a.logger.Info().
		Dur("sweep_interval", a.cfg.SweepInterval).
		Dur("alert_interval", a.cfg.AlertInterval).
		Msg("alerter started")
	return nil
}

// Stop halts the schedule and waits for running jobs to finish.
func (a *Alerter) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
	a.logger.Info().Msg("alerter stopped")
}

func (a *Alerter) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), usecase.DefaultTransactionTimeout)
	defer cancel()

	result, err := a.loanUC.MarkInvalid(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("loan sweep failed")
		return
	}

	if result.Invalidated > 0 {
		a.logger.Info().
			Int("scanned", result.Scanned).
			Int("invalidated", result.Invalidated).
			Msg("loan sweep invalidated loans")
	}
}

func (a *Alerter) broadcast() {
	ctx, cancel := context.WithTimeout(context.Background(), usecase.DefaultTransactionTimeout)
	defer cancel()

	loans, err := a.alertUC.AnomalousLoans(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("anomalous loan query failed")
		return
	}

	for _, anomaly := range loans {
		verdict := "invalid"
		if anomaly.Expired {
			verdict = "expired"
		}

		a.publish(fmt.Sprintf(
			"Loan requested by %s to %s on %s for %s LC is %s.",
			anomaly.Loan.Recipient,
			anomaly.Loan.Sender,
			anomaly.Loan.CreatedAt.Format("2006-01-02"),
			anomaly.Loan.Amount,
			verdict,
		))
	}

	profiles, err := a.alertUC.ZeroBalanceAccounts(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("zero balance query failed")
		return
	}

	for _, profile := range profiles {
		a.publish(fmt.Sprintf("%s has 0 LC in their account.", profile.Account.Username))
	}
}

func (a *Alerter) publish(message string) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, s := range a.subscribers {
		s.Notify(message)
	}
}

// LogSubscriber writes alert messages to a structured logger.
type LogSubscriber struct {
	logger zerolog.Logger
}

// NewLogSubscriber creates a LogSubscriber.
func NewLogSubscriber(logger zerolog.Logger) *LogSubscriber {
	return &LogSubscriber{logger: logger}
}

// Notify implements Subscriber.
func (s *LogSubscriber) Notify(message string) {
	s.logger.Warn().Str("alert", message).Msg("alert")
}
