// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package automations

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/boxarr/boxarr/internal/metrics/collector"
	"github.com/boxarr/boxarr/internal/models"
	"github.com/boxarr/boxarr/internal/services/notifications"
)

var (
	ErrManualCooldown = errors.New("rule was run recently, try again shortly")
	ErrRunInProgress  = errors.New("rule run already in progress")
	ErrRuleDisabled   = errors.New("rule is disabled")
)

type Config struct {
	TickInterval   time.Duration
	ManualCooldown time.Duration
}

func DefaultConfig() Config {
	return Config{
		TickInterval:   30 * time.Second,
		ManualCooldown: 30 * time.Second,
	}
}

// Service drives rule execution. A single ticker wakes the scheduler; each
// wake-up checks every enabled rule's own interval against its last run.
type Service struct {
	cfg      Config
	store    *Store
	client   DownloadClient
	executor *Executor
	notifier notifications.Notifier
	metrics  *collector.AutomationCollector

	now   func() time.Time
	ticks <-chan time.Time
}

type Option func(*Service)

// WithClock replaces the wall clock. Tests use it to make due checks and
// cooldowns deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTickSource replaces the internal ticker with an external channel.
func WithTickSource(ticks <-chan time.Time) Option {
	return func(s *Service) { s.ticks = ticks }
}

func NewService(cfg Config, store *Store, client DownloadClient, notifier notifications.Notifier, metrics *collector.AutomationCollector, opts ...Option) *Service {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.ManualCooldown <= 0 {
		cfg.ManualCooldown = DefaultConfig().ManualCooldown
	}

	s := &Service{
		cfg:      cfg,
		store:    store,
		client:   client,
		executor: NewExecutor(client, notifier),
		notifier: notifier,
		metrics:  metrics,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the scheduler loop. It returns immediately; the loop
// stops when ctx is canceled.
func (s *Service) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Service) loop(ctx context.Context) {
	ticks := s.ticks
	if ticks == nil {
		ticker := time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	log.Debug().Dur("tickInterval", s.cfg.TickInterval).Msg("automations: scheduler started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("automations: scheduler stopped")
			return
		case <-ticks:
			s.runDue(ctx)
		}
	}
}

// runDue walks the rule list in store order and launches a run for every
// enabled rule whose interval has elapsed. A rule that has never run is
// immediately due.
func (s *Service) runDue(ctx context.Context) {
	now := s.now()
	for _, rule := range s.store.List() {
		if !rule.Enabled {
			continue
		}
		if rule.LastRunAt != nil {
			interval := time.Duration(rule.CheckIntervalMinutes) * time.Minute
			if now.Sub(*rule.LastRunAt) < interval {
				continue
			}
		}
		if !s.store.tryBeginRun(rule.ID) {
			continue
		}
		rule := rule
		go func() {
			if _, err := s.executeRun(ctx, rule, "scheduled"); err != nil {
				log.Warn().Err(err).Str("rule", rule.Name).Msg("automations: scheduled run failed")
			}
		}()
	}
}

// RunNow triggers a single rule outside its schedule. Disabled rules are
// rejected, as are triggers inside the manual cooldown window or while a
// run is in flight. The outcome message is returned synchronously.
func (s *Service) RunNow(ctx context.Context, id string) (string, error) {
	rule, err := s.store.Get(id)
	if err != nil {
		return "", err
	}
	if !rule.Enabled {
		return "", ErrRuleDisabled
	}
	if rule.LastRunAt != nil && s.now().Sub(*rule.LastRunAt) < s.cfg.ManualCooldown {
		if s.metrics != nil {
			s.metrics.GetManualRunThrottledTotal(rule.ID, rule.Name).Inc()
		}
		return "", ErrManualCooldown
	}
	if !s.store.tryBeginRun(rule.ID) {
		return "", ErrRunInProgress
	}
	return s.executeRun(ctx, rule, "manual")
}

// executeRun holds the run lock on entry and releases it on return. Every
// attempt, successful or not, ends with a RecordRunResult so the rule's
// history never skips a run.
func (s *Service) executeRun(ctx context.Context, rule *models.Rule, trigger string) (string, error) {
	defer s.store.endRun(rule.ID)

	if s.metrics != nil {
		s.metrics.GetRuleRunTotal(rule.ID, rule.Name, trigger).Inc()
	}

	ranAt := s.now()
	targets, err := BuildTargets(ctx, s.client, ranAt)
	if err != nil {
		return s.recordFailure(ctx, rule, ranAt, err)
	}

	evalCtx := &EvalContext{Now: ranAt}
	matched := make([]Target, 0, len(targets))
	for _, target := range targets {
		if Matches(rule, target, evalCtx) {
			matched = append(matched, target)
		}
	}
	if s.metrics != nil {
		s.metrics.GetRuleRunMatchedTotal(rule.ID, rule.Name).Add(float64(len(matched)))
	}

	res, err := s.executor.Execute(ctx, rule, matched)
	if err != nil {
		return s.recordFailure(ctx, rule, ranAt, err)
	}

	if s.metrics != nil && res.Affected > 0 {
		s.metrics.GetRuleRunActionTotal(rule.ID, rule.Name).
			With(map[string]string{"action": string(rule.Action)}).
			Add(float64(res.Affected))
	}

	log.Debug().
		Str("rule", rule.Name).
		Str("trigger", trigger).
		Int("matched", len(matched)).
		Int("affected", res.Affected).
		Int("skipped", res.Skipped).
		Msg("automations: rule run complete")

	s.store.RecordRunResult(ctx, rule.ID, ranAt, res.Message)
	return res.Message, nil
}

// recordFailure writes the failed attempt into the rule's run history and
// pushes a rule_run_failed event through the notification side-channel.
func (s *Service) recordFailure(ctx context.Context, rule *models.Rule, ranAt time.Time, cause error) (string, error) {
	result := "Failed: " + cause.Error()
	s.store.RecordRunResult(ctx, rule.ID, ranAt, result)
	if s.metrics != nil {
		s.metrics.GetRuleRunFailureTotal(rule.ID, rule.Name).Inc()
	}
	if s.notifier != nil {
		s.notifier.Notify(notifications.Event{
			Type:     notifications.EventRuleRunFailed,
			Title:    rule.Name,
			Message:  result,
			RuleID:   rule.ID,
			RuleName: rule.Name,
		})
	}
	return result, cause
}
