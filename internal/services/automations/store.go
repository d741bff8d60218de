// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package automations

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/boxarr/boxarr/internal/models"
)

// Repository persists the rule list as a whole. The store never issues
// partial updates; every mutation rewrites the full list.
type Repository interface {
	LoadRules(ctx context.Context) ([]*models.Rule, error)
	SaveRules(ctx context.Context, rules []*models.Rule) error
}

type ruleRecord struct {
	rule    *models.Rule
	running bool
}

// Store holds the in-memory rule set and its persistence. Run state
// (running flag) lives alongside the rule record rather than in a side
// table keyed separately.
type Store struct {
	repo Repository

	mu      sync.RWMutex
	records map[string]*ruleRecord
	order   []string
}

func NewStore(repo Repository) *Store {
	return &Store{
		repo:    repo,
		records: make(map[string]*ruleRecord),
	}
}

// Load reads the persisted rule list. Entries whose action is no longer in
// the supported set are dropped silently; the pruned list is what later
// saves will persist.
func (s *Store) Load(ctx context.Context) error {
	rules, err := s.repo.LoadRules(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*ruleRecord, len(rules))
	s.order = s.order[:0]
	for _, rule := range rules {
		if !models.IsSupportedAction(rule.Action) {
			log.Debug().
				Str("ruleID", rule.ID).
				Str("action", string(rule.Action)).
				Msg("automations: pruning rule with unsupported action")
			continue
		}
		s.records[rule.ID] = &ruleRecord{rule: rule}
		s.order = append(s.order, rule.ID)
	}
	return nil
}

// List returns the rules in load/creation order.
func (s *Store) List() []*models.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Rule, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].rule.Clone())
	}
	return out
}

func (s *Store) Get(id string) (*models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, models.ErrRuleNotFound
	}
	return rec.rule.Clone(), nil
}

// CreateFromPreset instantiates a preset as a disabled rule. Dangerous
// presets require explicit confirmation before the rule is persisted.
func (s *Store) CreateFromPreset(ctx context.Context, presetID string, confirmDangerous bool) (*models.Rule, error) {
	preset, ok := models.PresetByID(presetID)
	if !ok {
		return nil, models.ErrPresetNotFound
	}
	if preset.IsDangerous && !confirmDangerous {
		return nil, models.ErrDangerousConfirmationRequired
	}

	rule := &models.Rule{
		ID:                   uuid.NewString(),
		Name:                 preset.Name,
		Enabled:              false,
		CheckIntervalMinutes: preset.CheckIntervalMinutes,
		Conditions:           append([]models.RuleCondition(nil), preset.Conditions...),
		Action:               preset.Action,
		ActionValue:          preset.ActionValue,
		Scope:                preset.Scope,
		IsDangerous:          preset.IsDangerous,
		IsCustom:             false,
		CreatedAt:            time.Now().UTC(),
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return s.insert(ctx, rule)
}

// CustomRuleParams carries the caller-supplied fields for a custom rule.
type CustomRuleParams struct {
	Name                 string
	CheckIntervalMinutes int
	Conditions           []models.RuleCondition
	Action               models.RuleAction
	ActionValue          string
	Scope                models.RuleScope
}

// CreateCustom validates and persists a caller-defined rule. Custom rules
// also start disabled; enabling is a separate deliberate step.
func (s *Store) CreateCustom(ctx context.Context, params CustomRuleParams) (*models.Rule, error) {
	rule := &models.Rule{
		ID:                   uuid.NewString(),
		Name:                 strings.TrimSpace(params.Name),
		Enabled:              false,
		CheckIntervalMinutes: params.CheckIntervalMinutes,
		Conditions:           append([]models.RuleCondition(nil), params.Conditions...),
		Action:               params.Action,
		ActionValue:          params.ActionValue,
		Scope:                params.Scope,
		IsDangerous:          models.IsDangerousAction(params.Action),
		IsCustom:             true,
		CreatedAt:            time.Now().UTC(),
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return s.insert(ctx, rule)
}

func (s *Store) insert(ctx context.Context, rule *models.Rule) (*models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rule.ID] = &ruleRecord{rule: rule}
	s.order = append(s.order, rule.ID)
	s.persistLocked(ctx)
	return rule.Clone(), nil
}

// RuleUpdate patches an existing rule. Nil fields are left untouched.
type RuleUpdate struct {
	Name                 *string
	CheckIntervalMinutes *int
	Conditions           []models.RuleCondition
	ActionValue          *string
	Scope                *models.RuleScope
}

// Update applies a partial update to a custom rule's editable fields. The
// action itself is immutable after creation; changing behavior that much
// means a new rule.
func (s *Store) Update(ctx context.Context, id string, patch RuleUpdate) (*models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, models.ErrRuleNotFound
	}

	updated := rec.rule.Clone()
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.CheckIntervalMinutes != nil {
		updated.CheckIntervalMinutes = *patch.CheckIntervalMinutes
	}
	if patch.Conditions != nil {
		updated.Conditions = append([]models.RuleCondition(nil), patch.Conditions...)
	}
	if patch.ActionValue != nil {
		updated.ActionValue = *patch.ActionValue
	}
	if patch.Scope != nil {
		updated.Scope = *patch.Scope
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	rec.rule = updated
	s.persistLocked(ctx)
	return updated.Clone(), nil
}

// Toggle enables or disables a rule. Enabling a dangerous rule needs the
// same confirmation gate as creating one from a dangerous preset.
func (s *Store) Toggle(ctx context.Context, id string, enabled, confirmDangerous bool) (*models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, models.ErrRuleNotFound
	}
	if enabled && rec.rule.IsDangerous && !confirmDangerous {
		return nil, models.ErrDangerousConfirmationRequired
	}

	rec.rule.Enabled = enabled
	s.persistLocked(ctx)
	return rec.rule.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return models.ErrRuleNotFound
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.persistLocked(ctx)
	return nil
}

// RecordRunResult writes the run outcome onto the rule. Every attempted
// run counts, failed ones included. A persistence error here is logged
// and swallowed; run history must never turn a completed run into a
// caller-visible failure.
func (s *Store) RecordRunResult(ctx context.Context, id string, ranAt time.Time, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return
	}
	at := ranAt
	rec.rule.LastRunAt = &at
	rec.rule.LastResult = result
	rec.rule.RunCount++

	if err := s.saveLocked(ctx); err != nil {
		log.Error().Err(err).Str("ruleID", id).Msg("automations: failed to persist run result")
	}
}

// tryBeginRun acquires the per-rule run lock. It returns false when the
// rule is unknown or a run is already in flight.
func (s *Store) tryBeginRun(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.running {
		return false
	}
	rec.running = true
	return true
}

func (s *Store) endRun(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[id]; ok {
		rec.running = false
	}
}

// persistLocked writes the full list through the repository. A save
// failure is logged and swallowed; the in-memory list stays authoritative
// until the next successful save, so a mutation never fails after the
// fact over a persistence problem.
func (s *Store) persistLocked(ctx context.Context) {
	if err := s.saveLocked(ctx); err != nil {
		log.Error().Err(err).Msg("automations: failed to persist rules")
	}
}

func (s *Store) saveLocked(ctx context.Context) error {
	rules := make([]*models.Rule, 0, len(s.order))
	for _, id := range s.order {
		rules = append(rules, s.records[id].rule)
	}
	return s.repo.SaveRules(ctx, rules)
}
