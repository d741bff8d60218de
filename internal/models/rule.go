// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"fmt"
	"strings"
	"time"
)

// RuleScope restricts which download kind a rule applies to.
type RuleScope string

const (
	ScopeAll     RuleScope = "all"
	ScopeTorrent RuleScope = "torrent"
	ScopeUsenet  RuleScope = "usenet"
	ScopeWeb     RuleScope = "web"
)

// RuleAction is the side effect a rule triggers for each matched download.
type RuleAction string

const (
	ActionDeleteDownload      RuleAction = "delete_download"
	ActionPauseDownload       RuleAction = "pause_download"
	ActionResumeDownload      RuleAction = "resume_download"
	ActionReannounceTorrent   RuleAction = "reannounce_torrent"
	ActionRequestDownloadLink RuleAction = "request_download_link"
	ActionCreateStream        RuleAction = "create_stream"
	ActionNotifyUser          RuleAction = "notify_user"
)

// supportedActions is the closed action set. Persisted rules whose action is
// not in this set are dropped at load time rather than surfaced as errors.
var supportedActions = map[RuleAction]struct{}{
	ActionDeleteDownload:      {},
	ActionPauseDownload:       {},
	ActionResumeDownload:      {},
	ActionReannounceTorrent:   {},
	ActionRequestDownloadLink: {},
	ActionCreateStream:        {},
	ActionNotifyUser:          {},
}

// IsSupportedAction reports whether action belongs to the closed action set.
func IsSupportedAction(action RuleAction) bool {
	_, ok := supportedActions[action]
	return ok
}

// IsDangerousAction reports whether action can cause irreversible loss.
// Enabling or creating a rule with a dangerous action requires explicit
// confirmation from the caller.
func IsDangerousAction(action RuleAction) bool {
	return action == ActionDeleteDownload
}

// ConditionField identifies a normalized download field a condition tests.
type ConditionField string

const (
	// Direct pass-through fields
	FieldName          ConditionField = "name"
	FieldProgress      ConditionField = "progress"
	FieldEta           ConditionField = "eta"
	FieldDownloadSpeed ConditionField = "current_download_speed"
	FieldStatus        ConditionField = "status"
	FieldPeers         ConditionField = "peers"
	FieldRatio         ConditionField = "ratio"
	FieldAvailability  ConditionField = "availability"
	FieldTracker       ConditionField = "tracker"
	FieldSize          ConditionField = "size"

	// Derived fields (computed from timestamps at evaluation time)
	FieldDownloadStalledTime ConditionField = "download_stalled_time"
	FieldUploadStalledTime   ConditionField = "upload_stalled_time"
	FieldAge                 ConditionField = "age"
)

// ConditionOperator compares a resolved field value against a condition value.
type ConditionOperator string

const (
	OperatorEquals             ConditionOperator = "equals"
	OperatorNotEquals          ConditionOperator = "not_equals"
	OperatorGreaterThan        ConditionOperator = "greater_than"
	OperatorLessThan           ConditionOperator = "less_than"
	OperatorGreaterThanOrEqual ConditionOperator = "greater_than_or_equal"
	OperatorLessThanOrEqual    ConditionOperator = "less_than_or_equal"
	OperatorContains           ConditionOperator = "contains"
)

// RuleCondition is one predicate in a rule's AND-joined condition list.
// A condition whose value is empty or whitespace-only is vacuously true,
// so a rule can be saved mid-edit without rejecting everything.
type RuleCondition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

// Rule is a persisted user-defined automation: a condition list, an action,
// and a schedule. Rules never run unless explicitly enabled.
type Rule struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Enabled              bool            `json:"enabled"`
	CheckIntervalMinutes int             `json:"checkIntervalMinutes"`
	Conditions           []RuleCondition `json:"conditions"`
	Action               RuleAction      `json:"action"`
	ActionValue          string          `json:"actionValue,omitempty"` // reserved, unused by current actions
	Scope                RuleScope       `json:"scope"`
	IsDangerous          bool            `json:"isDangerous"`
	IsCustom             bool            `json:"isCustom"`
	LastRunAt            *time.Time      `json:"lastRunAt,omitempty"`
	LastResult           string          `json:"lastResult,omitempty"`
	RunCount             int             `json:"runCount"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// Clone returns a deep copy so callers can't mutate stored state.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	cloned := *r
	if r.LastRunAt != nil {
		t := *r.LastRunAt
		cloned.LastRunAt = &t
	}
	if r.Conditions != nil {
		cloned.Conditions = make([]RuleCondition, len(r.Conditions))
		copy(cloned.Conditions, r.Conditions)
	}
	return &cloned
}

// Validate checks the invariants every rule must satisfy before it is
// persisted or enabled.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrRuleNameRequired
	}
	if !IsSupportedAction(r.Action) {
		return fmt.Errorf("%w: %s", ErrUnsupportedAction, r.Action)
	}
	if err := ValidateActionScope(r.Action, r.Scope); err != nil {
		return err
	}
	if r.CheckIntervalMinutes < MinCheckIntervalMinutes {
		return ErrCheckIntervalTooSmall
	}
	return nil
}

// MinCheckIntervalMinutes is the smallest accepted per-rule check interval.
const MinCheckIntervalMinutes = 1

// ValidateActionScope rejects action/scope combinations that are meaningless.
// Reannounce only makes sense for torrents; usenet and web downloads have no
// tracker to reannounce to.
func ValidateActionScope(action RuleAction, scope RuleScope) error {
	switch scope {
	case ScopeAll, ScopeTorrent, ScopeUsenet, ScopeWeb:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidScope, scope)
	}
	if action == ActionReannounceTorrent && scope != ScopeTorrent {
		return fmt.Errorf("%w: %s requires scope %s", ErrInvalidActionScope, action, ScopeTorrent)
	}
	return nil
}
