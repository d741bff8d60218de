// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package notifications

import "time"

type EventType string

const (
	EventRuleActionsApplied EventType = "rule_actions_applied"
	EventRuleRunFailed      EventType = "rule_run_failed"
	EventUserNotice         EventType = "user_notice"
)

type EventDefinition struct {
	Type        EventType `json:"type"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
}

var eventDefinitions = []EventDefinition{
	{Type: EventRuleActionsApplied, Label: "Rule actions applied", Description: "An automation rule affected at least one download."},
	{Type: EventRuleRunFailed, Label: "Rule run failed", Description: "An automation rule run failed (snapshot or system error)."},
	{Type: EventUserNotice, Label: "User notice", Description: "A rule with the notify action matched downloads."},
}

var eventTypeIndex = func() map[string]int {
	idx := make(map[string]int, len(eventDefinitions))
	for i, def := range eventDefinitions {
		idx[string(def.Type)] = i
	}
	return idx
}()

// EventDefinitions returns a copy of the known event catalog.
func EventDefinitions() []EventDefinition {
	out := make([]EventDefinition, len(eventDefinitions))
	copy(out, eventDefinitions)
	return out
}

// IsValidEventType reports whether value names a known event type.
func IsValidEventType(value string) bool {
	_, ok := eventTypeIndex[value]
	return ok
}

// Event is one notification dispatched through the side-channel.
type Event struct {
	Type     EventType
	Title    string
	Message  string
	RuleID   string
	RuleName string
}

// Notification is one entry in the locally persisted notification feed.
type Notification struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RuleID    string    `json:"ruleId,omitempty"`
	RuleName  string    `json:"ruleName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}
