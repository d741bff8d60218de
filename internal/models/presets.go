// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

// Preset is an immutable rule template. Presets seed new rules at creation
// time and are never mutated or persisted per-user.
type Preset struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	CheckIntervalMinutes int             `json:"checkIntervalMinutes"`
	Conditions           []RuleCondition `json:"conditions"`
	Action               RuleAction      `json:"action"`
	ActionValue          string          `json:"actionValue,omitempty"`
	Scope                RuleScope       `json:"scope"`
	IsDangerous          bool            `json:"isDangerous"`
}

var presetDefinitions = []Preset{
	{
		ID:                   "notify-completed",
		Name:                 "Notify when a download completes",
		Description:          "Sends a notification once a download reaches 100%.",
		Category:             "notifications",
		CheckIntervalMinutes: 5,
		Conditions: []RuleCondition{
			{Field: FieldProgress, Operator: OperatorGreaterThanOrEqual, Value: "100"},
		},
		Action: ActionNotifyUser,
		Scope:  ScopeAll,
	},
	{
		ID:                   "pause-seeding-completed",
		Name:                 "Pause completed torrents",
		Description:          "Pauses torrents that have finished downloading.",
		Category:             "seeding",
		CheckIntervalMinutes: 15,
		Conditions: []RuleCondition{
			{Field: FieldProgress, Operator: OperatorGreaterThanOrEqual, Value: "100"},
		},
		Action: ActionPauseDownload,
		Scope:  ScopeTorrent,
	},
	{
		ID:                   "reannounce-stalled",
		Name:                 "Reannounce stalled torrents",
		Description:          "Reannounces torrents that have been stalled for over 30 minutes.",
		Category:             "health",
		CheckIntervalMinutes: 30,
		Conditions: []RuleCondition{
			{Field: FieldDownloadStalledTime, Operator: OperatorGreaterThan, Value: "30"},
			{Field: FieldProgress, Operator: OperatorLessThan, Value: "100"},
		},
		Action: ActionReannounceTorrent,
		Scope:  ScopeTorrent,
	},
	{
		ID:                   "resume-paused-incomplete",
		Name:                 "Resume paused incomplete downloads",
		Description:          "Resumes downloads that were paused before completing.",
		Category:             "health",
		CheckIntervalMinutes: 60,
		Conditions: []RuleCondition{
			{Field: FieldStatus, Operator: OperatorContains, Value: "paused"},
			{Field: FieldProgress, Operator: OperatorLessThan, Value: "100"},
		},
		Action: ActionResumeDownload,
		Scope:  ScopeAll,
	},
	{
		ID:                   "delete-old-completed",
		Name:                 "Delete downloads older than 30 days",
		Description:          "Removes completed downloads that are more than 30 days old. Irreversible.",
		Category:             "cleanup",
		CheckIntervalMinutes: 360,
		Conditions: []RuleCondition{
			{Field: FieldProgress, Operator: OperatorGreaterThanOrEqual, Value: "100"},
			{Field: FieldAge, Operator: OperatorGreaterThan, Value: "30"},
		},
		Action:      ActionDeleteDownload,
		Scope:       ScopeAll,
		IsDangerous: true,
	},
	{
		ID:                   "link-completed",
		Name:                 "Generate links for completed downloads",
		Description:          "Requests a download link for each download that reaches 100%.",
		Category:             "links",
		CheckIntervalMinutes: 15,
		Conditions: []RuleCondition{
			{Field: FieldProgress, Operator: OperatorGreaterThanOrEqual, Value: "100"},
		},
		Action: ActionRequestDownloadLink,
		Scope:  ScopeAll,
	},
}

var presetIndex = func() map[string]int {
	idx := make(map[string]int, len(presetDefinitions))
	for i, p := range presetDefinitions {
		idx[p.ID] = i
	}
	return idx
}()

// Presets returns a copy of the preset catalog.
func Presets() []Preset {
	out := make([]Preset, len(presetDefinitions))
	copy(out, presetDefinitions)
	return out
}

// PresetByID looks up a preset by id.
func PresetByID(id string) (Preset, bool) {
	i, ok := presetIndex[id]
	if !ok {
		return Preset{}, false
	}
	return presetDefinitions[i], true
}
