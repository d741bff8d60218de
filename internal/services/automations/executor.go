// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package automations

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/boxarr/boxarr/internal/models"
	"github.com/boxarr/boxarr/internal/services/notifications"
	"github.com/boxarr/boxarr/internal/torbox"
)

// DownloadController is the subset of the remote API the executor needs.
type DownloadController interface {
	ControlTorrent(ctx context.Context, id int64, op torbox.ControlOperation) error
	ControlUsenet(ctx context.Context, id int64, op torbox.ControlOperation) error
	ControlWebDownload(ctx context.Context, id int64, op torbox.ControlOperation) error
	RequestDownloadLink(ctx context.Context, kind torbox.DownloadKind, id int64, fileID int64) (string, error)
	RequestStreamLink(ctx context.Context, kind torbox.DownloadKind, id int64, fileID int64) (string, error)
}

// DownloadClient is the full capability surface consumed by the engine.
type DownloadClient interface {
	DownloadLister
	DownloadController
}

// Result summarizes one rule execution over a matched target set.
type Result struct {
	Affected int
	Skipped  int
	Message  string
}

// actionHandler is one variant of the closed action set. Each variant
// carries only the applicability guard and the API call it needs. A guard
// miss skips the target silently; it is not an error.
type actionHandler interface {
	guard(t Target) bool
	apply(ctx context.Context, t Target) error
}

// controlAction covers pause, resume, and delete: the guard always passes
// and the operation dispatches to the kind-appropriate control endpoint.
type controlAction struct {
	client DownloadController
	op     torbox.ControlOperation
}

func (a controlAction) guard(Target) bool { return true }

func (a controlAction) apply(ctx context.Context, t Target) error {
	switch t.Source {
	case models.ScopeTorrent:
		return a.client.ControlTorrent(ctx, t.SourceID, a.op)
	case models.ScopeUsenet:
		return a.client.ControlUsenet(ctx, t.SourceID, a.op)
	default:
		return a.client.ControlWebDownload(ctx, t.SourceID, a.op)
	}
}

// reannounceAction only applies to torrents. The guard is a second layer
// beyond the rule-level scope invariant, defending against a manually
// mutated scope in persisted data.
type reannounceAction struct {
	client DownloadController
}

func (a reannounceAction) guard(t Target) bool { return t.Source == models.ScopeTorrent }

func (a reannounceAction) apply(ctx context.Context, t Target) error {
	return a.client.ControlTorrent(ctx, t.SourceID, torbox.OpReannounce)
}

// linkAction requests a download or stream link for the first known file.
// Downloads that have not enumerated files yet are skipped without error.
type linkAction struct {
	client DownloadController
	stream bool
}

func (a linkAction) guard(t Target) bool { return len(t.FileIDs) > 0 }

func (a linkAction) apply(ctx context.Context, t Target) error {
	var err error
	if a.stream {
		_, err = a.client.RequestStreamLink(ctx, t.Kind(), t.SourceID, t.FileIDs[0])
	} else {
		_, err = a.client.RequestDownloadLink(ctx, t.Kind(), t.SourceID, t.FileIDs[0])
	}
	return err
}

// notifyAction makes no remote call; the side effect is the notification
// appended after the run.
type notifyAction struct{}

func (notifyAction) guard(Target) bool { return true }

func (notifyAction) apply(context.Context, Target) error { return nil }

// Executor applies a rule's action to each matched target sequentially,
// isolating per-target failures.
type Executor struct {
	client   DownloadController
	notifier notifications.Notifier
}

func NewExecutor(client DownloadController, notifier notifications.Notifier) *Executor {
	return &Executor{client: client, notifier: notifier}
}

func (e *Executor) handlerFor(action models.RuleAction) (actionHandler, error) {
	switch action {
	case models.ActionPauseDownload:
		return controlAction{client: e.client, op: torbox.OpPause}, nil
	case models.ActionResumeDownload:
		return controlAction{client: e.client, op: torbox.OpResume}, nil
	case models.ActionDeleteDownload:
		return controlAction{client: e.client, op: torbox.OpDelete}, nil
	case models.ActionReannounceTorrent:
		return reannounceAction{client: e.client}, nil
	case models.ActionRequestDownloadLink:
		return linkAction{client: e.client}, nil
	case models.ActionCreateStream:
		return linkAction{client: e.client, stream: true}, nil
	case models.ActionNotifyUser:
		return notifyAction{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedAction, action)
	}
}

// Execute runs the rule's action over the matched targets. One target's
// failure never aborts the batch; a failed call and a guard skip both end
// up uncounted, indistinguishable in the aggregate.
func (e *Executor) Execute(ctx context.Context, rule *models.Rule, targets []Target) (Result, error) {
	if len(targets) == 0 {
		return Result{Message: "No matching downloads."}, nil
	}

	handler, err := e.handlerFor(rule.Action)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, target := range targets {
		if !handler.guard(target) {
			res.Skipped++
			continue
		}
		if err := handler.apply(ctx, target); err != nil {
			log.Warn().
				Err(err).
				Str("rule", rule.Name).
				Str("action", string(rule.Action)).
				Str("source", string(target.Source)).
				Int64("sourceID", target.SourceID).
				Msg("automations: action failed for target")
			res.Skipped++
			continue
		}
		res.Affected++
	}

	res.Message = formatProcessed(res.Affected)

	if res.Affected > 0 && e.notifier != nil {
		eventType := notifications.EventRuleActionsApplied
		if rule.Action == models.ActionNotifyUser {
			eventType = notifications.EventUserNotice
		}
		e.notifier.Notify(notifications.Event{
			Type:     eventType,
			Title:    rule.Name,
			Message:  res.Message,
			RuleID:   rule.ID,
			RuleName: rule.Name,
		})
	}

	return res, nil
}

func formatProcessed(n int) string {
	if n == 1 {
		return "Processed 1 item."
	}
	return fmt.Sprintf("Processed %d items.", n)
}
