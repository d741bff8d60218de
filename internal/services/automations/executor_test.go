// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package automations

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxarr/boxarr/internal/models"
	"github.com/boxarr/boxarr/internal/services/notifications"
	"github.com/boxarr/boxarr/internal/torbox"
)

type controlCall struct {
	kind torbox.DownloadKind
	id   int64
	op   torbox.ControlOperation
}

type fakeController struct {
	mu      sync.Mutex
	calls   []controlCall
	links   []int64
	failIDs map[int64]error
}

func (f *fakeController) record(kind torbox.DownloadKind, id int64, op torbox.ControlOperation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failIDs[id]; ok {
		return err
	}
	f.calls = append(f.calls, controlCall{kind: kind, id: id, op: op})
	return nil
}

func (f *fakeController) ControlTorrent(_ context.Context, id int64, op torbox.ControlOperation) error {
	return f.record(torbox.KindTorrent, id, op)
}

func (f *fakeController) ControlUsenet(_ context.Context, id int64, op torbox.ControlOperation) error {
	return f.record(torbox.KindUsenet, id, op)
}

func (f *fakeController) ControlWebDownload(_ context.Context, id int64, op torbox.ControlOperation) error {
	return f.record(torbox.KindWeb, id, op)
}

func (f *fakeController) RequestDownloadLink(_ context.Context, _ torbox.DownloadKind, id int64, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failIDs[id]; ok {
		return "", err
	}
	f.links = append(f.links, id)
	return "https://store.example/dl", nil
}

func (f *fakeController) RequestStreamLink(_ context.Context, _ torbox.DownloadKind, id int64, _ int64) (string, error) {
	return f.RequestDownloadLink(context.Background(), torbox.KindTorrent, id, 0)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (f *fakeNotifier) Notify(event notifications.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func TestExecute_NoTargets(t *testing.T) {
	executor := NewExecutor(&fakeController{}, nil)
	rule := &models.Rule{Action: models.ActionPauseDownload}

	res, err := executor.Execute(context.Background(), rule, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Affected)
	assert.Equal(t, "No matching downloads.", res.Message)
}

func TestExecute_NotifySingleMatch(t *testing.T) {
	controller := &fakeController{}
	notifier := &fakeNotifier{}
	executor := NewExecutor(controller, notifier)

	rule := &models.Rule{
		ID:     "r1",
		Name:   "completed notice",
		Action: models.ActionNotifyUser,
		Scope:  models.ScopeAll,
	}

	res, err := executor.Execute(context.Background(), rule, []Target{
		{Source: models.ScopeTorrent, SourceID: 1, Progress: 1.0},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Affected)
	assert.Equal(t, "Processed 1 item.", res.Message)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, notifications.EventUserNotice, notifier.events[0].Type)
	assert.Equal(t, "completed notice", notifier.events[0].Title)
	assert.Empty(t, controller.calls, "notify_user makes no remote calls")
}

func TestExecute_ReannounceSkipsNonTorrents(t *testing.T) {
	controller := &fakeController{}
	executor := NewExecutor(controller, &fakeNotifier{})

	rule := &models.Rule{
		Name:   "reannounce stalled",
		Action: models.ActionReannounceTorrent,
		Scope:  models.ScopeTorrent,
	}

	res, err := executor.Execute(context.Background(), rule, []Target{
		{Source: models.ScopeUsenet, SourceID: 10},
		{Source: models.ScopeTorrent, SourceID: 20},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Affected)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, controller.calls, 1)
	assert.Equal(t, int64(20), controller.calls[0].id)
	assert.Equal(t, torbox.OpReannounce, controller.calls[0].op)
}

func TestExecute_ControlDispatchesPerKind(t *testing.T) {
	controller := &fakeController{}
	executor := NewExecutor(controller, &fakeNotifier{})

	rule := &models.Rule{Name: "pause all", Action: models.ActionPauseDownload, Scope: models.ScopeAll}

	res, err := executor.Execute(context.Background(), rule, []Target{
		{Source: models.ScopeTorrent, SourceID: 1},
		{Source: models.ScopeUsenet, SourceID: 2},
		{Source: models.ScopeWeb, SourceID: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Affected)
	require.Len(t, controller.calls, 3)
	assert.Equal(t, torbox.KindTorrent, controller.calls[0].kind)
	assert.Equal(t, torbox.KindUsenet, controller.calls[1].kind)
	assert.Equal(t, torbox.KindWeb, controller.calls[2].kind)
	for _, call := range controller.calls {
		assert.Equal(t, torbox.OpPause, call.op)
	}
}

func TestExecute_PerTargetFailureIsolated(t *testing.T) {
	controller := &fakeController{
		failIDs: map[int64]error{2: errors.New("remote refused")},
	}
	executor := NewExecutor(controller, &fakeNotifier{})

	rule := &models.Rule{Name: "resume", Action: models.ActionResumeDownload, Scope: models.ScopeAll}

	res, err := executor.Execute(context.Background(), rule, []Target{
		{Source: models.ScopeTorrent, SourceID: 1},
		{Source: models.ScopeTorrent, SourceID: 2},
		{Source: models.ScopeTorrent, SourceID: 3},
	})
	require.NoError(t, err, "a failing target must not abort the batch")

	assert.Equal(t, 2, res.Affected)
	assert.Equal(t, 1, res.Skipped, "failures are absorbed into the skip count")
	assert.Equal(t, "Processed 2 items.", res.Message)
}

func TestExecute_LinkRequiresKnownFiles(t *testing.T) {
	controller := &fakeController{}
	executor := NewExecutor(controller, &fakeNotifier{})

	rule := &models.Rule{Name: "grab links", Action: models.ActionRequestDownloadLink, Scope: models.ScopeAll}

	res, err := executor.Execute(context.Background(), rule, []Target{
		{Source: models.ScopeTorrent, SourceID: 1, FileIDs: []int64{100}},
		{Source: models.ScopeTorrent, SourceID: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Affected)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []int64{1}, controller.links)
}

func TestExecute_NoNotificationWhenNothingAffected(t *testing.T) {
	notifier := &fakeNotifier{}
	executor := NewExecutor(&fakeController{}, notifier)

	rule := &models.Rule{Name: "reannounce", Action: models.ActionReannounceTorrent, Scope: models.ScopeTorrent}

	res, err := executor.Execute(context.Background(), rule, []Target{
		{Source: models.ScopeUsenet, SourceID: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Affected)
	assert.Empty(t, notifier.events)
}
