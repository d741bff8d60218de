// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxarr/boxarr/internal/models"
	"github.com/boxarr/boxarr/internal/services/notifications"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "boxarr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestKVRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, db.Put(ctx, "k", []byte(`{"a":1}`), time.Now().Unix()))

	value, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(value))

	// Replacement, not append.
	require.NoError(t, db.Put(ctx, "k", []byte(`{"a":2}`), time.Now().Unix()))
	value, err = db.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(value))
}

func TestDBCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "boxarr.db")

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestRuleRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewRuleRepository(db)
	ctx := context.Background()

	// Empty database yields an empty list, not an error.
	rules, err := repo.LoadRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)

	lastRun := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in := []*models.Rule{
		{
			ID:                   "r1",
			Name:                 "pause finished",
			Enabled:              true,
			CheckIntervalMinutes: 15,
			Conditions: []models.RuleCondition{
				{Field: models.FieldProgress, Operator: models.OperatorEquals, Value: "100"},
			},
			Action:     models.ActionPauseDownload,
			Scope:      models.ScopeTorrent,
			LastRunAt:  &lastRun,
			LastResult: "Processed 3 items.",
			RunCount:   12,
			CreatedAt:  lastRun.Add(-24 * time.Hour),
		},
	}
	require.NoError(t, repo.SaveRules(ctx, in))

	out, err := repo.LoadRules(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "r1", out[0].ID)
	assert.Equal(t, "pause finished", out[0].Name)
	assert.Equal(t, 12, out[0].RunCount)
	require.NotNil(t, out[0].LastRunAt)
	assert.True(t, out[0].LastRunAt.Equal(lastRun))
	require.Len(t, out[0].Conditions, 1)
	assert.Equal(t, models.FieldProgress, out[0].Conditions[0].Field)
}

func TestNotificationRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	feed, err := repo.LoadFeed(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)

	in := []*notifications.Notification{
		{
			ID:        "n1",
			Type:      notifications.EventRuleActionsApplied,
			Title:     "pause finished",
			Message:   "Processed 2 items.",
			CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, repo.SaveFeed(ctx, in))

	out, err := repo.LoadFeed(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "n1", out[0].ID)
	assert.Equal(t, notifications.EventRuleActionsApplied, out[0].Type)
}
