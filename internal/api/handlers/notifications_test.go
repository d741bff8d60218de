// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxarr/boxarr/internal/services/notifications"
)

type stubFeedRepo struct {
	feed []*notifications.Notification
}

func (s *stubFeedRepo) LoadFeed(context.Context) ([]*notifications.Notification, error) {
	return s.feed, nil
}

func (s *stubFeedRepo) SaveFeed(_ context.Context, feed []*notifications.Notification) error {
	s.feed = feed
	return nil
}

func newNotificationsRouter(t *testing.T) *chi.Mux {
	t.Helper()

	service := notifications.NewService(&stubFeedRepo{}, nil)
	require.NoError(t, service.Load(context.Background()))

	r := chi.NewRouter()
	r.Route("/api/notifications", NewNotificationsHandler(service).Routes)
	return r
}

func TestNotificationsEvents(t *testing.T) {
	router := newNotificationsRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/notifications/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var defs []notifications.EventDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defs))
	require.NotEmpty(t, defs)

	types := make([]notifications.EventType, 0, len(defs))
	for _, def := range defs {
		assert.NotEmpty(t, def.Label)
		types = append(types, def.Type)
	}
	assert.Contains(t, types, notifications.EventRuleActionsApplied)
	assert.Contains(t, types, notifications.EventRuleRunFailed)
	assert.Contains(t, types, notifications.EventUserNotice)
}

func TestNotificationsTest_RejectsUnknownEventType(t *testing.T) {
	router := newNotificationsRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/notifications/test", TestNotificationPayload{
		Type: "explosion",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/notifications/test", TestNotificationPayload{
		Type:    string(notifications.EventUserNotice),
		Message: "hello",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
