// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/boxarr/boxarr/internal/services/notifications"
)

const defaultFeedLimit = 50

type NotificationsHandler struct {
	service *notifications.Service
}

func NewNotificationsHandler(service *notifications.Service) *NotificationsHandler {
	return &NotificationsHandler{service: service}
}

func (h *NotificationsHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/events", h.Events)
	r.Post("/mark-read", h.MarkAllRead)
	r.Post("/test", h.Test)
}

// Events serves the catalog of known event types so clients can label
// and filter feed entries.
func (h *NotificationsHandler) Events(w http.ResponseWriter, _ *http.Request) {
	RespondJSON(w, http.StatusOK, notifications.EventDefinitions())
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultFeedLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	RespondJSON(w, http.StatusOK, h.service.List(limit))
}

func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.service.MarkAllRead(r.Context())
	RespondJSON(w, http.StatusNoContent, nil)
}

type TestNotificationPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (h *NotificationsHandler) Test(w http.ResponseWriter, r *http.Request) {
	var payload TestNotificationPayload
	if !DecodeJSON(w, r, &payload) {
		return
	}
	if payload.Message == "" {
		payload.Message = "Test notification from boxarr"
	}

	eventType := notifications.EventUserNotice
	if payload.Type != "" {
		if !notifications.IsValidEventType(payload.Type) {
			RespondError(w, http.StatusBadRequest, "unknown event type")
			return
		}
		eventType = notifications.EventType(payload.Type)
	}

	h.service.Notify(notifications.Event{
		Type:    eventType,
		Title:   "Test",
		Message: payload.Message,
	})
	RespondJSON(w, http.StatusAccepted, nil)
}
