// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/boxarr/boxarr/internal/models"
	"github.com/boxarr/boxarr/internal/services/automations"
)

type RulesHandler struct {
	store   *automations.Store
	service *automations.Service
}

func NewRulesHandler(store *automations.Store, service *automations.Service) *RulesHandler {
	return &RulesHandler{
		store:   store,
		service: service,
	}
}

func (h *RulesHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/presets", h.ListPresets)
	r.Post("/presets/{presetID}", h.CreateFromPreset)
	r.Route("/{ruleID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/toggle", h.Toggle)
		r.Post("/run", h.Run)
	})
}

type CreateRulePayload struct {
	Name                 string                 `json:"name"`
	CheckIntervalMinutes int                    `json:"checkIntervalMinutes"`
	Conditions           []models.RuleCondition `json:"conditions"`
	Action               models.RuleAction      `json:"action"`
	ActionValue          string                 `json:"actionValue"`
	Scope                models.RuleScope       `json:"scope"`
}

type UpdateRulePayload struct {
	Name                 *string                `json:"name"`
	CheckIntervalMinutes *int                   `json:"checkIntervalMinutes"`
	Conditions           []models.RuleCondition `json:"conditions"`
	ActionValue          *string                `json:"actionValue"`
	Scope                *models.RuleScope      `json:"scope"`
}

type TogglePayload struct {
	Enabled          bool `json:"enabled"`
	ConfirmDangerous bool `json:"confirmDangerous"`
}

type PresetPayload struct {
	ConfirmDangerous bool `json:"confirmDangerous"`
}

type RunResponse struct {
	Message string `json:"message"`
}

func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.store.List())
}

func (h *RulesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseRuleID(w, r)
	if !ok {
		return
	}

	rule, err := h.store.Get(id)
	if err != nil {
		respondRuleError(w, err, "Failed to load rule")
		return
	}
	RespondJSON(w, http.StatusOK, rule)
}

func (h *RulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CreateRulePayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	rule, err := h.store.CreateCustom(r.Context(), automations.CustomRuleParams{
		Name:                 payload.Name,
		CheckIntervalMinutes: payload.CheckIntervalMinutes,
		Conditions:           payload.Conditions,
		Action:               payload.Action,
		ActionValue:          payload.ActionValue,
		Scope:                payload.Scope,
	})
	if err != nil {
		respondRuleError(w, err, "Failed to create rule")
		return
	}

	RespondJSON(w, http.StatusCreated, rule)
}

func (h *RulesHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, models.Presets())
}

func (h *RulesHandler) CreateFromPreset(w http.ResponseWriter, r *http.Request) {
	presetID, ok := ParseStringParam(w, r, "presetID", "preset ID")
	if !ok {
		return
	}

	var payload PresetPayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	rule, err := h.store.CreateFromPreset(r.Context(), presetID, payload.ConfirmDangerous)
	if err != nil {
		respondRuleError(w, err, "Failed to create rule from preset")
		return
	}

	RespondJSON(w, http.StatusCreated, rule)
}

func (h *RulesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseRuleID(w, r)
	if !ok {
		return
	}

	var payload UpdateRulePayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	rule, err := h.store.Update(r.Context(), id, automations.RuleUpdate{
		Name:                 payload.Name,
		CheckIntervalMinutes: payload.CheckIntervalMinutes,
		Conditions:           payload.Conditions,
		ActionValue:          payload.ActionValue,
		Scope:                payload.Scope,
	})
	if err != nil {
		respondRuleError(w, err, "Failed to update rule")
		return
	}

	RespondJSON(w, http.StatusOK, rule)
}

func (h *RulesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseRuleID(w, r)
	if !ok {
		return
	}

	var payload TogglePayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	rule, err := h.store.Toggle(r.Context(), id, payload.Enabled, payload.ConfirmDangerous)
	if err != nil {
		respondRuleError(w, err, "Failed to toggle rule")
		return
	}

	RespondJSON(w, http.StatusOK, rule)
}

func (h *RulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseRuleID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondRuleError(w, err, "Failed to delete rule")
		return
	}

	RespondJSON(w, http.StatusNoContent, nil)
}

func (h *RulesHandler) Run(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseRuleID(w, r)
	if !ok {
		return
	}

	message, err := h.service.RunNow(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, automations.ErrManualCooldown):
			RespondError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, automations.ErrRunInProgress):
			RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, automations.ErrRuleDisabled):
			RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, models.ErrRuleNotFound):
			RespondError(w, http.StatusNotFound, "Rule not found")
		default:
			log.Error().Err(err).Str("ruleID", id).Msg("manual rule run failed")
			RespondError(w, http.StatusBadGateway, "Rule run failed: "+err.Error())
		}
		return
	}

	RespondJSON(w, http.StatusOK, RunResponse{Message: message})
}

// respondRuleError maps store errors onto HTTP statuses. Validation
// failures and missing confirmations are client errors; unknown rule or
// preset IDs are 404s.
func respondRuleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrRuleNotFound):
		RespondError(w, http.StatusNotFound, "Rule not found")
	case errors.Is(err, models.ErrPresetNotFound):
		RespondError(w, http.StatusNotFound, "Preset not found")
	case errors.Is(err, models.ErrDangerousConfirmationRequired):
		RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrRuleNameRequired),
		errors.Is(err, models.ErrUnsupportedAction),
		errors.Is(err, models.ErrInvalidScope),
		errors.Is(err, models.ErrInvalidActionScope),
		errors.Is(err, models.ErrCheckIntervalTooSmall):
		RespondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg(fallback)
		RespondError(w, http.StatusInternalServerError, fallback)
	}
}
