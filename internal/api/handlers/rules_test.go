// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxarr/boxarr/internal/models"
	"github.com/boxarr/boxarr/internal/services/automations"
	"github.com/boxarr/boxarr/internal/torbox"
)

type stubRepo struct {
	rules []*models.Rule
}

func (s *stubRepo) LoadRules(context.Context) ([]*models.Rule, error) {
	return s.rules, nil
}

func (s *stubRepo) SaveRules(_ context.Context, rules []*models.Rule) error {
	s.rules = rules
	return nil
}

type stubClient struct{}

func (stubClient) ListTorrents(context.Context) ([]torbox.TorrentRecord, error) { return nil, nil }
func (stubClient) ListUsenet(context.Context) ([]torbox.UsenetRecord, error)    { return nil, nil }
func (stubClient) ListWebDownloads(context.Context) ([]torbox.WebDownloadRecord, error) {
	return nil, nil
}
func (stubClient) ControlTorrent(context.Context, int64, torbox.ControlOperation) error { return nil }
func (stubClient) ControlUsenet(context.Context, int64, torbox.ControlOperation) error  { return nil }
func (stubClient) ControlWebDownload(context.Context, int64, torbox.ControlOperation) error {
	return nil
}
func (stubClient) RequestDownloadLink(context.Context, torbox.DownloadKind, int64, int64) (string, error) {
	return "", nil
}
func (stubClient) RequestStreamLink(context.Context, torbox.DownloadKind, int64, int64) (string, error) {
	return "", nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *automations.Store) {
	t.Helper()

	store := automations.NewStore(&stubRepo{})
	require.NoError(t, store.Load(context.Background()))

	service := automations.NewService(automations.Config{}, store, stubClient{}, nil, nil)
	handler := NewRulesHandler(store, service)

	r := chi.NewRouter()
	r.Route("/api/rules", handler.Routes)
	return r, store
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRulesList_Empty(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/rules/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rules []*models.Rule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	assert.Empty(t, rules)
}

func TestRulesCreate_Valid(t *testing.T) {
	router, store := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/rules/", CreateRulePayload{
		Name:                 "pause finished",
		CheckIntervalMinutes: 15,
		Conditions: []models.RuleCondition{
			{Field: models.FieldProgress, Operator: models.OperatorEquals, Value: "100"},
		},
		Action: models.ActionPauseDownload,
		Scope:  models.ScopeTorrent,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var rule models.Rule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rule))
	assert.False(t, rule.Enabled, "new rules start disabled")
	assert.True(t, rule.IsCustom)

	require.Len(t, store.List(), 1)
}

func TestRulesCreate_InvalidActionScope(t *testing.T) {
	router, store := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/rules/", CreateRulePayload{
		Name:                 "bad",
		CheckIntervalMinutes: 15,
		Action:               models.ActionReannounceTorrent,
		Scope:                models.ScopeWeb,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.List(), "invalid rules are not persisted")
}

func TestRulesCreateFromPreset_DangerousGate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/rules/presets/delete-old-completed", PresetPayload{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/rules/presets/delete-old-completed", PresetPayload{ConfirmDangerous: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRulesCreateFromPreset_Unknown(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/rules/presets/nope", PresetPayload{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRulesPresetsList(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/rules/presets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var presets []models.Preset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &presets))
	assert.NotEmpty(t, presets)
}

func TestRulesToggle_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/rules/unknown/toggle", TogglePayload{Enabled: true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRulesRun_DisabledRuleConflicts(t *testing.T) {
	router, store := newTestRouter(t)

	rule, err := store.CreateCustom(context.Background(), automations.CustomRuleParams{
		Name:                 "pause",
		CheckIntervalMinutes: 15,
		Action:               models.ActionPauseDownload,
		Scope:                models.ScopeAll,
	})
	require.NoError(t, err)

	rec := doRequest(t, router, http.MethodPost, "/api/rules/"+rule.ID+"/run", struct{}{})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRulesRun_Enabled(t *testing.T) {
	router, store := newTestRouter(t)

	rule, err := store.CreateCustom(context.Background(), automations.CustomRuleParams{
		Name:                 "pause",
		CheckIntervalMinutes: 15,
		Action:               models.ActionPauseDownload,
		Scope:                models.ScopeAll,
	})
	require.NoError(t, err)

	_, err = store.Toggle(context.Background(), rule.ID, true, false)
	require.NoError(t, err)

	rec := doRequest(t, router, http.MethodPost, "/api/rules/"+rule.ID+"/run", struct{}{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "No matching downloads.", resp.Message)
}

func TestRulesDelete(t *testing.T) {
	router, store := newTestRouter(t)

	rule, err := store.CreateCustom(context.Background(), automations.CustomRuleParams{
		Name:                 "pause",
		CheckIntervalMinutes: 15,
		Action:               models.ActionPauseDownload,
		Scope:                models.ScopeAll,
	})
	require.NoError(t, err)

	rec := doRequest(t, router, http.MethodDelete, "/api/rules/"+rule.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.List())

	rec = doRequest(t, router, http.MethodDelete, "/api/rules/"+rule.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
