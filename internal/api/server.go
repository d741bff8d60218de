// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package api exposes the HTTP surface: rule management, the notification
// feed, health, and Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/boxarr/boxarr/internal/api/handlers"
	"github.com/boxarr/boxarr/internal/config"
	"github.com/boxarr/boxarr/internal/metrics"
	"github.com/boxarr/boxarr/internal/services/automations"
	"github.com/boxarr/boxarr/internal/services/notifications"
)

type Server struct {
	cfg           *config.Config
	store         *automations.Store
	service       *automations.Service
	notifications *notifications.Service
	metrics       *metrics.Manager

	httpServer *http.Server
}

func NewServer(cfg *config.Config, store *automations.Store, service *automations.Service, notificationSvc *notifications.Service, metricsManager *metrics.Manager) *Server {
	return &Server{
		cfg:           cfg,
		store:         store,
		service:       service,
		notifications: notificationSvc,
		metrics:       metricsManager,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	healthHandler := handlers.NewHealthHandler()
	rulesHandler := handlers.NewRulesHandler(s.store, s.service)
	notificationsHandler := handlers.NewNotificationsHandler(s.notifications)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Liveness)
		r.Route("/rules", rulesHandler.Routes)
		r.Route("/notifications", notificationsHandler.Routes)
	})

	if s.cfg.MetricsEnabled && s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	return r
}

// ListenAndServe blocks until ctx is canceled, then shuts the server down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
