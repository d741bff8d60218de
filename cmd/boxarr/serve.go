// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/boxarr/boxarr/internal/api"
	"github.com/boxarr/boxarr/internal/buildinfo"
	"github.com/boxarr/boxarr/internal/config"
	"github.com/boxarr/boxarr/internal/database"
	"github.com/boxarr/boxarr/internal/logger"
	"github.com/boxarr/boxarr/internal/metrics"
	"github.com/boxarr/boxarr/internal/services/automations"
	"github.com/boxarr/boxarr/internal/services/notifications"
	"github.com/boxarr/boxarr/internal/torbox"
)

func RunServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the boxarr server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, err := config.New(configPath)
			if err != nil {
				return err
			}
			cfg := appCfg.Config

			logger.Setup(cfg)
			log.Info().
				Str("version", buildinfo.Version).
				Str("commit", buildinfo.Commit).
				Msg("starting boxarr")

			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := database.New(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			notificationSvc := notifications.NewService(database.NewNotificationRepository(db), cfg.NotificationURLs)
			if err := notificationSvc.Load(ctx); err != nil {
				return err
			}
			notificationSvc.Start(ctx)

			store := automations.NewStore(database.NewRuleRepository(db))
			if err := store.Load(ctx); err != nil {
				return err
			}

			client := torbox.NewClient(cfg.TorBoxURL, cfg.TorBoxAPIKey)
			metricsManager := metrics.NewManager()

			service := automations.NewService(automations.Config{
				TickInterval:   time.Duration(cfg.CheckTickSeconds) * time.Second,
				ManualCooldown: time.Duration(cfg.ManualCooldownSeconds) * time.Second,
			}, store, client, notificationSvc, metricsManager.Automation)
			service.Start(ctx)

			server := api.NewServer(cfg, store, service, notificationSvc, metricsManager)
			if err := server.ListenAndServe(ctx); err != nil {
				return err
			}

			log.Info().Msg("boxarr stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config.toml")
	return cmd
}
