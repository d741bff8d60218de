// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package automations

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/boxarr/boxarr/internal/models"
	"github.com/boxarr/boxarr/internal/torbox"
)

// DownloadLister is the subset of the remote API the snapshot builder needs.
type DownloadLister interface {
	ListTorrents(ctx context.Context) ([]torbox.TorrentRecord, error)
	ListUsenet(ctx context.Context) ([]torbox.UsenetRecord, error)
	ListWebDownloads(ctx context.Context) ([]torbox.WebDownloadRecord, error)
}

// BuildTargets fetches the three remote collections in parallel and
// normalizes them into one target list. Any single fetch failure fails the
// whole snapshot; rules are never evaluated against partial data.
func BuildTargets(ctx context.Context, client DownloadLister, now time.Time) ([]Target, error) {
	var (
		torrents []torbox.TorrentRecord
		usenet   []torbox.UsenetRecord
		web      []torbox.WebDownloadRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		torrents, err = client.ListTorrents(gctx)
		if err != nil {
			return fmt.Errorf("list torrents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		usenet, err = client.ListUsenet(gctx)
		if err != nil {
			return fmt.Errorf("list usenet: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		web, err = client.ListWebDownloads(gctx)
		if err != nil {
			return fmt.Errorf("list web downloads: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	targets := make([]Target, 0, len(torrents)+len(usenet)+len(web))
	for _, r := range torrents {
		targets = append(targets, Target{
			Source:         models.ScopeTorrent,
			SourceID:       r.ID,
			Name:           r.Name,
			Progress:       r.Progress,
			ETA:            r.ETA,
			DownloadSpeed:  r.DownloadSpeed,
			DownloadState:  r.DownloadState,
			Peers:          r.Peers,
			Ratio:          r.Ratio,
			Availability:   r.Availability,
			Tracker:        r.Tracker,
			StalledMinutes: stalledMinutes(r.UpdatedAt, now),
			Size:           r.Size,
			FileIDs:        fileIDs(r.Files),
			CreatedAt:      parseTimestamp(r.CreatedAt),
		})
	}
	for _, r := range usenet {
		targets = append(targets, Target{
			Source:         models.ScopeUsenet,
			SourceID:       r.ID,
			Name:           r.Name,
			Progress:       r.Progress,
			ETA:            r.ETA,
			DownloadSpeed:  r.DownloadSpeed,
			DownloadState:  r.DownloadState,
			StalledMinutes: stalledMinutes(r.UpdatedAt, now),
			Size:           r.Size,
			FileIDs:        fileIDs(r.Files),
			CreatedAt:      parseTimestamp(r.CreatedAt),
		})
	}
	for _, r := range web {
		targets = append(targets, Target{
			Source:         models.ScopeWeb,
			SourceID:       r.ItemID(),
			Name:           r.Name,
			Progress:       r.Progress,
			ETA:            r.ETA,
			DownloadSpeed:  r.DownloadSpeed,
			DownloadState:  r.DownloadState,
			StalledMinutes: stalledMinutes(r.UpdatedAt, now),
			Size:           r.Size,
			FileIDs:        fileIDs(r.Files),
			CreatedAt:      parseTimestamp(r.CreatedAt),
		})
	}

	return targets, nil
}

func fileIDs(files []torbox.DownloadFile) []int64 {
	if len(files) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids
}

// parseTimestamp parses an ISO timestamp, tolerating a missing value.
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// stalledMinutes returns whole minutes since the last update, clamped to >= 0.
// An unparseable or missing timestamp counts as not stalled.
func stalledMinutes(updatedAt string, now time.Time) int64 {
	t := parseTimestamp(updatedAt)
	if t.IsZero() {
		return 0
	}
	minutes := int64(now.Sub(t) / time.Minute)
	if minutes < 0 {
		return 0
	}
	return minutes
}
