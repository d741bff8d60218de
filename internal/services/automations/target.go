// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package automations polls remote download state, evaluates user-defined
// rules against it, and triggers control actions with throttling and safety
// guards around destructive operations.
package automations

import (
	"time"

	"github.com/boxarr/boxarr/internal/models"
	"github.com/boxarr/boxarr/internal/torbox"
)

// Target is the normalized view of one remote download. Targets are rebuilt
// from a fresh snapshot at the start of every rule run and discarded after.
type Target struct {
	Source         models.RuleScope
	SourceID       int64
	Name           string
	Progress       float64 // 0..1
	ETA            int64   // seconds
	DownloadSpeed  int64   // bytes/s
	DownloadState  string
	Peers          int64
	Ratio          float64
	Availability   float64
	Tracker        string
	StalledMinutes int64 // minutes since the last state-change timestamp
	Size           int64
	FileIDs        []int64
	CreatedAt      time.Time
}

// Kind maps the target's source scope to the client's download kind.
func (t Target) Kind() torbox.DownloadKind {
	switch t.Source {
	case models.ScopeTorrent:
		return torbox.KindTorrent
	case models.ScopeUsenet:
		return torbox.KindUsenet
	default:
		return torbox.KindWeb
	}
}
