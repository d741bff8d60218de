// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import "errors"

var (
	// ErrRuleNotFound is returned when a rule id does not exist in the store.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrPresetNotFound is returned when a preset id is unknown.
	ErrPresetNotFound = errors.New("preset not found")

	// ErrRuleNameRequired is returned when a rule is created or updated without a name.
	ErrRuleNameRequired = errors.New("rule name is required")

	// ErrUnsupportedAction is returned when an action is outside the supported set.
	ErrUnsupportedAction = errors.New("unsupported action")

	// ErrInvalidScope is returned when a scope is not one of all/torrent/usenet/web.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrInvalidActionScope is returned when an action and scope cannot be combined.
	ErrInvalidActionScope = errors.New("invalid action/scope combination")

	// ErrCheckIntervalTooSmall is returned when a check interval is below the minimum.
	ErrCheckIntervalTooSmall = errors.New("check interval must be at least 1 minute")

	// ErrDangerousConfirmationRequired is returned when a dangerous rule is
	// created or enabled without explicit confirmation.
	ErrDangerousConfirmationRequired = errors.New("dangerous rule requires explicit confirmation")
)
