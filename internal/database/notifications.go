// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boxarr/boxarr/internal/services/notifications"
)

const notificationFeedKey = "notification_feed"

// NotificationRepository persists the local notification feed.
type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) LoadFeed(ctx context.Context) ([]*notifications.Notification, error) {
	raw, err := r.db.Get(ctx, notificationFeedKey)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load notification feed: %w", err)
	}

	var feed []*notifications.Notification
	if err := json.Unmarshal(raw, &feed); err != nil {
		return nil, fmt.Errorf("decode notification feed: %w", err)
	}
	return feed, nil
}

func (r *NotificationRepository) SaveFeed(ctx context.Context, feed []*notifications.Notification) error {
	raw, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("encode notification feed: %w", err)
	}
	if err := r.db.Put(ctx, notificationFeedKey, raw, time.Now().Unix()); err != nil {
		return fmt.Errorf("save notification feed: %w", err)
	}
	return nil
}
