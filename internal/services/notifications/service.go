// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package notifications appends rule-run events to a local feed and
// optionally relays them to user-configured shoutrrr URLs.
package notifications

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/rs/zerolog/log"
)

const (
	defaultQueueSize = 100
	maxFeedEntries   = 200
)

// Notifier is the fire-and-forget side channel the automation engine
// appends to. Delivery is best effort and never awaited for correctness.
type Notifier interface {
	Notify(event Event)
}

// FeedRepository persists the local notification feed as a whole list.
type FeedRepository interface {
	LoadFeed(ctx context.Context) ([]*Notification, error)
	SaveFeed(ctx context.Context, feed []*Notification) error
}

// Service owns the local notification feed and outbound dispatch.
type Service struct {
	repo      FeedRepository
	urls      []string // outbound shoutrrr URLs, may be empty
	queue     chan Event
	startOnce sync.Once

	mu   sync.RWMutex
	feed []*Notification
}

func NewService(repo FeedRepository, urls []string) *Service {
	return &Service{
		repo:  repo,
		urls:  urls,
		queue: make(chan Event, defaultQueueSize),
	}
}

// Load restores the persisted feed. Called once at startup.
func (s *Service) Load(ctx context.Context) error {
	if s == nil || s.repo == nil {
		return nil
	}
	feed, err := s.repo.LoadFeed(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.feed = feed
	s.mu.Unlock()
	return nil
}

// Start launches the dispatch worker.
func (s *Service) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.startOnce.Do(func() {
		go s.worker(ctx)
	})
}

// Notify enqueues an event. Drops on a full queue rather than blocking the
// caller; the automation engine must never stall on notification delivery.
func (s *Service) Notify(event Event) {
	if s == nil {
		return
	}
	select {
	case s.queue <- event:
	default:
		log.Warn().Str("event", string(event.Type)).Msg("notifications: queue full, dropping event")
	}
}

// List returns the feed, newest first.
func (s *Service) List(limit int) []*Notification {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.feed)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*Notification, 0, n)
	for i := 0; i < n; i++ {
		cloned := *s.feed[i]
		out = append(out, &cloned)
	}
	return out
}

// MarkAllRead flags every feed entry as read.
func (s *Service) MarkAllRead(ctx context.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	for _, n := range s.feed {
		n.Read = true
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-s.queue:
			s.dispatch(ctx, event)
		}
	}
}

func (s *Service) dispatch(ctx context.Context, event Event) {
	entry := &Notification{
		ID:        uuid.NewString(),
		Type:      event.Type,
		Title:     event.Title,
		Message:   event.Message,
		RuleID:    event.RuleID,
		RuleName:  event.RuleName,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.feed = append([]*Notification{entry}, s.feed...)
	if len(s.feed) > maxFeedEntries {
		s.feed = s.feed[:maxFeedEntries]
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)

	for _, url := range s.urls {
		if err := s.send(url, event); err != nil {
			log.Error().Err(err).Str("event", string(event.Type)).Msg("notifications: send failed")
		}
	}
}

// snapshotLocked copies the feed for persistence. Caller holds s.mu.
func (s *Service) snapshotLocked() []*Notification {
	out := make([]*Notification, len(s.feed))
	copy(out, s.feed)
	return out
}

// persist writes the feed; failures are logged, never propagated. The
// in-memory feed stays authoritative until the next successful save.
func (s *Service) persist(ctx context.Context, feed []*Notification) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveFeed(ctx, feed); err != nil {
		log.Error().Err(err).Msg("notifications: failed to persist feed")
	}
}

func (s *Service) send(url string, event Event) error {
	sender, err := router.New(nil, url)
	if err != nil {
		return err
	}

	params := types.Params{}
	if title := strings.TrimSpace(event.Title); title != "" {
		params.SetTitle(title)
	}

	for _, sendErr := range sender.Send(event.Message, &params) {
		if sendErr != nil {
			return sendErr
		}
	}
	return nil
}

// ValidateURL checks that a shoutrrr URL is well formed.
func ValidateURL(rawURL string) error {
	_, err := router.New(nil, rawURL)
	return err
}
