// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boxarr/boxarr/internal/models"
)

const rulesKey = "automation_rules"

// RuleRepository persists the automation rule list as one JSON document.
type RuleRepository struct {
	db *DB
}

func NewRuleRepository(db *DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) LoadRules(ctx context.Context) ([]*models.Rule, error) {
	raw, err := r.db.Get(ctx, rulesKey)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	var rules []*models.Rule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return rules, nil
}

func (r *RuleRepository) SaveRules(ctx context.Context, rules []*models.Rule) error {
	raw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	if err := r.db.Put(ctx, rulesKey, raw, time.Now().Unix()); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	return nil
}
