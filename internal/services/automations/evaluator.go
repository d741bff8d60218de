// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package automations

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/boxarr/boxarr/internal/models"
)

// EvalContext provides additional context for condition evaluation.
type EvalContext struct {
	// Now is the evaluation timestamp, used for the age field. If zero,
	// time.Now() is used. Set this for deterministic tests.
	Now time.Time
}

func (ctx *EvalContext) now() time.Time {
	if ctx != nil && !ctx.Now.IsZero() {
		return ctx.Now
	}
	return time.Now()
}

// Matches reports whether a target satisfies a rule. The rule's scope filter
// short-circuits before any condition is evaluated; conditions are joined
// with logical AND. Pure: no side effects, safe to call repeatedly.
func Matches(rule *models.Rule, target Target, ctx *EvalContext) bool {
	if rule == nil {
		return false
	}
	if rule.Scope != "" && rule.Scope != models.ScopeAll && target.Source != rule.Scope {
		return false
	}
	for _, cond := range rule.Conditions {
		if !evaluateCondition(cond, target, ctx) {
			return false
		}
	}
	return true
}

func evaluateCondition(cond models.RuleCondition, target Target, ctx *EvalContext) bool {
	// A blank value is vacuously true so a rule saved mid-edit doesn't
	// reject everything.
	if strings.TrimSpace(cond.Value) == "" {
		return true
	}

	value, ok := resolveField(cond.Field, target, ctx)
	if !ok {
		return false
	}

	if cond.Operator == models.OperatorContains {
		// contains coerces both sides to strings
		return strings.Contains(strings.ToLower(asString(value)), strings.ToLower(strings.TrimSpace(cond.Value)))
	}

	if condNum, numeric := parseNumber(cond.Value); numeric {
		if fieldNum, fieldNumeric := asNumber(value); fieldNumeric {
			return compareNumeric(fieldNum, condNum, cond.Operator)
		}
	}

	return compareStrings(asString(value), cond.Value, cond.Operator)
}

// resolveField maps a condition field to a concrete value from the target.
// Stalled times and age are derived; everything else passes through.
func resolveField(field models.ConditionField, target Target, ctx *EvalContext) (any, bool) {
	switch field {
	case models.FieldName:
		return target.Name, true
	case models.FieldProgress:
		// stored as a 0..1 fraction, conditions speak percent
		return target.Progress * 100, true
	case models.FieldEta:
		return float64(target.ETA), true
	case models.FieldDownloadSpeed:
		return float64(target.DownloadSpeed), true
	case models.FieldStatus:
		return target.DownloadState, true
	case models.FieldPeers:
		return float64(target.Peers), true
	case models.FieldRatio:
		return target.Ratio, true
	case models.FieldAvailability:
		return target.Availability, true
	case models.FieldTracker:
		return target.Tracker, true
	case models.FieldSize:
		return float64(target.Size), true
	case models.FieldDownloadStalledTime, models.FieldUploadStalledTime:
		return float64(target.StalledMinutes), true
	case models.FieldAge:
		if target.CreatedAt.IsZero() {
			return float64(0), true
		}
		days := math.Floor(ctx.now().Sub(target.CreatedAt).Hours() / 24)
		return math.Max(days, 0), true
	default:
		return nil, false
	}
}

// parseNumber parses s as a finite number; mirrors a Number.isFinite check.
func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		return parseNumber(v)
	default:
		return 0, false
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func compareNumeric(value, condValue float64, op models.ConditionOperator) bool {
	switch op {
	case models.OperatorEquals:
		return value == condValue
	case models.OperatorNotEquals:
		return value != condValue
	case models.OperatorGreaterThan:
		return value > condValue
	case models.OperatorLessThan:
		return value < condValue
	case models.OperatorGreaterThanOrEqual:
		return value >= condValue
	case models.OperatorLessThanOrEqual:
		return value <= condValue
	default:
		return false
	}
}

func compareStrings(value, condValue string, op models.ConditionOperator) bool {
	a := strings.ToLower(value)
	b := strings.ToLower(strings.TrimSpace(condValue))

	switch op {
	case models.OperatorEquals:
		return a == b
	case models.OperatorNotEquals:
		return a != b
	case models.OperatorGreaterThan:
		return a > b
	case models.OperatorLessThan:
		return a < b
	case models.OperatorGreaterThanOrEqual:
		return a >= b
	case models.OperatorLessThanOrEqual:
		return a <= b
	default:
		return false
	}
}
