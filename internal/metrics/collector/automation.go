// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

type AutomationCollector struct {
	RuleRunTotal            *prometheus.CounterVec
	RuleRunMatchedTotal     *prometheus.CounterVec
	RuleRunActionTotal      *prometheus.CounterVec
	RuleRunFailureTotal     *prometheus.CounterVec
	ManualRunThrottledTotal *prometheus.CounterVec
}

func NewAutomationCollector(r *prometheus.Registry) *AutomationCollector {
	m := &AutomationCollector{
		RuleRunTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxarr",
			Subsystem: "automation",
			Name:      "rule_run_total",
			Help:      "Total number of automation rule runs",
		}, []string{"rule_id", "rule_name", "trigger"}),
		RuleRunMatchedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxarr",
			Subsystem: "automation",
			Name:      "rule_run_matched_total",
			Help:      "Total number of downloads that matched a rule's conditions",
		}, []string{"rule_id", "rule_name"}),
		RuleRunActionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxarr",
			Subsystem: "automation",
			Name:      "rule_run_action_total",
			Help:      "Total number of automation rule actions applied",
		}, []string{"rule_id", "rule_name", "action"}),
		RuleRunFailureTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxarr",
			Subsystem: "automation",
			Name:      "rule_run_failure_total",
			Help:      "Total number of automation rule runs that failed before execution",
		}, []string{"rule_id", "rule_name"}),
		ManualRunThrottledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxarr",
			Subsystem: "automation",
			Name:      "manual_run_throttled_total",
			Help:      "Total number of manual rule triggers rejected by the cooldown",
		}, []string{"rule_id", "rule_name"}),
	}

	r.MustRegister(m.RuleRunTotal)
	r.MustRegister(m.RuleRunMatchedTotal)
	r.MustRegister(m.RuleRunActionTotal)
	r.MustRegister(m.RuleRunFailureTotal)
	r.MustRegister(m.ManualRunThrottledTotal)
	return m
}

func (m *AutomationCollector) GetRuleRunTotal(ruleID, ruleName, trigger string) prometheus.Counter {
	return m.RuleRunTotal.With(prometheus.Labels{
		"rule_id":   ruleID,
		"rule_name": ruleName,
		"trigger":   trigger,
	})
}

func (m *AutomationCollector) GetRuleRunMatchedTotal(ruleID, ruleName string) prometheus.Counter {
	return m.RuleRunMatchedTotal.With(prometheus.Labels{
		"rule_id":   ruleID,
		"rule_name": ruleName,
	})
}

func (m *AutomationCollector) GetRuleRunActionTotal(ruleID, ruleName string) *prometheus.CounterVec {
	return m.RuleRunActionTotal.MustCurryWith(prometheus.Labels{
		"rule_id":   ruleID,
		"rule_name": ruleName,
	})
}

func (m *AutomationCollector) GetRuleRunFailureTotal(ruleID, ruleName string) prometheus.Counter {
	return m.RuleRunFailureTotal.With(prometheus.Labels{
		"rule_id":   ruleID,
		"rule_name": ruleName,
	})
}

func (m *AutomationCollector) GetManualRunThrottledTotal(ruleID, ruleName string) prometheus.Counter {
	return m.ManualRunThrottledTotal.With(prometheus.Labels{
		"rule_id":   ruleID,
		"rule_name": ruleName,
	})
}
