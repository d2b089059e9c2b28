// Package models defines the core domain entities: risk features, decisions,
// historical log entries, and dashboard projections.
package models

import (
	"errors"
	"fmt"
)

// Decision is the outcome returned by the scoring service.
type Decision string

const (
	DecisionApprove Decision = "Approve"
	DecisionDecline Decision = "Decline"
)

// RiskFeatures is the wire request sent to the scoring service.
// Every ratio/index field is clamped into its documented range before
// transmission; field names match the service contract exactly.
type RiskFeatures struct {
	AvgMonthlyInflow      float64 `json:"avg_monthly_inflow"`
	InflowVolatility      float64 `json:"inflow_volatility"`
	AvgMonthlyOutflow     float64 `json:"avg_monthly_outflow"`
	MinBalance30d         float64 `json:"min_balance_30d"`
	NegBalanceDays30d     int     `json:"neg_balance_days_30d"`
	PurchaseToInflowRatio float64 `json:"purchase_to_inflow_ratio"`
	TotalBurdenRatio      float64 `json:"total_burden_ratio"`
	BufferRatio           float64 `json:"buffer_ratio"`
	StressIndex           float64 `json:"stress_index"`
}

// Validate checks feature field constraints.
func (f *RiskFeatures) Validate() error {
	if f.AvgMonthlyInflow <= 0 {
		return errors.New("avg monthly inflow must be positive")
	}
	if f.InflowVolatility < 0.01 || f.InflowVolatility > 1.0 {
		return errors.New("inflow volatility must be between 0.01 and 1.0")
	}
	if f.AvgMonthlyOutflow < 0 {
		return errors.New("avg monthly outflow must not be negative")
	}
	if f.MinBalance30d < 0 {
		return errors.New("min balance 30d must not be negative")
	}
	if f.NegBalanceDays30d < 0 || f.NegBalanceDays30d > 30 {
		return errors.New("neg balance days 30d must be between 0 and 30")
	}
	if f.PurchaseToInflowRatio < 0 {
		return errors.New("purchase to inflow ratio must not be negative")
	}
	if f.TotalBurdenRatio < 0 || f.TotalBurdenRatio > 1.0 {
		return errors.New("total burden ratio must be between 0.0 and 1.0")
	}
	if f.BufferRatio < 0 {
		return errors.New("buffer ratio must not be negative")
	}
	if f.StressIndex < 0 || f.StressIndex > 1.0 {
		return errors.New("stress index must be between 0.0 and 1.0")
	}
	return nil
}

// RiskDecision is the wire response from the scoring service. The decision
// threshold is owned by the service; probability and decision always travel
// together.
type RiskDecision struct {
	RiskProbability float64  `json:"risk_probability"`
	Decision        Decision `json:"decision"`
}

// Validate checks decision field constraints.
func (d *RiskDecision) Validate() error {
	if d.RiskProbability < 0 || d.RiskProbability > 1.0 {
		return errors.New("risk probability must be between 0.0 and 1.0")
	}
	if d.Decision != DecisionApprove && d.Decision != DecisionDecline {
		return fmt.Errorf("unknown decision %q", d.Decision)
	}
	return nil
}
