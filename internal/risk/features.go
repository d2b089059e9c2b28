// Package risk holds the pure cash-flow scoring math: the feature builder
// fed into the scoring service and the projection of historical decisions
// into dashboard requests.
package risk

import (
	"errors"
	"math"

	"github.com/fairlens/riskwatch/internal/models"
)

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// round6 rounds to 6 decimal digits, the precision used on the wire.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// MonthlyInstallment is the equated monthly installment for a purchase paid
// off over tenorMonths, rounded up to whole currency units.
func MonthlyInstallment(purchaseTotal float64, tenorMonths int) float64 {
	return math.Ceil(purchaseTotal / float64(tenorMonths))
}

// ValidateEMIInput rejects non-finite or non-positive inputs before any
// feature derivation runs. BuildFeatures itself assumes validated inputs.
func ValidateEMIInput(purchaseTotal float64, tenorMonths int, income float64) error {
	if math.IsNaN(purchaseTotal) || math.IsInf(purchaseTotal, 0) || purchaseTotal <= 0 {
		return errors.New("purchase total must be a positive amount")
	}
	if tenorMonths <= 0 {
		return errors.New("tenor must be a positive number of months")
	}
	if math.IsNaN(income) || math.IsInf(income, 0) || income <= 0 {
		return errors.New("monthly income must be a positive amount")
	}
	return nil
}

// BuildFeatures derives the nine normalized cash-flow features from a
// purchase total, a chosen tenor, and the declared monthly income. The
// formulas are a fixed heuristic, not a statistical model: outflow is
// modeled as half of income plus the new installment, capped at 95% of
// income, and the remaining ratios follow from that. Every ratio/index is
// clamped into its contract range and rounded to 6 decimals.
func BuildFeatures(purchaseTotal float64, tenorMonths int, income float64) models.RiskFeatures {
	monthlyEMI := MonthlyInstallment(purchaseTotal, tenorMonths)
	inflow := math.Max(income, 1)
	purchaseToInflow := purchaseTotal / inflow
	outflow := math.Min(inflow*0.95, inflow*0.5+monthlyEMI)
	minBalance := math.Max(0, inflow-outflow-monthlyEMI*0.2)
	volatility := clamp(0.12+purchaseToInflow*0.2, 0.01, 1)

	negDays := 0
	switch {
	case minBalance == 0:
		negDays = 4
	case minBalance < inflow*0.08:
		negDays = 2
	}

	burden := clamp((outflow+monthlyEMI)/inflow, 0, 1)
	buffer := math.Max(0, minBalance/inflow)
	stress := clamp(volatility*0.45+burden*0.55, 0, 1)

	return models.RiskFeatures{
		AvgMonthlyInflow:      round6(inflow),
		InflowVolatility:      round6(volatility),
		AvgMonthlyOutflow:     round6(outflow),
		MinBalance30d:         round6(minBalance),
		NegBalanceDays30d:     negDays,
		PurchaseToInflowRatio: round6(purchaseToInflow),
		TotalBurdenRatio:      round6(burden),
		BufferRatio:           round6(buffer),
		StressIndex:           round6(stress),
	}
}
