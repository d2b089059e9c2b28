package risk

import (
	"fmt"
	"math"

	"github.com/fairlens/riskwatch/internal/models"
)

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func toPercent(v float64) int {
	return int(math.Round(clamp(v, 0, 1) * 100))
}

// MapLogToRequest projects a historical log entry into the dashboard's EMI
// request shape. The derivation order and the clamp/round steps are load
// bearing: the four weighted terms are clamped independently first and the
// stability term absorbs the remainder, so displayed numbers stay identical
// to historical exports. Do not reorder.
func MapLogToRequest(item models.LogEntry) models.EMIRequest {
	riskScore := toPercent(item.RiskProbability)
	creditScore := clampInt(int(math.Round(850-item.RiskProbability*350)), 300, 850)
	dti := int(math.Round(clamp(item.TotalBurdenRatio, 0, 1) * 100))
	estimatedPurchase := math.Max(0, item.AvgMonthlyInflow*item.PurchaseToInflowRatio)
	emiAmount := int(math.Round(estimatedPurchase / 6))
	existingEMIs := int(math.Round(item.AvgMonthlyOutflow * 0.3))

	creditScoreWeight := clampInt(int(math.Round((1-item.RiskProbability)*35)), 5, 35)
	dtiWeight := clampInt(int(math.Round(item.TotalBurdenRatio*30)), 5, 30)
	emiLoad := clampInt(int(math.Round(item.PurchaseToInflowRatio*20)), 5, 20)
	savingsWeight := clampInt(int(math.Round((1-clamp(item.BufferRatio, 0, 1))*10)), 5, 10)
	stabilityScore := clampInt(100-(creditScoreWeight+dtiWeight+emiLoad+savingsWeight), 10, 80)

	status := models.StatusRejected
	if item.Decision == models.DecisionApprove {
		status = models.StatusApproved
	}

	return models.EMIRequest{
		ID:        fmt.Sprintf("TXN-%d", item.ID),
		BuyerID:   fmt.Sprintf("BUY-%05d", item.ID),
		BuyerName: fmt.Sprintf("Applicant %d", item.ID),

		CreditScore:     creditScore,
		DTI:             dti,
		RiskScore:       riskScore,
		DebtProbability: riskScore,
		EMIAmount:       emiAmount,
		ProductCategory: "Retail Purchase",
		MonthlyIncome:   int(math.Round(item.AvgMonthlyInflow)),
		ExistingEMIs:    existingEMIs,
		FixedExpenses:   int(math.Round(item.AvgMonthlyOutflow)),
		SavingsBuffer:   int(math.Round(item.MinBalance30d)),
		RiskProbability: item.RiskProbability,

		CreditScoreWeight: creditScoreWeight,
		DTIWeight:         dtiWeight,
		EMILoad:           emiLoad,
		SavingsWeight:     savingsWeight,
		StabilityScore:    stabilityScore,

		Status:    status,
		CreatedAt: item.CreatedAt,
	}
}
