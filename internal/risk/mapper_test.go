package risk

import (
	"math/rand"
	"testing"

	"github.com/fairlens/riskwatch/internal/models"
)

func sampleLog() models.LogEntry {
	return models.LogEntry{
		ID:                    42,
		AvgMonthlyInflow:      95000,
		InflowVolatility:      0.19,
		AvgMonthlyOutflow:     52000,
		MinBalance30d:         18000,
		NegBalanceDays30d:     1,
		PurchaseToInflowRatio: 0.31,
		TotalBurdenRatio:      0.48,
		BufferRatio:           0.18,
		StressIndex:           0.36,
		RiskProbability:       0.2,
		Decision:              models.DecisionApprove,
		CreatedAt:             "2026-02-16T12:30:00Z",
	}
}

func TestMapLogToRequestDerivations(t *testing.T) {
	req := MapLogToRequest(sampleLog())

	if req.ID != "TXN-42" {
		t.Errorf("ID = %q, want TXN-42", req.ID)
	}
	if req.BuyerID != "BUY-00042" {
		t.Errorf("BuyerID = %q, want BUY-00042", req.BuyerID)
	}
	if req.BuyerName != "Applicant 42" {
		t.Errorf("BuyerName = %q", req.BuyerName)
	}
	if req.CreditScore != 780 { // round(850 - 0.2*350)
		t.Errorf("CreditScore = %d, want 780", req.CreditScore)
	}
	if req.RiskScore != 20 {
		t.Errorf("RiskScore = %d, want 20", req.RiskScore)
	}
	if req.DebtProbability != req.RiskScore {
		t.Errorf("DebtProbability = %d, want %d", req.DebtProbability, req.RiskScore)
	}
	if req.DTI != 48 {
		t.Errorf("DTI = %d, want 48", req.DTI)
	}
	// estimated purchase = 95000*0.31 = 29450; emi = round(29450/6) = 4908
	if req.EMIAmount != 4908 {
		t.Errorf("EMIAmount = %d, want 4908", req.EMIAmount)
	}
	if req.ExistingEMIs != 15600 { // round(52000*0.3)
		t.Errorf("ExistingEMIs = %d, want 15600", req.ExistingEMIs)
	}
	if req.CreditScoreWeight != 28 { // round(0.8*35)
		t.Errorf("CreditScoreWeight = %d, want 28", req.CreditScoreWeight)
	}
	if req.DTIWeight != 14 { // round(0.48*30)
		t.Errorf("DTIWeight = %d, want 14", req.DTIWeight)
	}
	if req.EMILoad != 6 { // round(0.31*20)
		t.Errorf("EMILoad = %d, want 6", req.EMILoad)
	}
	if req.SavingsWeight != 8 { // round((1-0.18)*10)
		t.Errorf("SavingsWeight = %d, want 8", req.SavingsWeight)
	}
	if req.StabilityScore != 44 { // 100 - (28+14+6+8)
		t.Errorf("StabilityScore = %d, want 44", req.StabilityScore)
	}
	if req.Status != models.StatusApproved {
		t.Errorf("Status = %q, want Approved", req.Status)
	}
	if req.CreatedAt != "2026-02-16T12:30:00Z" {
		t.Errorf("CreatedAt = %q", req.CreatedAt)
	}
}

func TestMapLogToRequestStatusFollowsDecision(t *testing.T) {
	entry := sampleLog()

	entry.Decision = models.DecisionApprove
	if got := MapLogToRequest(entry).Status; got != models.StatusApproved {
		t.Errorf("Status = %q, want Approved", got)
	}

	entry.Decision = models.DecisionDecline
	if got := MapLogToRequest(entry).Status; got != models.StatusRejected {
		t.Errorf("Status = %q, want Rejected", got)
	}
}

func TestMapLogToRequestBoundaryProbabilities(t *testing.T) {
	for _, p := range []float64{0, 1} {
		entry := sampleLog()
		entry.RiskProbability = p
		req := MapLogToRequest(entry)

		if req.RiskScore != int(p*100) {
			t.Errorf("p=%v: RiskScore = %d", p, req.RiskScore)
		}
		if req.CreditScore < 300 || req.CreditScore > 850 {
			t.Errorf("p=%v: CreditScore out of range: %d", p, req.CreditScore)
		}
		if req.CreditScoreWeight < 5 || req.CreditScoreWeight > 35 {
			t.Errorf("p=%v: CreditScoreWeight out of range: %d", p, req.CreditScoreWeight)
		}
	}
}

func TestMapLogToRequestIsTotal(t *testing.T) {
	// Any valid entry maps: all clamped fields land in their ranges and
	// derived amounts are non-negative integers.
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		entry := models.LogEntry{
			ID:                    int64(rng.Intn(100000)),
			AvgMonthlyInflow:      rng.Float64() * 2e5,
			AvgMonthlyOutflow:     rng.Float64() * 2e5,
			MinBalance30d:         rng.Float64() * 5e4,
			PurchaseToInflowRatio: rng.Float64() * 5,
			TotalBurdenRatio:      rng.Float64(),
			BufferRatio:           rng.Float64() * 2,
			RiskProbability:       rng.Float64(),
			Decision:              models.DecisionApprove,
		}
		if rng.Intn(2) == 0 {
			entry.Decision = models.DecisionDecline
		}

		req := MapLogToRequest(entry)

		if req.CreditScore < 300 || req.CreditScore > 850 {
			t.Fatalf("CreditScore out of range: %d", req.CreditScore)
		}
		if req.DTI < 0 || req.DTI > 100 {
			t.Fatalf("DTI out of range: %d", req.DTI)
		}
		if req.RiskScore < 0 || req.RiskScore > 100 {
			t.Fatalf("RiskScore out of range: %d", req.RiskScore)
		}
		if req.EMIAmount < 0 {
			t.Fatalf("EMIAmount negative: %d", req.EMIAmount)
		}
		if req.CreditScoreWeight < 5 || req.CreditScoreWeight > 35 {
			t.Fatalf("CreditScoreWeight out of range: %d", req.CreditScoreWeight)
		}
		if req.DTIWeight < 5 || req.DTIWeight > 30 {
			t.Fatalf("DTIWeight out of range: %d", req.DTIWeight)
		}
		if req.EMILoad < 5 || req.EMILoad > 20 {
			t.Fatalf("EMILoad out of range: %d", req.EMILoad)
		}
		if req.SavingsWeight < 5 || req.SavingsWeight > 10 {
			t.Fatalf("SavingsWeight out of range: %d", req.SavingsWeight)
		}
		if req.StabilityScore < 10 || req.StabilityScore > 80 {
			t.Fatalf("StabilityScore out of range: %d", req.StabilityScore)
		}

		wantStatus := models.StatusRejected
		if entry.Decision == models.DecisionApprove {
			wantStatus = models.StatusApproved
		}
		if req.Status != wantStatus {
			t.Fatalf("Status = %q for decision %q", req.Status, entry.Decision)
		}
	}
}
