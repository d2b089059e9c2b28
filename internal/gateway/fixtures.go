package gateway

import (
	"context"
	"math"
	"strings"

	"github.com/fairlens/riskwatch/internal/models"
)

// Fixture datasets for demo mode. These mirror the historical exports the
// dashboards were demoed against; the derived numbers shown for them must
// not drift between releases.
var demoLogs = []models.LogEntry{
	{
		ID:                    1001,
		AvgMonthlyInflow:      120000,
		InflowVolatility:      0.16,
		AvgMonthlyOutflow:     62000,
		MinBalance30d:         22000,
		NegBalanceDays30d:     0,
		PurchaseToInflowRatio: 0.24,
		TotalBurdenRatio:      0.41,
		BufferRatio:           0.19,
		StressIndex:           0.29,
		RiskProbability:       0.12,
		Decision:              models.DecisionApprove,
		CreatedAt:             "2026-02-16T12:20:00Z",
	},
	{
		ID:                    1002,
		AvgMonthlyInflow:      58000,
		InflowVolatility:      0.34,
		AvgMonthlyOutflow:     49000,
		MinBalance30d:         2000,
		NegBalanceDays30d:     7,
		PurchaseToInflowRatio: 0.64,
		TotalBurdenRatio:      0.82,
		BufferRatio:           0.03,
		StressIndex:           0.74,
		RiskProbability:       0.89,
		Decision:              models.DecisionDecline,
		CreatedAt:             "2026-02-16T12:23:00Z",
	},
	{
		ID:                    1003,
		AvgMonthlyInflow:      95000,
		InflowVolatility:      0.19,
		AvgMonthlyOutflow:     52000,
		MinBalance30d:         18000,
		NegBalanceDays30d:     1,
		PurchaseToInflowRatio: 0.31,
		TotalBurdenRatio:      0.48,
		BufferRatio:           0.18,
		StressIndex:           0.36,
		RiskProbability:       0.28,
		Decision:              models.DecisionApprove,
		CreatedAt:             "2026-02-16T12:30:00Z",
	},
	{
		ID:                    1004,
		AvgMonthlyInflow:      67000,
		InflowVolatility:      0.27,
		AvgMonthlyOutflow:     50000,
		MinBalance30d:         5500,
		NegBalanceDays30d:     3,
		PurchaseToInflowRatio: 0.46,
		TotalBurdenRatio:      0.66,
		BufferRatio:           0.08,
		StressIndex:           0.55,
		RiskProbability:       0.61,
		Decision:              models.DecisionDecline,
		CreatedAt:             "2026-02-16T12:40:00Z",
	},
	{
		ID:                    1005,
		AvgMonthlyInflow:      130000,
		InflowVolatility:      0.14,
		AvgMonthlyOutflow:     70000,
		MinBalance30d:         26000,
		NegBalanceDays30d:     0,
		PurchaseToInflowRatio: 0.22,
		TotalBurdenRatio:      0.39,
		BufferRatio:           0.2,
		StressIndex:           0.24,
		RiskProbability:       0.18,
		Decision:              models.DecisionApprove,
		CreatedAt:             "2026-02-16T12:55:00Z",
	},
}

var demoAuditLogs = []models.AuditLog{
	{
		ID:        5001,
		Actor:     "Risk Engine",
		Action:    "Risk decision",
		Details:   "Decision Approve (risk 0.12) for TXN-1001",
		Status:    models.AuditSuccess,
		EntityID:  "1001",
		Source:    "ml_service",
		CreatedAt: "2026-02-16T12:21:00Z",
	},
	{
		ID:        5002,
		Actor:     "Risk Engine",
		Action:    "Risk decision",
		Details:   "Decision Decline (risk 0.89) for TXN-1002",
		Status:    models.AuditSuccess,
		EntityID:  "1002",
		Source:    "ml_service",
		CreatedAt: "2026-02-16T12:24:00Z",
	},
	{
		ID:        5003,
		Actor:     "Risk Engine",
		Action:    "Risk decision",
		Details:   "Decision Approve (risk 0.28) for TXN-1003",
		Status:    models.AuditSuccess,
		EntityID:  "1003",
		Source:    "ml_service",
		CreatedAt: "2026-02-16T12:31:00Z",
	},
	{
		ID:        5004,
		Actor:     "Risk Engine",
		Action:    "Risk decision",
		Details:   "Decision Decline (risk 0.61) for TXN-1004",
		Status:    models.AuditWarning,
		EntityID:  "1004",
		Source:    "local_pkl",
		CreatedAt: "2026-02-16T12:41:00Z",
	},
	{
		ID:        5005,
		Actor:     "Risk Ops",
		Action:    "Manual review",
		Details:   "Flagged TXN-1005 for verification",
		Status:    models.AuditWarning,
		EntityID:  "1005",
		Source:    "manual",
		CreatedAt: "2026-02-16T12:57:00Z",
	},
	{
		ID:        5006,
		Actor:     "Risk Engine",
		Action:    "Risk decision",
		Details:   "Decision Approve (risk 0.18) for TXN-1005",
		Status:    models.AuditSuccess,
		EntityID:  "1005",
		Source:    "ml_service",
		CreatedAt: "2026-02-16T12:58:00Z",
	},
}

// FixtureSource serves the fixed demo datasets without any network access.
// Its responses are deterministic across calls.
type FixtureSource struct{}

// NewFixtureSource creates the demo data source.
func NewFixtureSource() *FixtureSource {
	return &FixtureSource{}
}

// Stats computes aggregate counts and rates over the demo log fixtures.
func (f *FixtureSource) Stats(ctx context.Context) (models.Stats, error) {
	total := len(demoLogs)
	approved := 0
	var dist models.RiskDistribution
	for _, log := range demoLogs {
		if log.Decision == models.DecisionApprove {
			approved++
		}
		switch {
		case log.RiskProbability < 0.33:
			dist.Low++
		case log.RiskProbability < 0.66:
			dist.Medium++
		default:
			dist.High++
		}
	}

	return models.Stats{
		TotalPredictions: total,
		ApprovalRate:     float64(approved) / float64(total),
		DeclineRate:      float64(total-approved) / float64(total),
		RiskDistribution: dist,
	}, nil
}

// Logs returns the demo log fixtures as a single page regardless of the
// requested page number.
func (f *FixtureSource) Logs(ctx context.Context, page, limit int) (models.LogsPage, error) {
	items := demoLogs
	if limit < len(items) {
		items = items[:limit]
	}
	return models.LogsPage{
		Page:       page,
		Limit:      limit,
		Total:      len(demoLogs),
		TotalPages: 1,
		Items:      append([]models.LogEntry(nil), items...),
	}, nil
}

// AuditLogs filters and paginates the demo audit fixtures: exact status
// match plus case-insensitive substring search over actor, action, details,
// and entity id.
func (f *FixtureSource) AuditLogs(ctx context.Context, page, limit int, filters AuditFilters) (models.AuditLogsPage, error) {
	status := filters.normalizedStatus()
	search := strings.ToLower(strings.TrimSpace(filters.Search))

	items := make([]models.AuditLog, 0, len(demoAuditLogs))
	for _, log := range demoAuditLogs {
		if status != "" && string(log.Status) != status {
			continue
		}
		if search != "" && !auditMatches(log, search) {
			continue
		}
		items = append(items, log)
	}

	total := len(items)
	totalPages := int(math.Max(1, math.Ceil(float64(total)/float64(limit))))

	start := (page - 1) * limit
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return models.AuditLogsPage{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		Items:      items[start:end],
	}, nil
}

func auditMatches(log models.AuditLog, query string) bool {
	for _, field := range []string{log.Actor, log.Action, log.Details, log.EntityID} {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
