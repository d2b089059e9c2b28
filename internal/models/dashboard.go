package models

// Mode selects the dashboard data path: fixed fixtures (demo) or the
// network-backed scoring service (live).
type Mode string

const (
	ModeDemo Mode = "demo"
	ModeLive Mode = "live"
)

// ParseMode returns the mode for s, or ok=false when s is neither value.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeDemo:
		return ModeDemo, true
	case ModeLive:
		return ModeLive, true
	}
	return "", false
}

// LogEntry is an immutable historical scoring record created by the scoring
// service: the submitted features plus the decision pair, an id, and a
// creation timestamp. Read-only on this side.
type LogEntry struct {
	ID int64 `json:"id"`

	AvgMonthlyInflow      float64 `json:"avg_monthly_inflow"`
	InflowVolatility      float64 `json:"inflow_volatility"`
	AvgMonthlyOutflow     float64 `json:"avg_monthly_outflow"`
	MinBalance30d         float64 `json:"min_balance_30d"`
	NegBalanceDays30d     int     `json:"neg_balance_days_30d"`
	PurchaseToInflowRatio float64 `json:"purchase_to_inflow_ratio"`
	TotalBurdenRatio      float64 `json:"total_burden_ratio"`
	BufferRatio           float64 `json:"buffer_ratio"`
	StressIndex           float64 `json:"stress_index"`

	RiskProbability float64  `json:"risk_probability"`
	Decision        Decision `json:"decision"`
	CreatedAt       string   `json:"created_at"`
}

// LogsPage is a single page of historical log entries.
type LogsPage struct {
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	Items      []LogEntry `json:"items"`
}

// RiskDistribution buckets predictions by probability band.
type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Stats is the aggregate view over all predictions.
type Stats struct {
	TotalPredictions int              `json:"total_predictions"`
	ApprovalRate     float64          `json:"approval_rate"`
	DeclineRate      float64          `json:"decline_rate"`
	RiskDistribution RiskDistribution `json:"risk_score_distribution"`
}

// AuditStatus is the severity of an audit trail record.
type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditWarning AuditStatus = "warning"
	AuditError   AuditStatus = "error"
)

// AuditLog is a single audit trail record from the scoring service.
type AuditLog struct {
	ID        int64       `json:"id"`
	Actor     string      `json:"actor"`
	Action    string      `json:"action"`
	Details   string      `json:"details"`
	Status    AuditStatus `json:"status"`
	EntityID  string      `json:"entity_id,omitempty"`
	Source    string      `json:"source,omitempty"`
	CreatedAt string      `json:"created_at"`
}

// AuditLogsPage is a single page of audit trail records.
type AuditLogsPage struct {
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	Items      []AuditLog `json:"items"`
}
