package models

// RequestStatus is the dashboard-facing status of an EMI request.
type RequestStatus string

const (
	StatusApproved RequestStatus = "Approved"
	StatusRejected RequestStatus = "Rejected"
)

// EMIRequest is a denormalized projection of a LogEntry for dashboard
// consumption. It is derived, never persisted: the credit score proxy, DTI,
// and the five risk-breakdown weights are presentation arithmetic over the
// underlying features and must stay consistent with historical exports.
type EMIRequest struct {
	ID        string `json:"id"`
	BuyerID   string `json:"buyerId"`
	BuyerName string `json:"buyerName"`

	CreditScore     int     `json:"creditScore"`
	DTI             int     `json:"dti"`
	RiskScore       int     `json:"riskScore"`
	DebtProbability int     `json:"debtProbability"`
	EMIAmount       int     `json:"emiAmount"`
	ProductCategory string  `json:"productCategory"`
	MonthlyIncome   int     `json:"monthlyIncome"`
	ExistingEMIs    int     `json:"existingEmis"`
	FixedExpenses   int     `json:"fixedExpenses"`
	SavingsBuffer   int     `json:"savingsBuffer"`
	RiskProbability float64 `json:"riskProbability"`

	CreditScoreWeight int `json:"creditScoreWeight"`
	DTIWeight         int `json:"dtiWeight"`
	EMILoad           int `json:"emiLoad"`
	SavingsWeight     int `json:"savingsWeight"`
	StabilityScore    int `json:"stabilityScore"`

	Status    RequestStatus `json:"status"`
	CreatedAt string        `json:"createdAt"`
}
