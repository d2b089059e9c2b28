// Package assess turns a built feature vector into an approve/decline
// outcome, either through the live scoring service or, in simulation mode,
// through fixed statement-name fixtures used for offline demos.
package assess

import (
	"context"
	"strings"
	"time"

	"github.com/fairlens/riskwatch/internal/models"
	"github.com/fairlens/riskwatch/internal/riskapi"
)

// DefaultSimulatedDelay mimics the latency of a real scoring round trip.
const DefaultSimulatedDelay = 1200 * time.Millisecond

// Fixed outcomes keyed by uploaded statement name, active only in
// simulation mode. Never inferred from user input in a live deployment.
var simulatedOutcomes = map[string]models.RiskDecision{
	"1.pdf": {RiskProbability: 0.12, Decision: models.DecisionApprove},
	"2.pdf": {RiskProbability: 0.89, Decision: models.DecisionDecline},
}

// Assessor is the risk decision client. Each Assess call produces at most
// one outcome: no internal retries, no caching, no shared-state mutation.
// A failed call is recovered by invoking it again.
type Assessor struct {
	api      *riskapi.Client
	simulate bool
	delay    time.Duration
}

// New creates an assessor. simulate enables the statement-name fixture
// path; leave it off outside demos and tests.
func New(api *riskapi.Client, simulate bool, delay time.Duration) *Assessor {
	if delay <= 0 {
		delay = DefaultSimulatedDelay
	}
	return &Assessor{api: api, simulate: simulate, delay: delay}
}

// Assess scores a feature vector. In simulation mode a recognized statement
// name short-circuits to its fixed outcome after the simulated delay,
// without touching the network; anything else goes to the scoring service.
func (a *Assessor) Assess(ctx context.Context, features models.RiskFeatures, statementName string) (models.RiskDecision, error) {
	if a.simulate {
		name := strings.ToLower(strings.TrimSpace(statementName))
		if outcome, ok := simulatedOutcomes[name]; ok {
			select {
			case <-time.After(a.delay):
			case <-ctx.Done():
				return models.RiskDecision{}, ctx.Err()
			}
			return outcome, nil
		}
	}

	return a.api.Predict(ctx, features)
}
