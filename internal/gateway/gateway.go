// Package gateway dispatches dashboard data retrieval between the demo
// fixture source and the live scoring service, keyed by the persisted
// dashboard mode.
package gateway

import (
	"context"
	"strings"

	"github.com/fairlens/riskwatch/internal/mode"
	"github.com/fairlens/riskwatch/internal/models"
	"github.com/fairlens/riskwatch/internal/riskapi"
)

// AuditFilters narrows audit log retrieval. A status of "" or "all" matches
// every record.
type AuditFilters struct {
	Status string
	Search string
}

func (f AuditFilters) normalizedStatus() string {
	if f.Status == "all" {
		return ""
	}
	return f.Status
}

// DataSource is the retrieval surface shared by both modes.
type DataSource interface {
	Stats(ctx context.Context) (models.Stats, error)
	Logs(ctx context.Context, page, limit int) (models.LogsPage, error)
	AuditLogs(ctx context.Context, page, limit int, filters AuditFilters) (models.AuditLogsPage, error)
}

// LiveSource retrieves dashboard data from the scoring service.
type LiveSource struct {
	api *riskapi.Client
}

// NewLiveSource wraps a scoring service client as a data source.
func NewLiveSource(api *riskapi.Client) *LiveSource {
	return &LiveSource{api: api}
}

func (l *LiveSource) Stats(ctx context.Context) (models.Stats, error) {
	return l.api.Stats(ctx)
}

func (l *LiveSource) Logs(ctx context.Context, page, limit int) (models.LogsPage, error) {
	return l.api.Logs(ctx, page, limit)
}

func (l *LiveSource) AuditLogs(ctx context.Context, page, limit int, filters AuditFilters) (models.AuditLogsPage, error) {
	return l.api.AuditLogs(ctx, page, limit, riskapi.AuditFilters{
		Status: filters.normalizedStatus(),
		Search: strings.TrimSpace(filters.Search),
	})
}

// Gateway selects the data source per call from the injected mode store.
// The mode is read once at the start of each operation; a mode change spawns
// fresh operations instead of mutating in-flight ones.
type Gateway struct {
	modes *mode.Store
	demo  DataSource
	live  DataSource
	api   *riskapi.Client
}

// New creates a gateway over the given mode store and scoring client.
func New(modes *mode.Store, api *riskapi.Client) *Gateway {
	return &Gateway{
		modes: modes,
		demo:  NewFixtureSource(),
		live:  NewLiveSource(api),
		api:   api,
	}
}

func (g *Gateway) source() DataSource {
	if g.modes.Current() == models.ModeDemo {
		return g.demo
	}
	return g.live
}

// Stats retrieves aggregate prediction statistics in the current mode.
func (g *Gateway) Stats(ctx context.Context) (models.Stats, error) {
	return g.source().Stats(ctx)
}

// Logs retrieves a page of historical scoring records in the current mode.
func (g *Gateway) Logs(ctx context.Context, page, limit int) (models.LogsPage, error) {
	return g.source().Logs(ctx, page, limit)
}

// AuditLogs retrieves a page of audit records in the current mode.
func (g *Gateway) AuditLogs(ctx context.Context, page, limit int, filters AuditFilters) (models.AuditLogsPage, error) {
	return g.source().AuditLogs(ctx, page, limit, filters)
}

// SubmitPrediction always goes to the live service: demo mode has no new
// predictions, only historical fixtures.
func (g *Gateway) SubmitPrediction(ctx context.Context, features models.RiskFeatures) (models.RiskDecision, error) {
	return g.api.Predict(ctx, features)
}
