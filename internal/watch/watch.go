// Package watch runs the periodic risk-review refresh: dashboard data is
// pulled through the mode-switched gateway, projected into display
// requests, and newly observed declines are flagged for notification.
package watch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/fairlens/riskwatch/internal/gateway"
	"github.com/fairlens/riskwatch/internal/logger"
	"github.com/fairlens/riskwatch/internal/models"
	"github.com/fairlens/riskwatch/internal/risk"
	"github.com/fairlens/riskwatch/internal/storage"
)

// Decline pairs a newly observed declined log entry with its display
// projection.
type Decline struct {
	Entry   models.LogEntry
	Request models.EMIRequest
}

// Result is the outcome of one refresh cycle. Stats and Requests may each
// be absent independently: the failure of one fetch never corrupts the
// other.
type Result struct {
	RunID       string
	Stats       *models.Stats
	Requests    []models.EMIRequest
	NewDeclines []Decline
	StatsErr    error
	LogsErr     error
}

// Refresher drives refresh cycles against the gateway and records what it
// observes.
type Refresher struct {
	gw    *gateway.Gateway
	store *storage.Storage
}

// New creates a refresher.
func New(gw *gateway.Gateway, store *storage.Storage) *Refresher {
	return &Refresher{gw: gw, store: store}
}

// Refresh runs one cycle: stats and the first page of logs are fetched
// concurrently, the join waits for both members, and results are only
// applied if ctx is still live. Refresh fails outright only when both
// fetches fail.
func (r *Refresher) Refresh(ctx context.Context, pageSize int) (*Result, error) {
	result := &Result{RunID: uuid.New().String()}

	var (
		wg    sync.WaitGroup
		stats models.Stats
		logs  models.LogsPage
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		stats, result.StatsErr = r.gw.Stats(ctx)
	}()
	go func() {
		defer wg.Done()
		logs, result.LogsErr = r.gw.Logs(ctx, 1, pageSize)
	}()
	wg.Wait()

	// Discard everything when the caller went away mid-flight.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if result.StatsErr != nil && result.LogsErr != nil {
		return nil, fmt.Errorf("refresh failed: stats: %v; logs: %w", result.StatsErr, result.LogsErr)
	}

	if result.StatsErr == nil {
		result.Stats = &stats
		if err := r.store.AddStatsSnapshot(result.RunID, stats); err != nil {
			logger.Warn("Failed to snapshot stats: %v", err)
		}
	} else {
		logger.Warn("Stats fetch failed this cycle: %v", result.StatsErr)
	}

	if result.LogsErr == nil {
		result.Requests = make([]models.EMIRequest, 0, len(logs.Items))
		for _, entry := range logs.Items {
			request := risk.MapLogToRequest(entry)
			result.Requests = append(result.Requests, request)

			isNew, err := r.store.RecordDecision(entry)
			if err != nil {
				logger.Warn("Failed to record decision %d: %v", entry.ID, err)
				continue
			}
			if isNew && entry.Decision == models.DecisionDecline {
				result.NewDeclines = append(result.NewDeclines, Decline{Entry: entry, Request: request})
			}
		}
	} else {
		logger.Warn("Logs fetch failed this cycle: %v", result.LogsErr)
	}

	return result, nil
}

// RecordNotified flags the given declines as announced so later cycles
// stay quiet about them.
func (r *Refresher) RecordNotified(declines []Decline) {
	for _, d := range declines {
		if err := r.store.MarkNotified(d.Entry.ID); err != nil {
			logger.Warn("Failed to mark decision %d notified: %v", d.Entry.ID, err)
		}
	}
}
