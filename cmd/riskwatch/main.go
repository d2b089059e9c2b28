package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairlens/riskwatch/internal/assess"
	"github.com/fairlens/riskwatch/internal/config"
	"github.com/fairlens/riskwatch/internal/gateway"
	"github.com/fairlens/riskwatch/internal/logger"
	"github.com/fairlens/riskwatch/internal/mode"
	"github.com/fairlens/riskwatch/internal/models"
	"github.com/fairlens/riskwatch/internal/notify"
	"github.com/fairlens/riskwatch/internal/risk"
	"github.com/fairlens/riskwatch/internal/riskapi"
	"github.com/fairlens/riskwatch/internal/storage"
	"github.com/fairlens/riskwatch/internal/watch"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	setMode    = flag.String("set-mode", "", "Persist the dashboard data mode (demo or live) and exit")

	// One-shot assessment flags. When -purchase is set the process scores a
	// single application instead of starting the watch loop.
	purchaseTotal = flag.Float64("purchase", 0, "Purchase total for a one-shot assessment")
	tenorMonths   = flag.Int("tenor", 0, "Installment tenor in months for a one-shot assessment")
	income        = flag.Float64("income", 0, "Declared monthly income for a one-shot assessment")
	statementName = flag.String("statement", "", "Bank statement file name forwarded to the assessor")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(
		cfg.Storage.MaxDecisions,
		cfg.Storage.DBPath,
	)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	modes := mode.NewStore(store, cfg.DefaultMode())

	if *setMode != "" {
		if err := runSetMode(modes, *setMode); err != nil {
			logger.Fatal("%v", err)
		}
		return
	}

	apiClient := riskapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	gw := gateway.New(modes, apiClient)

	if *purchaseTotal != 0 || *tenorMonths != 0 || *income != 0 {
		assessor := assess.New(apiClient, cfg.Simulation.Enabled, cfg.Simulation.Delay)
		if err := runAssessment(assessor, *purchaseTotal, *tenorMonths, *income, *statementName); err != nil {
			logger.Fatal("Assessment failed: %v", err)
		}
		return
	}

	var telegramClient *notify.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = notify.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	if cfg.Telegram.Enabled && telegramClient != nil {
		telegramClient.ListenForCommands(ctx)
	}

	refresher := watch.New(gw, store)

	// A mode change makes the current dataset stale, so the next cycle
	// should not wait for the ticker.
	modeChanged := make(chan models.Mode, 1)
	unsubscribe := modes.Subscribe(func(m models.Mode) {
		select {
		case modeChanged <- m:
		default:
		}
	})
	defer unsubscribe()

	logger.Info("Starting risk watch service (interval: %v, page_size: %d, mode: %s)",
		cfg.Dashboard.RefreshInterval,
		cfg.Dashboard.PageSize,
		modes.Current(),
	)

	ticker := time.NewTicker(cfg.Dashboard.RefreshInterval)
	defer ticker.Stop()

	consecutiveFailures := 0

	handleCycleResult := func(err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Refresh cycle failed: %v", err)
			if consecutiveFailures == 1 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
				}
			}
		} else {
			if consecutiveFailures > 0 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendRecovery(consecutiveFailures); sendErr != nil {
					logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
				}
			}
			consecutiveFailures = 0
		}
	}

	logger.Debug("Running initial refresh cycle")
	handleCycleResult(runRefreshCycle(ctx, refresher, telegramClient, cfg))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Service stopped")
			return

		case m := <-modeChanged:
			logger.Info("Dashboard mode changed to %s, refreshing immediately", m)
			handleCycleResult(runRefreshCycle(ctx, refresher, telegramClient, cfg))

		case <-ticker.C:
			logger.Debug("Starting scheduled refresh cycle")
			handleCycleResult(runRefreshCycle(ctx, refresher, telegramClient, cfg))
		}
	}
}

func runRefreshCycle(
	ctx context.Context,
	refresher *watch.Refresher,
	telegramClient *notify.Client,
	cfg *config.Config,
) error {
	startTime := time.Now()
	logger.Info("Starting refresh cycle")

	result, err := refresher.Refresh(ctx, cfg.Dashboard.PageSize)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	if result.Stats != nil {
		logger.Info("Observed stats: %d predictions, %.1f%% approved",
			result.Stats.TotalPredictions,
			result.Stats.ApprovalRate*100,
		)
	}
	logger.Info("Observed %d recent requests, %d newly declined", len(result.Requests), len(result.NewDeclines))

	if len(result.NewDeclines) > 0 {
		if cfg.Telegram.Enabled && telegramClient != nil {
			requests := make([]models.EMIRequest, 0, len(result.NewDeclines))
			for _, d := range result.NewDeclines {
				requests = append(requests, d.Request)
			}
			if err := telegramClient.SendDeclines(requests); err != nil {
				logger.Error("Failed to send decline notification: %v", err)
			} else {
				logger.Info("Sent Telegram notification for %d declined requests", len(requests))
				refresher.RecordNotified(result.NewDeclines)
			}
		} else {
			logger.Debug("New declines detected but Telegram notifications disabled or client not initialized")
		}
	}

	duration := time.Since(startTime)
	logger.Info("Refresh cycle completed in %v", duration)

	return nil
}

func runAssessment(assessor *assess.Assessor, purchase float64, tenor int, monthlyIncome float64, statement string) error {
	if err := risk.ValidateEMIInput(purchase, tenor, monthlyIncome); err != nil {
		return err
	}

	features := risk.BuildFeatures(purchase, tenor, monthlyIncome)
	logger.Info("Built risk features (EMI: %.0f, burden: %.6f, stress: %.6f)",
		risk.MonthlyInstallment(purchase, tenor),
		features.TotalBurdenRatio,
		features.StressIndex,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	decision, err := assessor.Assess(ctx, features, statement)
	if err != nil {
		return err
	}

	logger.Info("Decision: %s (risk probability %.2f)", decision.Decision, decision.RiskProbability)
	fmt.Printf("%s %.2f\n", decision.Decision, decision.RiskProbability)
	return nil
}

func runSetMode(modes *mode.Store, raw string) error {
	m, ok := models.ParseMode(raw)
	if !ok {
		return fmt.Errorf("unknown mode %q, expected demo or live", raw)
	}
	if err := modes.Set(m); err != nil {
		return fmt.Errorf("failed to persist mode: %w", err)
	}
	logger.Info("Dashboard mode set to %s", m)
	return nil
}
