package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/ledger-dashboard/internal/config"
	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/core/ports"
	"github.com/kirillkom/ledger-dashboard/internal/core/usecase"
	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/backend/ledgerapi"
	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/notice"
	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/queue/nats"
	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/resilience"
	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/ledger-dashboard/internal/observability/metrics"
	"github.com/kirillkom/ledger-dashboard/internal/presentation"
)

type App struct {
	Config config.Config

	Dashboard *usecase.DashboardController
	Notices   *notice.Board
	Files     *localfs.Storage
	Queue     *nats.Queue
	Metrics   *metrics.HTTPServerMetrics
	Render    presentation.Options

	closeFn func()
}

func New(_ context.Context, cfg config.Config, service string) (*App, error) {
	render, err := RenderOptions(cfg)
	if err != nil {
		return nil, err
	}

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	dashboardMetrics := metrics.NewDashboardMetrics(service, httpMetrics.Registry())

	backendPolicy := ResilienceConfig(cfg)
	backendPolicy.OnBreakerStateChange = dashboardMetrics.ObserveBreakerState

	var contract *ledgerapi.Contract
	if cfg.BackendContractValidation {
		contract, err = ledgerapi.LoadContract()
		if err != nil {
			return nil, fmt.Errorf("init backend contract: %w", err)
		}
	}
	client := ledgerapi.NewWithOptions(cfg.BackendURL, ledgerapi.Options{
		Timeout:            time.Duration(cfg.BackendTimeoutSeconds) * time.Second,
		ResilienceExecutor: resilience.NewExecutor(backendPolicy),
		Contract:           contract,
	})

	files, err := localfs.New(cfg.UploadSpoolPath, cfg.UploadMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("init upload spool: %w", err)
	}

	board := notice.NewBoard(cfg.NoticeCapacity)
	notifiers := notice.Fanout{board}

	var queue *nats.Queue
	if cfg.NATSURL != "" {
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
			ClientName:         service,
		})
		if err != nil {
			return nil, fmt.Errorf("init notice queue: %w", err)
		}
		notifiers = append(notifiers, queue)
	}

	uploads := usecase.NewUploadCoordinator(client, notifiers, usecase.UploadOptions{
		Tag:      cfg.UploadTag,
		Limits:   UploadLimits(cfg),
		Observer: dashboardMetrics,
	})
	dashboard := usecase.NewDashboardController(
		usecase.NewFetchSnapshotUseCase(client),
		uploads,
		client,
		dashboardMetrics,
	)

	slog.Info("dashboard_wired",
		"backend_url", cfg.BackendURL,
		"contract_validation", contract != nil,
		"nats_enabled", queue != nil,
		"upload_tag", cfg.UploadTag,
	)

	return &App{
		Config:    cfg,
		Dashboard: dashboard,
		Notices:   board,
		Files:     files,
		Queue:     queue,
		Metrics:   httpMetrics,
		Render:    render,

		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// View renders the current dashboard state with pending notices.
func (a *App) View() presentation.View {
	return presentation.Render(a.Dashboard.View(), a.Notices.List(), a.Render)
}

var _ ports.Dashboard = (*usecase.DashboardController)(nil)

func ResilienceConfig(cfg config.Config) resilience.Config {
	policy := resilience.DefaultConfig()
	policy.BreakerEnabled = cfg.BackendBreakerEnabled
	if cfg.BackendBreakerMinRequests > 0 {
		policy.BreakerMinRequests = uint32(cfg.BackendBreakerMinRequests)
	}
	policy.BreakerFailureRatio = cfg.BackendBreakerFailureRatio
	policy.BreakerOpenTimeout = time.Duration(cfg.BackendBreakerOpenTimeoutSeconds) * time.Second
	// Only reads are ever retried; uploads stream a one-shot body.
	if cfg.BackendRetryMaxAttempts > 0 {
		policy.RetryMaxAttempts = cfg.BackendRetryMaxAttempts
	}
	if cfg.BackendRetryInitialBackoffMS > 0 {
		policy.RetryInitialBackoff = time.Duration(cfg.BackendRetryInitialBackoffMS) * time.Millisecond
	}
	if cfg.BackendRetryMaxBackoffMS > 0 {
		policy.RetryMaxBackoff = time.Duration(cfg.BackendRetryMaxBackoffMS) * time.Millisecond
	}
	return policy
}

func UploadLimits(cfg config.Config) domain.UploadLimits {
	limits := domain.DefaultUploadLimits()
	if cfg.UploadMaxBytes > 0 {
		limits.MaxBytes = cfg.UploadMaxBytes
	}
	if len(cfg.UploadAllowedExtensions) > 0 {
		limits.AllowedExtensions = cfg.UploadAllowedExtensions
	}
	return limits
}

func RenderOptions(cfg config.Config) (presentation.Options, error) {
	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		return presentation.Options{}, fmt.Errorf("load display timezone %q: %w", cfg.DisplayTimezone, err)
	}
	return presentation.Options{
		TopN:          cfg.DisplayTopN,
		RiskThreshold: cfg.RiskElevatedThreshold,
		Location:      loc,
		DateLayout:    cfg.DisplayDateLayout,
		Version:       presentation.DefaultVersion,
	}, nil
}
