package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/core/ports"
)

// DashboardController owns the ViewState. Every fetch cycle gets a sequence number when
// it starts; a completion is applied only when it is newer than the last applied one.
type DashboardController struct {
	fetcher  ports.SnapshotFetcher
	uploads  *UploadCoordinator
	health   ports.HealthChecker
	observer ports.DashboardObserver
	now      func() time.Time

	mu      sync.Mutex
	state   domain.ViewState
	started uint64
	applied uint64
}

func NewDashboardController(
	fetcher ports.SnapshotFetcher,
	uploads *UploadCoordinator,
	health ports.HealthChecker,
	observer ports.DashboardObserver,
) *DashboardController {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &DashboardController{
		fetcher:  fetcher,
		uploads:  uploads,
		health:   health,
		observer: observer,
		now:      time.Now,
		state:    domain.NewViewState(uploads.Limits()),
	}
}

// Initialize runs the first fetch cycle. Loading is cleared whatever the outcome.
func (c *DashboardController) Initialize(ctx context.Context) {
	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	func() {
		defer func() {
			c.mu.Lock()
			c.state.Loading = false
			c.mu.Unlock()
		}()
		_ = c.runCycle(ctx)
	}()

	c.CheckHealth(ctx)
}

// Refresh runs one fetch cycle and reports its error, if any.
func (c *DashboardController) Refresh(ctx context.Context) error {
	return c.runCycle(ctx)
}

func (c *DashboardController) Select(file domain.SelectedFile) error {
	return c.uploads.Select(file)
}

func (c *DashboardController) ClearSelection() error {
	return c.uploads.Clear()
}

// Upload submits the selected file and, on success, runs exactly one fetch cycle.
// A failed refresh after a successful upload is recorded on the view, not returned.
func (c *DashboardController) Upload(ctx context.Context) (domain.UploadOutcome, error) {
	outcome, err := c.uploads.Submit(ctx)
	if err != nil || outcome != domain.UploadSucceeded {
		return outcome, err
	}
	if refreshErr := c.runCycle(ctx); refreshErr != nil {
		slog.Warn("refresh_after_upload_failed", "error", refreshErr)
	}
	return outcome, nil
}

func (c *DashboardController) CheckHealth(ctx context.Context) {
	if c.health == nil {
		return
	}
	health, err := c.health.Health(ctx)
	if err != nil {
		slog.Warn("health_check_failed", "error", err)
		health = domain.Health{Status: domain.HealthDegraded}
	}
	if health.CheckedAt.IsZero() {
		health.CheckedAt = c.now().UTC()
	}

	c.mu.Lock()
	c.state.Health = health
	c.mu.Unlock()
}

// PollHealth checks backend health every interval until ctx is done.
func (c *DashboardController) PollHealth(ctx context.Context, interval time.Duration) {
	if c.health == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckHealth(ctx)
		}
	}
}

// View returns a copy of the current state that callers may keep.
func (c *DashboardController) View() domain.ViewState {
	uploadState, selected := c.uploads.State()

	c.mu.Lock()
	view := c.state
	snapshot := c.state.Snapshot().Clone()
	c.mu.Unlock()

	view.Stats = snapshot.Stats
	view.Documents = snapshot.Documents
	view.Alerts = snapshot.Alerts
	view.UploadState = uploadState
	view.Uploading = uploadState == domain.UploadInProgress
	view.SelectedFile = selected
	if view.Health.Services != nil {
		services := make(map[string]string, len(view.Health.Services))
		for k, v := range view.Health.Services {
			services[k] = v
		}
		view.Health.Services = services
	}
	return view
}

func (c *DashboardController) runCycle(ctx context.Context) error {
	c.mu.Lock()
	c.started++
	cycle := c.started
	c.mu.Unlock()

	start := time.Now()
	snapshot, err := c.fetcher.FetchSnapshot(ctx)
	duration := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cycle <= c.applied {
		c.observer.ObserveStaleCycle(outcome)
		slog.Info("fetch_cycle_stale", "cycle", cycle, "applied", c.applied, "outcome", outcome)
		return err
	}
	c.applied = cycle
	c.observer.ObserveFetchCycle(outcome, duration)

	if err != nil {
		c.state.LastFetchError = err.Error()
		slog.Error("fetch_cycle_failed", "cycle", cycle, "duration_ms", float64(duration.Microseconds())/1000.0, "error", err)
		return err
	}

	c.state.Stats = snapshot.Stats
	c.state.Documents = snapshot.Documents
	c.state.Alerts = snapshot.Alerts
	c.state.Cycle = cycle
	c.state.RefreshedAt = c.now().UTC()
	c.state.LastFetchError = ""
	return nil
}
