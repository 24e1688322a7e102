package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
)

type healthFake struct {
	health domain.Health
	err    error
}

func (f healthFake) Health(context.Context) (domain.Health, error) {
	return f.health, f.err
}

func newController(fetcher *scriptedFetcher, backend *backendFake) (*DashboardController, *noticeRecorder) {
	notices := &noticeRecorder{}
	uploads := NewUploadCoordinator(backend, notices, UploadOptions{})
	return NewDashboardController(fetcher, uploads, nil, nil), notices
}

func TestNewControllerStartsLoadingAndEmpty(t *testing.T) {
	controller, _ := newController(&scriptedFetcher{}, &backendFake{})

	view := controller.View()
	if !view.Loading {
		t.Fatalf("expected loading before initialization")
	}
	if view.Documents == nil || view.Alerts == nil || len(view.Documents) != 0 {
		t.Fatalf("expected empty collections, got %+v", view)
	}
	if view.UploadState != domain.UploadIdle {
		t.Fatalf("expected idle upload state, got %s", view.UploadState)
	}
}

func TestInitializeFailureClearsLoading(t *testing.T) {
	fetcher := &scriptedFetcher{calls: []func(context.Context) (domain.Snapshot, error){
		func(context.Context) (domain.Snapshot, error) {
			return domain.Snapshot{}, domain.WrapError(domain.ErrFetch, "fetch snapshot", errors.New("connection refused"))
		},
	}}
	controller, _ := newController(fetcher, &backendFake{})

	controller.Initialize(context.Background())

	view := controller.View()
	if view.Loading {
		t.Fatalf("expected loading cleared after failed fetch")
	}
	if len(view.Documents) != 0 || len(view.Alerts) != 0 {
		t.Fatalf("expected empty panels, got %+v", view)
	}
	if view.LastFetchError == "" {
		t.Fatalf("expected fetch error recorded")
	}
}

func TestInitializeAppliesSnapshot(t *testing.T) {
	fetcher := &scriptedFetcher{calls: []func(context.Context) (domain.Snapshot, error){
		okFetch(snapshotWithDocs("a.pdf", "b.pdf")),
	}}
	notices := &noticeRecorder{}
	uploads := NewUploadCoordinator(&backendFake{}, notices, UploadOptions{})
	controller := NewDashboardController(fetcher, uploads, healthFake{health: domain.Health{Status: domain.HealthHealthy}}, nil)

	controller.Initialize(context.Background())

	view := controller.View()
	if view.Loading || view.Cycle != 1 {
		t.Fatalf("expected first cycle applied, got loading=%v cycle=%d", view.Loading, view.Cycle)
	}
	if len(view.Documents) != 2 || view.Stats.Documents.Total != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Health.Status != domain.HealthHealthy {
		t.Fatalf("expected healthy status, got %s", view.Health.Status)
	}
}

func TestFailedRefreshKeepsLastConsistentSnapshot(t *testing.T) {
	fetcher := &scriptedFetcher{calls: []func(context.Context) (domain.Snapshot, error){
		okFetch(snapshotWithDocs("a.pdf")),
		func(context.Context) (domain.Snapshot, error) {
			return domain.Snapshot{}, errors.New("boom")
		},
	}}
	controller, _ := newController(fetcher, &backendFake{})
	controller.Initialize(context.Background())

	if err := controller.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh error")
	}
	view := controller.View()
	if len(view.Documents) != 1 || view.Stats.Documents.Total != 1 {
		t.Fatalf("expected previous snapshot kept, got %+v", view)
	}
}

func TestUploadSuccessTriggersExactlyOneFetch(t *testing.T) {
	fetcher := &scriptedFetcher{calls: []func(context.Context) (domain.Snapshot, error){
		okFetch(snapshotWithDocs()),
		okFetch(snapshotWithDocs("new.pdf")),
	}}
	controller, _ := newController(fetcher, &backendFake{})
	controller.Initialize(context.Background())

	if err := controller.Select(textFile("new.pdf", "%PDF-1.4")); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got := controller.View(); got.SelectedFile == nil || got.UploadState != domain.UploadFileSelected {
		t.Fatalf("expected selection visible in view, got %+v", got)
	}

	outcome, err := controller.Upload(context.Background())
	if err != nil || outcome != domain.UploadSucceeded {
		t.Fatalf("Upload() = %s, %v", outcome, err)
	}
	if fetcher.callCount() != 2 {
		t.Fatalf("expected exactly one fetch after upload, got %d total", fetcher.callCount())
	}
	view := controller.View()
	if view.SelectedFile != nil {
		t.Fatalf("expected selection cleared")
	}
	if len(view.Documents) != 1 || view.Documents[0].Filename != "new.pdf" {
		t.Fatalf("expected refreshed documents, got %+v", view.Documents)
	}
}

func TestUploadFailureDoesNotFetch(t *testing.T) {
	fetcher := &scriptedFetcher{calls: []func(context.Context) (domain.Snapshot, error){
		okFetch(snapshotWithDocs()),
	}}
	controller, notices := newController(fetcher, &backendFake{uploadErr: errors.New("rejected")})
	controller.Initialize(context.Background())
	if err := controller.Select(textFile("a.txt", "x")); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	outcome, err := controller.Upload(context.Background())
	if outcome != domain.UploadFailed || !domain.IsKind(err, domain.ErrUpload) {
		t.Fatalf("Upload() = %s, %v", outcome, err)
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("expected no fetch after failed upload, got %d total", fetcher.callCount())
	}
	view := controller.View()
	if view.SelectedFile == nil || view.UploadState != domain.UploadFileSelected {
		t.Fatalf("expected selection preserved, got %+v", view)
	}
	if len(notices.all()) != 1 {
		t.Fatalf("expected failure notice")
	}
}

func TestStaleCycleDoesNotOverwriteNewerCycle(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	fetcher := &scriptedFetcher{calls: []func(context.Context) (domain.Snapshot, error){
		func(context.Context) (domain.Snapshot, error) {
			close(firstStarted)
			<-releaseFirst
			return snapshotWithDocs("old.pdf"), nil
		},
		okFetch(snapshotWithDocs("new-1.pdf", "new-2.pdf")),
	}}
	controller, _ := newController(fetcher, &backendFake{})

	done := make(chan error, 1)
	go func() {
		done <- controller.Refresh(context.Background())
	}()
	<-firstStarted

	if err := controller.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	close(releaseFirst)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first Refresh() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for first cycle")
	}

	view := controller.View()
	if view.Cycle != 2 {
		t.Fatalf("expected cycle 2 applied, got %d", view.Cycle)
	}
	if len(view.Documents) != 2 || view.Documents[0].Filename != "new-1.pdf" {
		t.Fatalf("expected later-started cycle data, got %+v", view.Documents)
	}
}

func TestStaleFailureDoesNotRecordError(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	fetcher := &scriptedFetcher{calls: []func(context.Context) (domain.Snapshot, error){
		func(context.Context) (domain.Snapshot, error) {
			close(firstStarted)
			<-releaseFirst
			return domain.Snapshot{}, errors.New("late failure")
		},
		okFetch(snapshotWithDocs("fresh.pdf")),
	}}
	controller, _ := newController(fetcher, &backendFake{})

	done := make(chan error, 1)
	go func() {
		done <- controller.Refresh(context.Background())
	}()
	<-firstStarted
	if err := controller.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	close(releaseFirst)
	<-done

	view := controller.View()
	if view.LastFetchError != "" {
		t.Fatalf("expected stale failure ignored, got %q", view.LastFetchError)
	}
	if len(view.Documents) != 1 {
		t.Fatalf("expected fresh data kept, got %+v", view.Documents)
	}
}

func TestViewReturnsIndependentCopy(t *testing.T) {
	fetcher := &scriptedFetcher{calls: []func(context.Context) (domain.Snapshot, error){
		okFetch(snapshotWithDocs("a.pdf")),
	}}
	controller, _ := newController(fetcher, &backendFake{})
	controller.Initialize(context.Background())

	view := controller.View()
	view.Documents[0].Filename = "mutated"

	if controller.View().Documents[0].Filename != "a.pdf" {
		t.Fatalf("view mutation leaked into controller state")
	}
}

func TestCheckHealthMarksDegradedOnError(t *testing.T) {
	uploads := NewUploadCoordinator(&backendFake{}, nil, UploadOptions{})
	controller := NewDashboardController(&scriptedFetcher{}, uploads, healthFake{err: errors.New("down")}, nil)

	controller.CheckHealth(context.Background())

	if got := controller.View().Health.Status; got != domain.HealthDegraded {
		t.Fatalf("expected degraded, got %s", got)
	}
}
