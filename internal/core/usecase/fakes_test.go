package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
)

type backendFake struct {
	mu sync.Mutex

	stats     domain.StatsSnapshot
	documents []domain.Document
	alerts    []domain.Alert

	statsErr  error
	docsErr   error
	alertsErr error
	uploadErr error

	uploadStarted chan struct{}
	uploadRelease chan struct{}

	uploads      int
	uploadedName string
	uploadedTag  string
	uploadedBody string
}

func (f *backendFake) GetStats(context.Context) (domain.StatsSnapshot, error) {
	if f.statsErr != nil {
		return domain.StatsSnapshot{}, f.statsErr
	}
	return f.stats, nil
}

func (f *backendFake) ListDocuments(context.Context) ([]domain.Document, error) {
	if f.docsErr != nil {
		return nil, f.docsErr
	}
	return f.documents, nil
}

func (f *backendFake) ListAlerts(context.Context) ([]domain.Alert, error) {
	if f.alertsErr != nil {
		return nil, f.alertsErr
	}
	return f.alerts, nil
}

func (f *backendFake) UploadDocument(_ context.Context, filename, tag string, body io.Reader) error {
	if f.uploadStarted != nil {
		f.uploadStarted <- struct{}{}
	}
	if f.uploadRelease != nil {
		<-f.uploadRelease
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploadedName = filename
	f.uploadedTag = tag
	f.uploadedBody = string(raw)
	return nil
}

func (f *backendFake) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (r *noticeRecorder) Notify(_ context.Context, notice domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

func (r *noticeRecorder) all() []domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notice(nil), r.notices...)
}

// scriptedFetcher returns the result of calls[i] for the i-th FetchSnapshot call.
type scriptedFetcher struct {
	mu    sync.Mutex
	calls []func(context.Context) (domain.Snapshot, error)
	count int
}

func (f *scriptedFetcher) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	f.mu.Lock()
	idx := f.count
	f.count++
	f.mu.Unlock()

	if idx >= len(f.calls) {
		return domain.Snapshot{}, errors.New("unexpected fetch call")
	}
	return f.calls[idx](ctx)
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func textFile(name, content string) domain.SelectedFile {
	return domain.SelectedFile{
		Name: name,
		Size: int64(len(content)),
		Open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func snapshotWithDocs(filenames ...string) domain.Snapshot {
	docs := make([]domain.Document, 0, len(filenames))
	for i, name := range filenames {
		docs = append(docs, domain.Document{
			ID:       domain.ID(string(rune('a' + i))),
			Filename: name,
			Status:   domain.StatusPending,
		})
	}
	return domain.Snapshot{
		Stats: domain.StatsSnapshot{
			Documents: domain.DocumentStats{Total: len(docs), Pending: len(docs)},
		},
		Documents: docs,
		Alerts:    []domain.Alert{},
	}
}

func okFetch(snapshot domain.Snapshot) func(context.Context) (domain.Snapshot, error) {
	return func(context.Context) (domain.Snapshot, error) {
		return snapshot, nil
	}
}
