package ports

import (
	"context"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
)

// SnapshotFetcher produces one atomic snapshot of the three backend collections.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (domain.Snapshot, error)
}

// Dashboard is the inbound contract used by the operator-facing adapters.
type Dashboard interface {
	Initialize(ctx context.Context)
	Refresh(ctx context.Context) error
	CheckHealth(ctx context.Context)
	Select(file domain.SelectedFile) error
	ClearSelection() error
	Upload(ctx context.Context) (domain.UploadOutcome, error)
	View() domain.ViewState
}

// NoticeBoard lists and dismisses outcome notices.
type NoticeBoard interface {
	List() []domain.Notice
	Dismiss(id string) error
}
