package ports

import (
	"context"
	"io"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
)

// LedgerBackend is the read/write contract of the ledger backend API.
type LedgerBackend interface {
	GetStats(ctx context.Context) (domain.StatsSnapshot, error)
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	ListAlerts(ctx context.Context) ([]domain.Alert, error)
	UploadDocument(ctx context.Context, filename, tag string, body io.Reader) error
}

// HealthChecker probes backend liveness outside of the snapshot cycle.
type HealthChecker interface {
	Health(ctx context.Context) (domain.Health, error)
}

// Notifier surfaces upload outcomes to the operator.
type Notifier interface {
	Notify(ctx context.Context, notice domain.Notice)
}

// FileSource turns operator input into selectable file handles. A spooled file stays
// pending until it is committed as the current selection or discarded.
type FileSource interface {
	Spool(ctx context.Context, filename string, data io.Reader) (domain.SelectedFile, error)
	Stat(ctx context.Context, path string) (domain.SelectedFile, error)
	Commit(file domain.SelectedFile)
	Discard(file domain.SelectedFile)
}
