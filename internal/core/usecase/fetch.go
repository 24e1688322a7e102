package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/core/ports"
)

type FetchSnapshotUseCase struct {
	backend ports.LedgerBackend
}

func NewFetchSnapshotUseCase(backend ports.LedgerBackend) *FetchSnapshotUseCase {
	return &FetchSnapshotUseCase{backend: backend}
}

// FetchSnapshot issues the stats, documents and alerts reads concurrently and returns
// them only if all three succeed.
func (uc *FetchSnapshotUseCase) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	var (
		stats     domain.StatsSnapshot
		documents []domain.Document
		alerts    []domain.Alert
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = uc.backend.GetStats(gctx)
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		documents, err = uc.backend.ListDocuments(gctx)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		alerts, err = uc.backend.ListAlerts(gctx)
		if err != nil {
			return fmt.Errorf("list alerts: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, domain.WrapError(domain.ErrFetch, "fetch snapshot", err)
	}

	if documents == nil {
		documents = []domain.Document{}
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return domain.Snapshot{
		Stats:     stats,
		Documents: documents,
		Alerts:    alerts,
	}, nil
}
