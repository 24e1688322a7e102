package notice

import (
	"context"
	"fmt"
	"sync"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/core/ports"
)

const DefaultCapacity = 20

// Board keeps the most recent outcome notices in memory until they are dismissed.
type Board struct {
	capacity int

	mu    sync.Mutex
	items []domain.Notice
}

func NewBoard(capacity int) *Board {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Board{capacity: capacity}
}

func (b *Board) Notify(_ context.Context, n domain.Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
	if over := len(b.items) - b.capacity; over > 0 {
		b.items = append([]domain.Notice(nil), b.items[over:]...)
	}
}

// List returns pending notices, newest first.
func (b *Board) List() []domain.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Notice, 0, len(b.items))
	for i := len(b.items) - 1; i >= 0; i-- {
		out = append(out, b.items[i])
	}
	return out
}

func (b *Board) Dismiss(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, n := range b.items {
		if n.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return nil
		}
	}
	return domain.WrapError(domain.ErrNoticeNotFound, "dismiss notice", fmt.Errorf("id %q", id))
}

// Fanout delivers every notice to each notifier in order.
type Fanout []ports.Notifier

func (f Fanout) Notify(ctx context.Context, n domain.Notice) {
	for _, notifier := range f {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}
