package notice

import (
	"context"
	"fmt"
	"testing"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
)

func TestBoardListsNewestFirstAndDismisses(t *testing.T) {
	board := NewBoard(5)
	board.Notify(context.Background(), domain.Notice{ID: "a", Message: "first"})
	board.Notify(context.Background(), domain.Notice{ID: "b", Message: "second"})

	got := board.List()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("unexpected order: %+v", got)
	}

	if err := board.Dismiss("b"); err != nil {
		t.Fatalf("Dismiss() error = %v", err)
	}
	if got := board.List(); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected notices after dismiss: %+v", got)
	}
	if err := board.Dismiss("b"); !domain.IsKind(err, domain.ErrNoticeNotFound) {
		t.Fatalf("expected ErrNoticeNotFound, got %v", err)
	}
}

func TestBoardDropsOldestBeyondCapacity(t *testing.T) {
	board := NewBoard(3)
	for i := 0; i < 5; i++ {
		board.Notify(context.Background(), domain.Notice{ID: fmt.Sprint(i)})
	}
	got := board.List()
	if len(got) != 3 || got[0].ID != "4" || got[2].ID != "2" {
		t.Fatalf("unexpected notices: %+v", got)
	}
}

func TestFanoutDeliversToAll(t *testing.T) {
	first, second := NewBoard(2), NewBoard(2)
	Fanout{first, nil, second}.Notify(context.Background(), domain.Notice{ID: "x"})
	if len(first.List()) != 1 || len(second.List()) != 1 {
		t.Fatalf("expected notice on both boards")
	}
}
