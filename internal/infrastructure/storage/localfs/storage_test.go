package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
)

func TestSpoolWritesFileAndOpensIt(t *testing.T) {
	dir := t.TempDir()
	storage, err := New(dir, 1024)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	file, err := storage.Spool(context.Background(), "../../etc/contract.TXT", strings.NewReader("hello ledger"))
	if err != nil {
		t.Fatalf("Spool() error = %v", err)
	}
	if file.Name != "contract.TXT" || file.Size != int64(len("hello ledger")) {
		t.Fatalf("unexpected file: %+v", file)
	}
	if file.Extension() != ".txt" {
		t.Fatalf("extension = %q", file.Extension())
	}

	rc, err := file.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	raw, _ := io.ReadAll(rc)
	if string(raw) != "hello ledger" {
		t.Fatalf("unexpected content %q", raw)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected one spooled file, got %d", len(entries))
	}
}

func TestSpoolRejectsOversizeInput(t *testing.T) {
	dir := t.TempDir()
	storage, err := New(dir, 8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = storage.Spool(context.Background(), "big.csv", strings.NewReader("0123456789"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("oversize spool must be removed, found %d files", len(entries))
	}
}

func TestCommitReplacesPreviousSelection(t *testing.T) {
	dir := t.TempDir()
	storage, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first, err := storage.Spool(context.Background(), "a.txt", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Spool() error = %v", err)
	}
	storage.Commit(first)
	second, err := storage.Spool(context.Background(), "b.txt", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("Spool() error = %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("spooling must not touch the committed file, got %d files", len(entries))
	}
	storage.Commit(second)
	entries, _ = os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected previous selection removed, got %d files", len(entries))
	}
	if _, err := first.Open(context.Background()); err == nil {
		t.Fatalf("replaced file must be gone")
	}
}

func TestDiscardKeepsCommittedFile(t *testing.T) {
	dir := t.TempDir()
	storage, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	held, err := storage.Spool(context.Background(), "a.txt", strings.NewReader("held"))
	if err != nil {
		t.Fatalf("Spool() error = %v", err)
	}
	storage.Commit(held)
	rejected, err := storage.Spool(context.Background(), "b.exe", strings.NewReader("MZ"))
	if err != nil {
		t.Fatalf("Spool() error = %v", err)
	}
	storage.Discard(rejected)
	storage.Discard(held)

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the committed file, got %d files", len(entries))
	}
	rc, err := held.Open(context.Background())
	if err != nil {
		t.Fatalf("committed file must stay readable: %v", err)
	}
	defer rc.Close()
	raw, _ := io.ReadAll(rc)
	if string(raw) != "held" {
		t.Fatalf("unexpected content %q", raw)
	}
}

func TestCommitIgnoresFilesReferencedInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.txt")
	if err := os.WriteFile(path, []byte("mine"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	storage, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	file, err := storage.Stat(context.Background(), path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	storage.Commit(file)
	storage.Discard(file)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("operator file must never be removed: %v", err)
	}
}

func TestStatDescribesLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.pdf")
	if err := os.WriteFile(path, []byte("not really a pdf"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	storage, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	file, err := storage.Stat(context.Background(), path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if file.Name != "memo.pdf" || file.Size != 16 || file.Pages != 0 {
		t.Fatalf("unexpected file: %+v", file)
	}
	if file.MimeType != "application/pdf" {
		t.Fatalf("mime type = %q", file.MimeType)
	}

	if _, err := storage.Stat(context.Background(), dir); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("directory must be rejected, got %v", err)
	}
	if _, err := storage.Stat(context.Background(), filepath.Join(dir, "missing.txt")); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("missing file must be rejected, got %v", err)
	}
}
