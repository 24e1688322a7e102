package localfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
)

// Storage spools operator uploads to local disk and hands them out as selectable files.
// Only the committed selection is kept; a newer spool replaces it on Commit.
type Storage struct {
	basePath string
	maxBytes int64
	now      func() time.Time

	mu      sync.Mutex
	current string
}

func New(basePath string, maxBytes int64) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/spool"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Storage{basePath: basePath, maxBytes: maxBytes, now: time.Now}, nil
}

// Spool copies data to a new file under the spool dir. Input larger than the configured
// limit is rejected before it is fully written.
func (s *Storage) Spool(ctx context.Context, filename string, data io.Reader) (domain.SelectedFile, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return domain.SelectedFile{}, domain.WrapError(domain.ErrInvalidInput, "spool file", fmt.Errorf("file name is empty"))
	}

	path := filepath.Join(s.basePath, uuid.NewString()+strings.ToLower(filepath.Ext(name)))
	f, err := os.Create(path)
	if err != nil {
		return domain.SelectedFile{}, fmt.Errorf("create file: %w", err)
	}

	src := data
	if s.maxBytes > 0 {
		src = io.LimitReader(data, s.maxBytes+1)
	}
	written, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return domain.SelectedFile{}, fmt.Errorf("write file: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		_ = os.Remove(path)
		return domain.SelectedFile{}, domain.WrapError(domain.ErrInvalidInput, "spool file",
			fmt.Errorf("%s exceeds the %d byte limit", name, s.maxBytes))
	}

	file := s.describe(ctx, name, path, written)
	file.SpoolKey = path
	return file, nil
}

// Commit makes a spooled file the current selection and removes the previous one.
// Files from Stat are left alone.
func (s *Storage) Commit(file domain.SelectedFile) {
	if file.SpoolKey == "" {
		return
	}
	s.mu.Lock()
	previous := s.current
	s.current = file.SpoolKey
	s.mu.Unlock()
	if previous != "" && previous != file.SpoolKey {
		_ = os.Remove(previous)
	}
}

// Discard removes a spooled file that was never selected. The current selection is kept.
func (s *Storage) Discard(file domain.SelectedFile) {
	if file.SpoolKey == "" {
		return
	}
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if file.SpoolKey != current {
		_ = os.Remove(file.SpoolKey)
	}
}

// Stat describes an existing local file without copying it.
func (s *Storage) Stat(ctx context.Context, path string) (domain.SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.SelectedFile{}, domain.WrapError(domain.ErrInvalidInput, "stat file", err)
	}
	if !info.Mode().IsRegular() {
		return domain.SelectedFile{}, domain.WrapError(domain.ErrInvalidInput, "stat file",
			fmt.Errorf("%s is not a regular file", path))
	}
	return s.describe(ctx, filepath.Base(path), path, info.Size()), nil
}

func (s *Storage) describe(ctx context.Context, name, path string, size int64) domain.SelectedFile {
	file := domain.SelectedFile{
		Name:     name,
		Size:     size,
		MimeType: mime.TypeByExtension(strings.ToLower(filepath.Ext(name))),
		Selected: s.now().UTC(),
		Open: func(context.Context) (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("open file: %w", err)
			}
			return f, nil
		},
	}
	if file.Extension() == ".pdf" {
		pages, err := countPDFPages(path, size)
		if err != nil {
			slog.WarnContext(ctx, "pdf_inspection_failed", "file", name, "error", err)
		}
		file.Pages = pages
	}
	return file
}

// countPDFPages is advisory; the backend decides whether the document is acceptable.
func countPDFPages(path string, size int64) (pages int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("parse pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(f, size)
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return reader.NumPage(), nil
}
