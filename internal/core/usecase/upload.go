package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/core/ports"
)

const (
	DefaultUploadTag = "contract"

	uploadSucceededMessage = "Document uploaded successfully!"
	uploadFailedMessage    = "Upload failed!"
)

// UploadCoordinator runs the Idle -> FileSelected -> Uploading state machine.
// At most one upload is in flight per coordinator.
type UploadCoordinator struct {
	backend  ports.LedgerBackend
	notifier ports.Notifier
	observer ports.DashboardObserver
	limits   domain.UploadLimits
	tag      string
	now      func() time.Time

	mu       sync.Mutex
	state    domain.UploadState
	selected *domain.SelectedFile
}

type UploadOptions struct {
	Tag      string
	Limits   domain.UploadLimits
	Observer ports.DashboardObserver
}

func NewUploadCoordinator(
	backend ports.LedgerBackend,
	notifier ports.Notifier,
	options UploadOptions,
) *UploadCoordinator {
	tag := options.Tag
	if tag == "" {
		tag = DefaultUploadTag
	}
	limits := options.Limits
	if limits.MaxBytes <= 0 && len(limits.AllowedExtensions) == 0 {
		limits = domain.DefaultUploadLimits()
	}
	observer := options.Observer
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &UploadCoordinator{
		backend:  backend,
		notifier: notifier,
		observer: observer,
		limits:   limits,
		tag:      tag,
		now:      time.Now,
		state:    domain.UploadIdle,
	}
}

func (uc *UploadCoordinator) Limits() domain.UploadLimits {
	return uc.limits
}

// State returns the current state and a copy of the selected file, if any.
func (uc *UploadCoordinator) State() (domain.UploadState, *domain.SelectedFile) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.selected == nil {
		return uc.state, nil
	}
	file := *uc.selected
	return uc.state, &file
}

// Select holds file for a later Submit. Files outside the limits are rejected and the
// previous selection is kept.
func (uc *UploadCoordinator) Select(file domain.SelectedFile) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.state == domain.UploadInProgress {
		return domain.WrapError(domain.ErrUploadInFlight, "select file", fmt.Errorf("%s", file.Name))
	}
	if err := uc.limits.Check(file); err != nil {
		return err
	}
	if file.Selected.IsZero() {
		file.Selected = uc.now().UTC()
	}
	uc.selected = &file
	uc.state = domain.UploadFileSelected
	return nil
}

func (uc *UploadCoordinator) Clear() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.state == domain.UploadInProgress {
		return domain.WrapError(domain.ErrUploadInFlight, "clear selection", fmt.Errorf("upload running"))
	}
	uc.selected = nil
	uc.state = domain.UploadIdle
	return nil
}

// Submit uploads the selected file. With nothing selected it returns UploadSkipped and
// changes nothing. A second Submit while one is running fails with ErrUploadInFlight.
func (uc *UploadCoordinator) Submit(ctx context.Context) (domain.UploadOutcome, error) {
	uc.mu.Lock()
	switch uc.state {
	case domain.UploadIdle:
		uc.mu.Unlock()
		return domain.UploadSkipped, nil
	case domain.UploadInProgress:
		uc.mu.Unlock()
		return "", domain.WrapError(domain.ErrUploadInFlight, "submit upload", fmt.Errorf("rejected concurrent submit"))
	}
	if uc.selected == nil {
		uc.state = domain.UploadIdle
		uc.mu.Unlock()
		return domain.UploadSkipped, nil
	}
	file := *uc.selected
	if err := uc.limits.Check(file); err != nil {
		uc.mu.Unlock()
		return "", err
	}
	uc.state = domain.UploadInProgress
	uc.mu.Unlock()

	uc.observer.SetUploadInFlight(true)
	start := time.Now()
	err := uc.send(ctx, file)
	uc.observer.SetUploadInFlight(false)

	uc.mu.Lock()
	if err == nil {
		uc.selected = nil
		uc.state = domain.UploadIdle
	} else {
		uc.state = domain.UploadFileSelected
	}
	uc.mu.Unlock()

	if err != nil {
		slog.Warn("upload_failed", "filename", file.Name, "size", file.Size, "error", err)
		uc.observer.ObserveUpload(string(domain.UploadFailed), time.Since(start))
		uc.notify(ctx, domain.NoticeFailure, uploadFailedMessage, file.Name)
		return domain.UploadFailed, domain.WrapError(domain.ErrUpload, "submit upload", err)
	}

	slog.Info("upload_succeeded", "filename", file.Name, "size", file.Size, "tag", uc.tag)
	uc.observer.ObserveUpload(string(domain.UploadSucceeded), time.Since(start))
	uc.notify(ctx, domain.NoticeSuccess, uploadSucceededMessage, file.Name)
	return domain.UploadSucceeded, nil
}

func (uc *UploadCoordinator) send(ctx context.Context, file domain.SelectedFile) error {
	if file.Open == nil {
		return fmt.Errorf("file %s has no content", file.Name)
	}
	body, err := file.Open(ctx)
	if err != nil {
		return fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer body.Close()

	return uc.backend.UploadDocument(ctx, file.Name, uc.tag, body)
}

func (uc *UploadCoordinator) notify(ctx context.Context, level domain.NoticeLevel, message, filename string) {
	if uc.notifier == nil {
		return
	}
	uc.notifier.Notify(ctx, domain.Notice{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Filename:  filename,
		CreatedAt: uc.now().UTC(),
	})
}
