package domain

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

type UploadState string

const (
	UploadIdle         UploadState = "idle"
	UploadFileSelected UploadState = "file_selected"
	UploadInProgress   UploadState = "uploading"
)

type UploadOutcome string

const (
	UploadSkipped   UploadOutcome = "skipped"
	UploadSucceeded UploadOutcome = "succeeded"
	UploadFailed    UploadOutcome = "failed"
)

// SelectedFile is a handle to an operator-chosen file. Content is opened lazily
// so a failed upload can be retried without reselecting.
type SelectedFile struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mime_type,omitempty"`
	Pages    int       `json:"pages,omitempty"`
	Selected time.Time `json:"selected_at"`

	// SpoolKey identifies a spooled copy owned by the file source; empty for files
	// referenced in place.
	SpoolKey string `json:"-"`

	Open func(ctx context.Context) (io.ReadCloser, error) `json:"-"`
}

func (f SelectedFile) Extension() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// UploadLimits are advisory client-side limits; the backend stays authoritative.
type UploadLimits struct {
	AllowedExtensions []string `json:"allowed_extensions"`
	MaxBytes          int64    `json:"max_bytes"`
}

func DefaultUploadLimits() UploadLimits {
	return UploadLimits{
		AllowedExtensions: []string{".pdf", ".doc", ".docx", ".txt", ".csv"},
		MaxBytes:          50 << 20,
	}
}

func (l UploadLimits) Check(file SelectedFile) error {
	if strings.TrimSpace(file.Name) == "" {
		return WrapError(ErrInvalidInput, "check upload", fmt.Errorf("file name is empty"))
	}
	if l.MaxBytes > 0 && file.Size > l.MaxBytes {
		return WrapError(ErrInvalidInput, "check upload",
			fmt.Errorf("%s is %d bytes, limit is %d", file.Name, file.Size, l.MaxBytes))
	}
	if len(l.AllowedExtensions) == 0 {
		return nil
	}
	ext := file.Extension()
	for _, allowed := range l.AllowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return nil
		}
	}
	return WrapError(ErrInvalidInput, "check upload",
		fmt.Errorf("%s: unsupported format %q", file.Name, ext))
}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeFailure NoticeLevel = "failure"
)

// Notice is a user-visible outcome message.
type Notice struct {
	ID        string      `json:"id"`
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	Filename  string      `json:"filename,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
