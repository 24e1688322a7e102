package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFetch          = errors.New("fetch snapshot failed")
	ErrUpload         = errors.New("upload failed")
	ErrUploadInFlight = errors.New("upload already in progress")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNoticeNotFound = errors.New("notice not found")
	ErrTemporary      = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
