package httpadapter

import (
	"net/http"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNoticeNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrUploadInFlight):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrUpload), domain.IsKind(err, domain.ErrFetch):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
