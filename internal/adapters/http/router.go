package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/core/ports"
	"github.com/kirillkom/ledger-dashboard/internal/observability/metrics"
	"github.com/kirillkom/ledger-dashboard/internal/presentation"
)

const (
	serviceName       = "dashboard"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	multipartOverhead = 1 << 20
)

// NoticeBoard is the notice store the router reads from and reports form errors to.
type NoticeBoard interface {
	ports.NoticeBoard
	ports.Notifier
}

type Options struct {
	Render         presentation.Options
	Metrics        *metrics.HTTPServerMetrics
	RateLimitRPS   float64
	RateLimitBurst int
	MaxUploadBytes int64
}

type Router struct {
	dashboard ports.Dashboard
	notices   NoticeBoard
	files     ports.FileSource
	opts      Options

	// selectMu keeps Select and the matching Commit in the same order.
	selectMu sync.Mutex
}

func NewRouter(dashboard ports.Dashboard, notices NoticeBoard, files ports.FileSource, opts Options) *Router {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = domain.DefaultUploadLimits().MaxBytes
	}
	return &Router{
		dashboard: dashboard,
		notices:   notices,
		files:     files,
		opts:      opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /{$}", rt.page)
	mux.HandleFunc("GET /v1/view", rt.view)
	mux.HandleFunc("POST /v1/selection", rt.selectFile)
	mux.HandleFunc("DELETE /v1/selection", rt.clearSelection)
	mux.HandleFunc("POST /v1/selection/clear", rt.clearSelection)
	mux.HandleFunc("POST /v1/upload", rt.upload)
	mux.HandleFunc("POST /v1/refresh", rt.refresh)
	mux.HandleFunc("GET /v1/notices", rt.listNotices)
	mux.HandleFunc("POST /v1/notices/{id}/dismiss", rt.dismissNotice)
	mux.HandleFunc("GET /v1/export.xlsx", rt.export)
	if rt.opts.Metrics != nil {
		mux.Handle("GET /metrics", rt.opts.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst, rt.opts.Metrics)
	if rt.opts.Metrics != nil {
		handler = rt.opts.Metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) render() presentation.View {
	return presentation.Render(rt.dashboard.View(), rt.notices.List(), rt.opts.Render)
}

func (rt *Router) page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := presentation.WriteHTML(w, rt.render()); err != nil {
		slog.ErrorContext(r.Context(), "render_page_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

func (rt *Router) view(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.render())
}

func (rt *Router) selectFile(w http.ResponseWriter, r *http.Request) {
	if rt.dashboard.View().Uploading {
		rt.fail(w, r, domain.WrapError(domain.ErrUploadInFlight, "select file", errors.New("an upload is in progress")))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes+multipartOverhead)
	file, err := rt.spoolFormFile(r)
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	if err := rt.commitSelection(file); err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.done(w, r, http.StatusOK, rt.render())
}

// commitSelection replaces the held spool file only once the dashboard accepted the new
// one, so a rejected reselection leaves the previous file ready for retry.
func (rt *Router) commitSelection(file domain.SelectedFile) error {
	rt.selectMu.Lock()
	defer rt.selectMu.Unlock()
	if err := rt.dashboard.Select(file); err != nil {
		rt.files.Discard(file)
		return err
	}
	rt.files.Commit(file)
	return nil
}

// spoolFormFile streams the multipart "file" field to the file source without buffering
// the whole request.
func (rt *Router) spoolFormFile(r *http.Request) (domain.SelectedFile, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return domain.SelectedFile{}, domain.WrapError(domain.ErrInvalidInput, "select file", fmt.Errorf("multipart body required: %w", err))
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return domain.SelectedFile{}, domain.WrapError(domain.ErrInvalidInput, "select file", errors.New("multipart field 'file' is required"))
		}
		if err != nil {
			return domain.SelectedFile{}, domain.WrapError(domain.ErrInvalidInput, "select file", err)
		}
		if part.FormName() != "file" || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		file, err := rt.files.Spool(r.Context(), part.FileName(), part)
		_ = part.Close()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.SelectedFile{}, domain.WrapError(domain.ErrInvalidInput, "select file", err)
		}
		return file, err
	}
}

func (rt *Router) clearSelection(w http.ResponseWriter, r *http.Request) {
	if err := rt.dashboard.ClearSelection(); err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.done(w, r, http.StatusOK, rt.render())
}

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	outcome, err := rt.dashboard.Upload(r.Context())
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.done(w, r, http.StatusOK, map[string]any{
		"outcome": outcome,
		"view":    rt.render(),
	})
}

func (rt *Router) refresh(w http.ResponseWriter, r *http.Request) {
	if err := rt.dashboard.Refresh(r.Context()); err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.done(w, r, http.StatusOK, rt.render())
}

func (rt *Router) listNotices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"notices": rt.notices.List()})
}

func (rt *Router) dismissNotice(w http.ResponseWriter, r *http.Request) {
	if err := rt.notices.Dismiss(r.PathValue("id")); err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.done(w, r, http.StatusOK, map[string]any{"notices": rt.notices.List()})
}

func (rt *Router) export(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("ledger-dashboard-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := presentation.WriteXLSX(w, rt.render()); err != nil {
		slog.ErrorContext(r.Context(), "export_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

// wantsRedirect marks requests coming from the HTML page forms.
func wantsRedirect(r *http.Request) bool {
	return r.URL.Query().Get("redirect") == "1"
}

func (rt *Router) done(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if wantsRedirect(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, status, payload)
}

func (rt *Router) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request_failed", "request_id", requestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
	}
	if wantsRedirect(r) {
		// Upload failures already produced their own notice.
		if !domain.IsKind(err, domain.ErrUpload) {
			rt.notices.Notify(r.Context(), domain.Notice{
				ID:        uuid.NewString(),
				Level:     domain.NoticeFailure,
				Message:   err.Error(),
				CreatedAt: time.Now().UTC(),
			})
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
