package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/core/usecase"
	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/backend/ledgerapi"
	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/notice"
	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/ledger-dashboard/internal/presentation"
)

type receivedUpload struct {
	mu       sync.Mutex
	count    int
	filename string
	content  string
}

func newUploadBackend(t *testing.T, got *receivedUpload) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/admin/stats":
			_, _ = w.Write([]byte(`{"documents":{"total":0,"pending":0,"processed":0},"alerts":{"total":0,"high":0,"medium":0,"low":0}}`))
		case "/documents", "/alerts":
			_, _ = w.Write([]byte(`[]`))
		case "/health":
			_, _ = w.Write([]byte(`{"status":"healthy"}`))
		case "/documents/upload":
			file, header, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			defer file.Close()
			raw, _ := io.ReadAll(file)
			got.mu.Lock()
			got.count++
			got.filename, got.content = header.Filename, string(raw)
			got.mu.Unlock()
			_, _ = w.Write([]byte(`{"id":1,"status":"pending"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func postFile(t *testing.T, handler http.Handler, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "file", filename, content)
	req := httptest.NewRequest(http.MethodPost, "/v1/selection", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestRejectedReselectionKeepsSpooledFileForUpload(t *testing.T) {
	got := &receivedUpload{}
	backend := newUploadBackend(t, got)
	spoolDir := t.TempDir()

	files, err := localfs.New(spoolDir, 1<<20)
	if err != nil {
		t.Fatalf("localfs.New() error = %v", err)
	}
	client := ledgerapi.New(backend.URL)
	board := notice.NewBoard(10)
	uploads := usecase.NewUploadCoordinator(client, board, usecase.UploadOptions{Limits: domain.DefaultUploadLimits()})
	dashboard := usecase.NewDashboardController(usecase.NewFetchSnapshotUseCase(client), uploads, client, nil)
	dashboard.Initialize(context.Background())

	handler := NewRouter(dashboard, board, files, Options{Render: presentation.Options{Location: time.UTC}}).Handler()

	if res := postFile(t, handler, "a.txt", "first contract"); res.Code != http.StatusOK {
		t.Fatalf("select a.txt: expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if res := postFile(t, handler, "b.exe", "MZ"); res.Code != http.StatusBadRequest {
		t.Fatalf("select b.exe: expected 400, got %d: %s", res.Code, res.Body.String())
	}

	if selected := dashboard.View().SelectedFile; selected == nil || selected.Name != "a.txt" {
		t.Fatalf("previous selection must be kept, got %+v", selected)
	}
	entries, err := os.ReadDir(spoolDir)
	if err != nil {
		t.Fatalf("read spool dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the selected file in the spool, got %d", len(entries))
	}

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/v1/upload", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var payload struct {
		Outcome domain.UploadOutcome `json:"outcome"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if payload.Outcome != domain.UploadSucceeded {
		t.Fatalf("expected succeeded, got %q", payload.Outcome)
	}

	got.mu.Lock()
	defer got.mu.Unlock()
	if got.count != 1 || got.filename != "a.txt" || got.content != "first contract" {
		t.Fatalf("backend received %d uploads, last %q %q", got.count, got.filename, got.content)
	}
}

func TestAcceptedReselectionReplacesSpooledFile(t *testing.T) {
	got := &receivedUpload{}
	backend := newUploadBackend(t, got)
	spoolDir := t.TempDir()

	files, err := localfs.New(spoolDir, 1<<20)
	if err != nil {
		t.Fatalf("localfs.New() error = %v", err)
	}
	client := ledgerapi.New(backend.URL)
	board := notice.NewBoard(10)
	uploads := usecase.NewUploadCoordinator(client, board, usecase.UploadOptions{})
	dashboard := usecase.NewDashboardController(usecase.NewFetchSnapshotUseCase(client), uploads, client, nil)
	handler := NewRouter(dashboard, board, files, Options{}).Handler()

	for _, name := range []string{"a.txt", "b.csv"} {
		if res := postFile(t, handler, name, name); res.Code != http.StatusOK {
			t.Fatalf("select %s: expected 200, got %d", name, res.Code)
		}
	}
	entries, _ := os.ReadDir(spoolDir)
	if len(entries) != 1 {
		t.Fatalf("replaced selection must be removed, got %d files", len(entries))
	}
	if selected := dashboard.View().SelectedFile; selected == nil || selected.Name != "b.csv" {
		t.Fatalf("expected b.csv selected, got %+v", selected)
	}
}
