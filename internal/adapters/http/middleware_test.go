package httpadapter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/observability/metrics"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	m := metrics.NewHTTPServerMetrics(serviceName)
	handler := rateLimitMiddleware(okHandler(), 0.5, 1, m)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/view", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/view", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") != "2" {
		t.Fatalf("expected Retry-After 2, got %q", second.Header().Get("Retry-After"))
	}
	if !strings.Contains(second.Body.String(), "rate limit exceeded") {
		t.Fatalf("unexpected body %q", second.Body.String())
	}
}

func TestRateLimitExemptsProbes(t *testing.T) {
	handler := rateLimitMiddleware(okHandler(), 0.1, 1, nil)

	for i := 0; i < 5; i++ {
		for _, path := range []string{"/healthz", "/metrics"} {
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
			if res.Code != http.StatusOK {
				t.Fatalf("%s must not be limited, got %d", path, res.Code)
			}
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	handler := rateLimitMiddleware(okHandler(), 0, 0, nil)
	for i := 0; i < 50; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))
		if res.Code != http.StatusOK {
			t.Fatalf("limiter must be off, got %d", res.Code)
		}
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if seen != "req-42" || res.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected request id req-42, got ctx=%q header=%q", seen, res.Header().Get(requestIDHeader))
	}
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.WrapError(domain.ErrInvalidInput, "op", errors.New("x")), http.StatusBadRequest},
		{domain.WrapError(domain.ErrNoticeNotFound, "op", errors.New("x")), http.StatusNotFound},
		{domain.WrapError(domain.ErrUploadInFlight, "op", errors.New("x")), http.StatusConflict},
		{domain.WrapError(domain.ErrUpload, "op", domain.WrapError(domain.ErrTemporary, "op", errors.New("x"))), http.StatusBadGateway},
		{domain.WrapError(domain.ErrFetch, "op", errors.New("x")), http.StatusBadGateway},
		{domain.WrapError(domain.ErrTemporary, "op", errors.New("x")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
			t.Fatalf("mapErrorToHTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
