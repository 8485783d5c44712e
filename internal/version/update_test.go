package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newTestChecker(t *testing.T, handler http.HandlerFunc) (*Checker, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return &Checker{
		URL:       srv.URL,
		Client:    srv.Client(),
		CachePath: filepath.Join(t.TempDir(), "update-cache.json"),
		CacheTTL:  time.Hour,
		Current:   "1.0.0",
		logger:    zaptest.NewLogger(t),
		now:       time.Now,
	}, &calls
}

func releaseHandler(tag string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tag_name":"` + tag + `","html_url":"https://example.com"}`))
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.1", "1.0.0", 1},
		{"1.1.0", "1.0.9", 1},
		{"2.0.0", "1.99.99", 1},
		{"1.0.0", "1.0.0", 0},
		{"v1.2", "1.2.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.10.0", "1.9.0", 1},
		{"1.2.0-rc1", "1.2.0", 0},
	}

	for _, tt := range tests {
		if got := compareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCheckReportsNewerRelease(t *testing.T) {
	checker, calls := newTestChecker(t, releaseHandler("v1.2.0"))

	latest, err := checker.Check(context.Background())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if latest != "1.2.0" {
		t.Errorf("expected 1.2.0, got %q", latest)
	}

	// Second call is served from the cache.
	latest, err = checker.Check(context.Background())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if latest != "1.2.0" {
		t.Errorf("expected cached 1.2.0, got %q", latest)
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestCheckUpToDate(t *testing.T) {
	checker, _ := newTestChecker(t, releaseHandler("v1.0.0"))

	latest, err := checker.Check(context.Background())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if latest != "" {
		t.Errorf("expected no update, got %q", latest)
	}
}

func TestCheckExpiredCache(t *testing.T) {
	checker, calls := newTestChecker(t, releaseHandler("v1.1.0"))
	checker.CacheTTL = 0

	for i := 0; i < 2; i++ {
		if _, err := checker.Check(context.Background()); err != nil {
			t.Fatalf("Check failed: %v", err)
		}
	}
	if n := atomic.LoadInt32(calls); n != 2 {
		t.Errorf("expected 2 requests with expired cache, got %d", n)
	}
}

func TestCheckDevBuildSkipsNetwork(t *testing.T) {
	checker, calls := newTestChecker(t, releaseHandler("v9.9.9"))
	checker.Current = "dev"

	latest, err := checker.Check(context.Background())
	if err != nil || latest != "" {
		t.Errorf("dev build should not report updates, got %q, %v", latest, err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Error("dev build should not hit the network")
	}
}

func TestCheckServerError(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	if _, err := checker.Check(context.Background()); err == nil {
		t.Error("expected error for non-200 status")
	}

	checker, _ = newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	if _, err := checker.Check(context.Background()); err == nil {
		t.Error("expected error for invalid body")
	}
}

func TestFormatVersion(t *testing.T) {
	if got := FormatVersion("dev", "none", "unknown"); got != "dev (development build)" {
		t.Errorf("unexpected dev format: %q", got)
	}
	if got := FormatVersion("v1.0.0", "abc123", "2025-01-01"); got != "v1.0.0 (commit: abc123, built: 2025-01-01)" {
		t.Errorf("unexpected release format: %q", got)
	}
}
