package workflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"BetPilot/internal/model"
)

func newTestManager(t *testing.T, handler http.HandlerFunc) *Manager {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	m := NewManager("test-token", "owner/repo", "main.yml", "")
	m.BaseURL = srv.URL
	return m
}

func TestDisable(t *testing.T) {
	var disableCalls int
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/owner/repo/actions/workflows":
			if got := r.Header.Get("Authorization"); got != "token test-token" {
				t.Errorf("unexpected auth header %q", got)
			}
			w.Write([]byte(`{"workflows":[{"id":12345,"path":".github/workflows/main.yml"},{"id":99,"path":".github/workflows/other.yml"}]}`))
		case r.Method == http.MethodPut && r.URL.Path == "/repos/owner/repo/actions/workflows/12345/disable":
			disableCalls++
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	if err := m.Disable(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if disableCalls != 1 {
		t.Errorf("expected 1 disable call, got %d", disableCalls)
	}

	// Disabling again is a no-op on GitHub's side, not an error here.
	if err := m.Disable(context.Background()); err != nil {
		t.Fatalf("second disable should succeed: %v", err)
	}
	if disableCalls != 2 {
		t.Errorf("expected 2 disable calls, got %d", disableCalls)
	}
}

func TestDisable_WorkflowMissing(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"workflows":[]}`))
	})

	err := m.Disable(context.Background())
	if err == nil {
		t.Fatal("expected error for missing workflow")
	}
	var dErr *model.DisableError
	if !errors.As(err, &dErr) {
		t.Errorf("expected DisableError, got %T", err)
	}
}

func TestEnable(t *testing.T) {
	var enabled bool
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"workflows":[{"id":7,"path":".github/workflows/main.yml"}]}`))
		case r.Method == http.MethodPut && r.URL.Path == "/repos/owner/repo/actions/workflows/7/enable":
			enabled = true
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	if err := m.Enable(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !enabled {
		t.Error("enable endpoint not called")
	}
}

func TestDisable_APIError(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	if err := m.Disable(context.Background()); err == nil {
		t.Fatal("expected error on API failure")
	}
}
