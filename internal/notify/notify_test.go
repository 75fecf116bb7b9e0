package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testNotifier(sleeps *[]time.Duration) *CallbackNotifier {
	n := NewCallbackNotifier()
	n.sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	}
	return n
}

func TestNotify_Success(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var sleeps []time.Duration
	n := testNotifier(&sleeps)

	err := n.Notify(context.Background(), server.URL, map[string]string{"repo_url": "https://example.com/r"})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if gotBody["repo_url"] != "https://example.com/r" {
		t.Errorf("payload = %v", gotBody)
	}
	if len(sleeps) != 0 {
		t.Errorf("no backoff expected on first-attempt success, got %v", sleeps)
	}
}

func TestNotify_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var sleeps []time.Duration
	n := testNotifier(&sleeps)

	if err := n.Notify(context.Background(), server.URL, map[string]string{}); err != nil {
		t.Fatalf("Notify should recover: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(sleeps) != 2 || sleeps[0] != 1*time.Second || sleeps[1] != 2*time.Second {
		t.Errorf("sleeps = %v, want [1s 2s]", sleeps)
	}
}

func TestNotify_BudgetExhausted(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var sleeps []time.Duration
	n := testNotifier(&sleeps)

	err := n.Notify(context.Background(), server.URL, map[string]string{})
	if err == nil {
		t.Fatal("exhausted budget must surface an error")
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want exactly 4", attempts)
	}

	// Cumulative waits before the 4th attempt: 1 + 2 + 4 seconds.
	var total time.Duration
	for _, d := range sleeps {
		total += d
	}
	if total < 7*time.Second {
		t.Errorf("cumulative backoff = %v, want >= 7s", total)
	}
}

func TestNotify_NetworkError(t *testing.T) {
	var sleeps []time.Duration
	n := testNotifier(&sleeps)

	// Nothing listens here.
	err := n.Notify(context.Background(), "http://127.0.0.1:1/callback", map[string]string{})
	if err == nil {
		t.Fatal("connection failure must surface an error after retries")
	}
	if len(sleeps) != 3 {
		t.Errorf("sleeps = %d, want 3 backoffs across 4 attempts", len(sleeps))
	}
}

func TestNoop(t *testing.T) {
	if err := (Noop{}).Notify(context.Background(), "http://example.com", nil); err != nil {
		t.Errorf("Noop should never fail: %v", err)
	}
}
