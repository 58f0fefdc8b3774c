package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func serveWithKey(t *testing.T, store *fakeIdempotencyStore, method, key string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, "/api/v1/ledger/transfers", bytes.NewBufferString(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	rr := httptest.NewRecorder()
	NewIdempotencyMiddleware(store).Wrap(handler).ServeHTTP(rr, req)
	return rr
}

func TestIdempotencySkipsReadsAndKeylessRequests(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(context.Context, string, []byte, time.Duration) (bool, []byte, error) {
			t.Fatalf("store must not be consulted")
			return false, nil, nil
		},
	}

	for _, tc := range []struct {
		name   string
		method string
		key    string
	}{
		{"get request", http.MethodGet, "key-1"},
		{"post without key", http.MethodPost, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			serveWithKey(t, store, tc.method, tc.key, func(w http.ResponseWriter, r *http.Request) {
				called = true
			})
			if !called {
				t.Fatalf("expected request to pass through")
			}
		})
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(context.Context, string, []byte, time.Duration) (bool, []byte, error) {
			return true, []byte(`{"cached":true}`), nil
		},
	}

	rr := serveWithKey(t, store, http.MethodPost, "key-replay", func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run for a replayed key")
	})

	if rr.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatalf("expected replay header")
	}
	if got := rr.Body.String(); got != `{"cached":true}` {
		t.Fatalf("unexpected replayed body: %s", got)
	}
}

func TestIdempotencyStoresOnlySuccessfulResponses(t *testing.T) {
	var stored []byte
	store := &fakeIdempotencyStore{
		updateFn: func(_ context.Context, _ string, response []byte, _ time.Duration) error {
			stored = append([]byte(nil), response...)
			return nil
		},
	}

	rr := serveWithKey(t, store, http.MethodPost, "key-ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if string(stored) != `{"ok":true}` {
		t.Fatalf("expected body to be stored, got %q", stored)
	}

	stored = nil
	serveWithKey(t, store, http.MethodPost, "key-fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if stored != nil {
		t.Fatalf("error responses must not be stored")
	}
}

func TestIdempotencyFailsClosedOnStoreError(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(context.Context, string, []byte, time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}

	rr := serveWithKey(t, store, http.MethodPost, "key-err", func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run when the store errors")
	})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
