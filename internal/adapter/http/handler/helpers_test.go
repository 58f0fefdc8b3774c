package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lcbank/backend/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"loan not found", domain.ErrLoanNotFound, http.StatusNotFound},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"stale state", domain.ErrStaleState, http.StatusConflict},
		{"username taken", domain.ErrUsernameTaken, http.StatusConflict},
		{"chain corrupted", domain.ErrChainCorrupted, http.StatusInternalServerError},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"borrow limit", domain.ErrBorrowLimit, http.StatusBadRequest},
		{"lend limit", domain.ErrLendLimit, http.StatusBadRequest},
		{"expiry too soon", domain.ErrExpiryTooSoon, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if decoded["status"] != "ok" {
		t.Fatalf("unexpected body: %v", decoded)
	}
}

func TestActingAccount_MissingContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	rr := httptest.NewRecorder()

	if _, ok := actingAccount(rr, req); ok {
		t.Fatalf("expected missing account to fail")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
