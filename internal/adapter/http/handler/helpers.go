package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lcbank/backend/internal/adapter/http/dto"
	"github.com/lcbank/backend/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrLoanNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrAccountNotApproved):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrStaleState),
		errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrChainCorrupted):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNegativeBalance),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrNotApproved),
		errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrExpiryTooSoon),
		errors.Is(err, domain.ErrBorrowLimit),
		errors.Is(err, domain.ErrLendLimit),
		errors.Is(err, domain.ErrBelowRiskThreshold),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// actingAccount extracts the authenticated account placed in the
// context by the auth middleware.
func actingAccount(w http.ResponseWriter, r *http.Request) (*domain.Account, bool) {
	account, ok := domain.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no authenticated account")
		return nil, false
	}
	return account, true
}
