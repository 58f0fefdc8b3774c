package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lcbank/backend/internal/adapter/http/dto"
	"github.com/lcbank/backend/internal/usecase"
)

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC *usecase.AccountUseCase
	ledgerUC  *usecase.LedgerUseCase
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC *usecase.AccountUseCase, ledgerUC *usecase.LedgerUseCase) *AccountHandler {
	return &AccountHandler{
		accountUC: accountUC,
		ledgerUC:  ledgerUC,
	}
}

// Me returns the caller's profile with its derived balance.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := actingAccount(w, r)
	if !ok {
		return
	}

	profile, err := h.accountUC.GetProfile(r.Context(), account.Username)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load profile", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProfileFromUseCase(profile))
}

// List returns all accounts with balances.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.accountUC.List(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProfilesFromUseCase(profiles))
}

// Pending returns accounts awaiting approval.
func (h *AccountHandler) Pending(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountUC.ListPending(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list pending accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Approve marks an account approved.
func (h *AccountHandler) Approve(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.accountUC.Approve(r.Context(), username); err != nil {
		writeError(w, mapDomainError(err), "failed to approve account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// Promote grants admin type.
func (h *AccountHandler) Promote(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.accountUC.Promote(r.Context(), username); err != nil {
		writeError(w, mapDomainError(err), "failed to promote account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
}

// SetBalance appends an administrative correction bringing the derived
// balance to the requested value.
func (h *AccountHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req dto.SetBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.SetBalance(r.Context(), username, req.Balance)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set balance", err.Error())
		return
	}

	if txn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "unchanged"})
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Rename changes a username and propagates it through ledger and loan
// history.
func (h *AccountHandler) Rename(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req dto.RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.Rename(r.Context(), username, req.NewUsername)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to rename account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Delete removes an account, keeping its transaction history.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.accountUC.Delete(r.Context(), username); err != nil {
		writeError(w, mapDomainError(err), "failed to delete account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
