package handler

import (
	"encoding/json"
	"net/http"

	"github.com/lcbank/backend/internal/adapter/http/dto"
	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/usecase"
)

// LedgerHandler handles ledger-related HTTP requests.
type LedgerHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// History returns the caller's transactions in insertion order.
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	account, ok := actingAccount(w, r)
	if !ok {
		return
	}

	transactions, err := h.ledgerUC.ListByAccount(r.Context(), account.Username)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}

// Transfer moves an amount from the caller to the named recipient.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	account, ok := actingAccount(w, r)
	if !ok {
		return
	}

	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	sender := account.Username
	txn, err := h.ledgerUC.Append(r.Context(), usecase.AppendInput{
		Sender:      &sender,
		Recipient:   &req.Recipient,
		Amount:      req.Amount,
		Kind:        domain.TransactionKindTransfer,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Verify runs a full chain verification and reports the result.
func (h *LedgerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	err := h.ledgerUC.VerifyChain(r.Context())

	status := dto.ChainStatusResponse{
		Intact: err == nil,
		Halted: h.ledgerUC.Halted(),
	}
	if err != nil {
		status.Error = err.Error()
		writeJSON(w, http.StatusInternalServerError, status)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
