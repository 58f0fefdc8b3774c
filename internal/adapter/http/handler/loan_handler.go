package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lcbank/backend/internal/adapter/http/dto"
	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/usecase"
)

// LoanHandler handles loan-related HTTP requests.
type LoanHandler struct {
	loanUC *usecase.LoanUseCase
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC *usecase.LoanUseCase) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// Create records a pending loan request with the caller as borrower.
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, ok := actingAccount(w, r)
	if !ok {
		return
	}

	var req dto.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.Create(r.Context(), req.ToUseCaseInput(account.Username))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create loan request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// List returns loan requests the caller takes part in, on either side.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := actingAccount(w, r)
	if !ok {
		return
	}

	loans, err := h.loanUC.ListByAccount(r.Context(), account.Username)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list loan requests", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoansFromDomain(loans))
}

// Get retrieves a loan request by ID.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	loan, err := h.loanUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get loan request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Approve disburses the loan. Lender only.
func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.loanUC.Approve)
}

// Reject declines a pending request. Lender only.
func (h *LoanHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.loanUC.Reject)
}

// Repay settles the loan. Borrower only.
func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.loanUC.Repay)
}

// Withdraw is the lender's early recall of an at-risk loan.
func (h *LoanHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.loanUC.Withdraw)
}

func (h *LoanHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id, actingUser string) (*domain.LoanRequest, error),
) {
	account, ok := actingAccount(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	loan, err := op(r.Context(), id, account.Username)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transition loan request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}
