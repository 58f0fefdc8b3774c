package handler

import (
	"net/http"

	"github.com/lcbank/backend/internal/adapter/http/dto"
	"github.com/lcbank/backend/internal/usecase"
)

// AlertHandler exposes the administrative alert queries.
type AlertHandler struct {
	alertUC *usecase.AlertUseCase
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertUC *usecase.AlertUseCase) *AlertHandler {
	return &AlertHandler{alertUC: alertUC}
}

// Loans returns approved loans that are expired or at risk.
func (h *AlertHandler) Loans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.alertUC.AnomalousLoans(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list anomalous loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AnomalousLoansFromUseCase(loans))
}

// Accounts returns approved accounts whose balance has reached zero.
func (h *AlertHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.alertUC.ZeroBalanceAccounts(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list zero balance accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProfilesFromUseCase(profiles))
}
