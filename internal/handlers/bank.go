package handlers

import (
	"net/http"

	"examino-backend/internal/services"
)

type BankHandler struct {
	bank *services.BankSynchronizer
}

func NewBankHandler(bank *services.BankSynchronizer) *BankHandler {
	return &BankHandler{bank: bank}
}

func (h *BankHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bank.Stats()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
