package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"nightPassAPI/internal/types/transaction"
	"nightPassAPI/internal/wompi"
	"nightPassAPI/services"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
}

func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

type transactionResponse struct {
	transaction.Transaction
	Items []transaction.Item `json:"items,omitempty"`
}

// GetTransaction is the polling fallback for clients that lose the event
// stream: the current record by payment reference, with menu lines when the
// order has any.
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ref := mux.Vars(r)["reference"]
	tx, err := h.transactionService.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	resp := transactionResponse{Transaction: *tx}
	if strings.HasPrefix(ref, wompi.RefPrefixMenu) {
		items, err := h.transactionService.ItemsByTransaction(ctx, tx.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Server error")
			return
		}
		resp.Items = items
	}
	respondWithJSON(w, http.StatusOK, resp)
}
