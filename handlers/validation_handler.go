package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nightPassAPI/internal/access"
	"nightPassAPI/internal/types/purchase"
	"nightPassAPI/middleware"
	"nightPassAPI/services"
)

type ValidationHandler struct {
	validationService *services.ValidationService
}

func NewValidationHandler(validationService *services.ValidationService) *ValidationHandler {
	return &ValidationHandler{
		validationService: validationService,
	}
}

type scanRequest struct {
	Token string `json:"token"`
}

// ValidateTicket handles a door scan. ?preview=true inspects the code
// without redeeming it.
func (h *ValidationHandler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	h.handleScan(w, r, "ticket", h.validationService.ValidateTicket)
}

// ValidateMenu handles a bar scan, both standalone orders and items bundled
// with a ticket.
func (h *ValidationHandler) ValidateMenu(w http.ResponseWriter, r *http.Request) {
	h.handleScan(w, r, "menu", h.validationService.ValidateMenu)
}

func (h *ValidationHandler) handleScan(
	w http.ResponseWriter,
	r *http.Request,
	scanType string,
	validate func(context.Context, access.Staff, string, bool) (*purchase.ValidationResult, error),
) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	st, ok := middleware.GetStaff(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		middleware.RecordScan(scanType, "bad_request")
		respondWithError(w, http.StatusBadRequest, "token is required")
		return
	}
	preview := r.URL.Query().Get("preview") == "true"

	result, err := validate(ctx, st, req.Token, preview)
	if err != nil {
		h.respondScanError(w, scanType, err)
		return
	}

	if !result.Valid {
		middleware.RecordScan(scanType, "window_miss")
	} else if preview {
		middleware.RecordScan(scanType, "preview")
	} else {
		middleware.RecordScan(scanType, "redeemed")
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *ValidationHandler) respondScanError(w http.ResponseWriter, scanType string, err error) {
	var used *services.AlreadyUsedError
	switch {
	case errors.Is(err, services.ErrInvalidQR):
		middleware.RecordScan(scanType, "invalid")
		respondWithJSON(w, http.StatusBadRequest, purchase.ValidationResult{Valid: false, Reason: "invalid qr code"})
	case errors.Is(err, services.ErrAccessDenied):
		middleware.RecordScan(scanType, "denied")
		respondWithError(w, http.StatusForbidden, "Not authorized for this club")
	case errors.Is(err, services.ErrNotFound):
		middleware.RecordScan(scanType, "not_found")
		respondWithError(w, http.StatusNotFound, "Purchase not found")
	case errors.Is(err, services.ErrNotPayable):
		middleware.RecordScan(scanType, "unpaid")
		respondWithError(w, http.StatusConflict, "Payment has not been approved")
	case errors.As(err, &used):
		middleware.RecordScan(scanType, "replay")
		respondWithJSON(w, http.StatusGone, purchase.ValidationResult{
			Valid:  false,
			Reason: "already redeemed",
			UsedAt: &used.UsedAt,
		})
	default:
		middleware.RecordScan(scanType, "error")
		respondWithError(w, http.StatusInternalServerError, "Server error")
	}
}
