package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"nightPassAPI/services"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// GetClubTickets lists a club's tickets with dynamic prices for the
// requested date (?date=2026-06-01, defaults to now).
func (h *CheckoutHandler) GetClubTickets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	targetDate := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		targetDate = parsed
	}

	tickets, err := h.checkoutService.ListTickets(ctx, mux.Vars(r)["id"], targetDate)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondWithJSON(w, http.StatusOK, tickets)
}

// CheckoutTicket creates a pending ticket transaction and returns the payment
// reference the storefront hands to the Wompi widget.
func (h *CheckoutHandler) CheckoutTicket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req services.TicketCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.ClubID == "" || req.TicketID == "" || req.Date.IsZero() {
		respondWithError(w, http.StatusBadRequest, "email, club_id, ticket_id and date are required")
		return
	}

	resp, err := h.checkoutService.CheckoutTicket(ctx, &req)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

// CheckoutMenu creates a pending standalone menu order.
func (h *CheckoutHandler) CheckoutMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req services.MenuCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.ClubID == "" || len(req.Lines) == 0 {
		respondWithError(w, http.StatusBadRequest, "email, club_id and lines are required")
		return
	}

	resp, err := h.checkoutService.CheckoutMenu(ctx, &req)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

// TicketQR returns the door code for a paid ticket purchase.
func (h *CheckoutHandler) TicketQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.checkoutService.TicketQR(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// BundledMenuQR returns the bar code for the menu item included with a
// ticket purchase.
func (h *CheckoutHandler) BundledMenuQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.checkoutService.BundledMenuQR(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// MenuQR returns the stored order code for a paid menu transaction.
func (h *CheckoutHandler) MenuQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.checkoutService.MenuQR(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrNotPayable):
		respondWithError(w, http.StatusConflict, "Payment has not been approved")
	case errors.Is(err, services.ErrUnavailable):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Server error")
	}
}
