package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"nightPassAPI/services"
)

type MenuHandler struct {
	menuService *services.MenuService
}

func NewMenuHandler(menuService *services.MenuService) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
	}
}

// GetClubMenu lists a club's menu with each item's dynamic price for the
// requested date (?date=2026-06-01, defaults to now).
func (h *MenuHandler) GetClubMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clubID := mux.Vars(r)["id"]

	targetDate := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		targetDate = parsed
	}

	items, err := h.menuService.GetMenu(ctx, clubID, targetDate)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}
