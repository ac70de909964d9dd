package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"nightPassAPI/services"
)

type ClubHandler struct {
	clubService  *services.ClubService
	eventService *services.EventService
}

func NewClubHandler(clubService *services.ClubService, eventService *services.EventService) *ClubHandler {
	return &ClubHandler{
		clubService:  clubService,
		eventService: eventService,
	}
}

func (h *ClubHandler) GetClubs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clubs, err := h.clubService.GetClubs(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondWithJSON(w, http.StatusOK, clubs)
}

func (h *ClubHandler) GetClub(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clubID := mux.Vars(r)["id"]
	c, err := h.clubService.GetClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Club not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *ClubHandler) GetClubEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clubID := mux.Vars(r)["id"]
	events, err := h.eventService.GetClubEvents(ctx, clubID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondWithJSON(w, http.StatusOK, events)
}

func (h *ClubHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	eventID := mux.Vars(r)["id"]
	ev, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondWithJSON(w, http.StatusOK, ev)
}
