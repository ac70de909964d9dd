package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nightPassAPI/internal/notification"
	"nightPassAPI/internal/types/staff"
	"nightPassAPI/middleware"
	"nightPassAPI/services"
)

type AuthHandler struct {
	authService *services.AuthService
	notifier    *notification.Service
	jwtSecret   []byte
}

func NewAuthHandler(authService *services.AuthService, notifier *notification.Service, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		notifier:    notifier,
		jwtSecret:   jwtSecret,
	}
}

// Login exchanges staff credentials for a signed session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req staff.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := h.authService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	clubID := ""
	if u.ClubID != nil {
		clubID = *u.ClubID
	}
	token, err := middleware.IssueToken(h.jwtSecret, u.ID, u.Role, clubID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, staff.LoginResponse{
		Token:    token,
		Role:     u.Role,
		ClubID:   clubID,
		Username: u.Username,
	})
}

// RegisterDevice stores the caller's push token so payment notifications can
// reach their device.
func (h *AuthHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st, ok := middleware.GetStaff(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.notifier.RegisterDevice(ctx, st.ID, req.Token, req.Platform); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
