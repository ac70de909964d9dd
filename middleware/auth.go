package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"nightPassAPI/internal/access"
)

type contextKey string

const staffKey contextKey = "staff"

// Claims is the staff JWT payload: identity plus the role/club pair the
// access policy acts on.
type Claims struct {
	Role   string `json:"role"`
	ClubID string `json:"club_id,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs a staff session token. 12h lifetime covers a full shift.
func IssueToken(secret []byte, staffID, role, clubID string) (string, error) {
	claims := &Claims{
		Role:   role,
		ClubID: clubID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
			Issuer:    "nightpass-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// StaffAuthMiddleware validates Bearer tokens and stashes the staff identity
// in the request context.
func StaffAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondWithError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				respondWithError(w, http.StatusUnauthorized, "Invalid authorization format. Use 'Bearer <token>'")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				log.Debug().Err(err).Msg("token verification failed")
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			s := access.Staff{
				ID:     claims.Subject,
				Role:   access.Role(claims.Role),
				ClubID: claims.ClubID,
			}
			ctx := context.WithValue(r.Context(), staffKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetStaff extracts the authenticated staff identity from context.
func GetStaff(ctx context.Context) (access.Staff, bool) {
	s, ok := ctx.Value(staffKey).(access.Staff)
	return s, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(fmt.Sprintf(`{"error": "%s"}`, message)))
}
