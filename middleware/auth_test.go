package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightPassAPI/internal/access"
	"nightPassAPI/middleware"
)

var jwtSecret = []byte("test_jwt_secret")

func protectedEcho(t *testing.T) (http.Handler, *access.Staff) {
	t.Helper()
	var seen access.Staff
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, ok := middleware.GetStaff(r.Context())
		require.True(t, ok)
		seen = st
		w.WriteHeader(http.StatusOK)
	})
	return middleware.StaffAuthMiddleware(jwtSecret)(inner), &seen
}

func TestStaffAuthRoundTrip(t *testing.T) {
	token, err := middleware.IssueToken(jwtSecret, "staff-1", "bouncer", "club-a")
	require.NoError(t, err)

	h, seen := protectedEcho(t)
	req := httptest.NewRequest(http.MethodPost, "/validate/ticket", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "staff-1", seen.ID)
	assert.Equal(t, access.RoleBouncer, seen.Role)
	assert.Equal(t, "club-a", seen.ClubID)
}

func TestStaffAuthMissingHeader(t *testing.T) {
	h, _ := protectedEcho(t)
	req := httptest.NewRequest(http.MethodPost, "/validate/ticket", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestStaffAuthMalformedHeader(t *testing.T) {
	h, _ := protectedEcho(t)
	req := httptest.NewRequest(http.MethodPost, "/validate/ticket", nil)
	req.Header.Set("Authorization", "Token abcdef")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestStaffAuthWrongSecret(t *testing.T) {
	token, err := middleware.IssueToken([]byte("some_other_secret"), "staff-1", "bouncer", "club-a")
	require.NoError(t, err)

	h, _ := protectedEcho(t)
	req := httptest.NewRequest(http.MethodPost, "/validate/ticket", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
