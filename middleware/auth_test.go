package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/config"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestAuth(t *testing.T) {
	t.Helper()
	require.NoError(t, utils.InitAuth(config.JWTConfig{
		Secret:      "middleware-test-secret",
		Issuer:      "poweroil-test",
		UserExpiry:  time.Hour,
		AdminExpiry: time.Hour,
	}))
}

func TestAuthMiddleware(t *testing.T) {
	initTestAuth(t)

	var seen string
	h := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.GetUserID(r)
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(authz string) int {
		req := httptest.NewRequest("GET", "/api/me", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(""))
	assert.Equal(t, http.StatusUnauthorized, serve("Bearer not-a-token"))

	adminTok, err := utils.GenerateAccessToken("admin-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve("Bearer "+adminTok))

	expired, err := utils.GenerateAccessTokenWithExpiry("user-1", utils.RoleUser, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+expired))

	tok, err := utils.GenerateAccessToken("user-1", utils.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve("Bearer "+tok))
	assert.Equal(t, "user-1", seen)
}

func TestValidateJSON(t *testing.T) {
	type body struct {
		Phone string `json:"phoneNumber" validate:"required"`
	}
	run := func(ct, payload string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(payload))
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		var b body
		return rec, ValidateJSON(rec, req, &b)
	}

	rec, err := run("text/plain", `{}`)
	assert.Error(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec, err = run("application/json", `{`)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, err = run("application/json; charset=utf-8", `{}`)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "phoneNumber is required")

	_, err = run("application/json", `{"phoneNumber":"08030000001"}`)
	assert.NoError(t, err)
}
