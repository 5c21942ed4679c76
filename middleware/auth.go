package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dorcasbeulah27/PowerOil-Backend/utils"
)

// ClaimsKey holds the validated token claims so logout can revoke them
const ClaimsKey = contextKeyClaims("claims")

type contextKeyClaims string

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return tok, tok != ""
}

func writeTokenError(w http.ResponseWriter, err error) {
	msg := "Invalid token"
	switch {
	case errors.Is(err, utils.ErrTokenExpired):
		msg = "Your session has expired, please log in again."
	case errors.Is(err, utils.ErrTokenRevoked):
		msg = "Token has been revoked"
	}
	utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: msg, Code: "unauthorized"})
}

// AuthMiddleware admits participants holding a valid token with the user role
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearerToken(r)
		if !ok {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized", Code: "unauthorized"})
			return
		}
		claims, err := utils.ValidateAccessToken(r.Context(), tokenStr)
		if err != nil {
			writeTokenError(w, err)
			return
		}

		role := utils.ClaimString(claims, "role")
		userID := utils.ClaimString(claims, "id")
		// admin tokens are not accepted on participant endpoints
		if role != utils.RoleUser || userID == "" {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Access denied", Code: "forbidden"})
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserIDKey, userID)
		ctx = context.WithValue(ctx, utils.UserRoleKey, role)
		ctx = context.WithValue(ctx, ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
