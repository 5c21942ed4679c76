package auth

import (
	"net/http"

	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/golang-jwt/jwt/v5"
)

// LogoutHandler revokes the access token the request was authenticated with.
// Shared by participant and admin routes.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.ClaimsKey).(jwt.MapClaims)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized", Code: "unauthorized"})
		return
	}
	if err := utils.RevokeClaims(r.Context(), claims); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}
