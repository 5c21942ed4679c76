package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"gorm.io/gorm"
)

// AdminAuthMiddleware verifies that the request is from an authenticated, active admin
// and stores the admin record in the request context.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: No token provided",
				Code:    "unauthorized",
			})
			return
		}

		claims, err := utils.ValidateAccessToken(r.Context(), tokenString)
		if err != nil {
			writeTokenError(w, err)
			return
		}

		role := utils.ClaimString(claims, "role")
		if !models.ValidAdminRole(role) {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Forbidden: Admin access required",
				Code:    "forbidden",
			})
			return
		}

		var admin models.Admin
		err = database.DB.WithContext(r.Context()).First(&admin, "id = ?", utils.ClaimString(claims, "id")).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Unauthorized: Admin not found",
					Code:    "unauthorized",
				})
				return
			}
			utils.WriteError(w, r, err)
			return
		}
		if !admin.IsActive {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Forbidden: Account is deactivated",
				Code:    "forbidden",
			})
			return
		}

		ctx := context.WithValue(r.Context(), utils.AdminKey, &admin)
		ctx = context.WithValue(ctx, utils.UserIDKey, admin.ID)
		ctx = context.WithValue(ctx, utils.UserRoleKey, admin.Role)
		ctx = context.WithValue(ctx, ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects admins whose role is not listed. Use after AdminAuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := utils.GetAdmin(r)
			if !ok || !admin.HasRole(roles...) {
				utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
					Success: false,
					Message: "Insufficient permissions",
					Code:    "insufficient_role",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
