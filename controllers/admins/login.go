package admins

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/admin/login
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	ctx := r.Context()
	username := strings.TrimSpace(req.Username)
	account := "admin:" + strings.ToLower(username)

	if locked, wait := middleware.IsAccountLocked(ctx, account); locked {
		utils.WriteError(w, r, services.ErrAccountLocked.WithDetails(map[string]interface{}{
			"retry_after_seconds": int(math.Ceil(wait.Seconds())),
		}))
		return
	}

	var admin models.Admin
	err := database.DB.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, r, err)
		return
	}
	if err != nil || !admin.ValidatePassword(req.Password) {
		middleware.RecordFailedLogin(ctx, account)
		zap.L().Warn("admin login failed", zap.String("username", username), zap.String("ip", middleware.ClientIP(r, nil)))
		utils.WriteError(w, r, services.ErrInvalidCredentials)
		return
	}
	if !admin.IsActive {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
			Success: false,
			Message: "Account is deactivated",
			Code:    "account_inactive",
		})
		return
	}
	middleware.ResetFailedLogin(ctx, account)

	now := time.Now()
	if err := database.DB.WithContext(ctx).Model(&admin).Update("last_login", now).Error; err != nil {
		zap.L().Warn("failed to stamp last login", zap.String("admin_id", admin.ID), zap.Error(err))
	}
	admin.LastLogin = &now

	token, err := utils.GenerateAccessToken(admin.ID, admin.Role)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token": token,
			"admin": admin,
		},
	})
}
