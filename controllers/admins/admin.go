package admins

import (
	"net/http"
	"strings"

	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"go.uber.org/zap"
)

func currentAdmin(w http.ResponseWriter, r *http.Request) (*models.Admin, bool) {
	admin, ok := utils.GetAdmin(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized", Code: "unauthorized"})
		return nil, false
	}
	return admin, true
}

// GET /api/admin/profile
func GetAdminProfile(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: admin})
}

type updateAdminProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// PUT /api/admin/profile
func UpdateAdminProfile(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(w, r)
	if !ok {
		return
	}
	var req updateAdminProfileRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	updates := map[string]interface{}{}
	if v := strings.TrimSpace(req.FullName); v != "" {
		updates["full_name"] = v
	}
	db := database.DB.WithContext(r.Context())
	if v := strings.ToLower(strings.TrimSpace(req.Email)); v != "" && v != admin.Email {
		var n int64
		if err := db.Model(&models.Admin{}).Where("email = ? AND id <> ?", v, admin.ID).Count(&n).Error; err != nil {
			utils.WriteError(w, r, err)
			return
		}
		if n > 0 {
			utils.WriteError(w, r, services.ErrDuplicateAdmin)
			return
		}
		updates["email"] = v
	}
	if len(updates) > 0 {
		if err := db.Model(admin).Updates(updates).Error; err != nil {
			utils.WriteError(w, r, err)
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Profile updated", Data: admin})
}

type updateAdminPasswordRequest struct {
	CurrentPassword      string `json:"currentPassword" validate:"required"`
	NewPassword          string `json:"newPassword" validate:"required,pwdmin"`
	ConfirmationPassword string `json:"confirmationPassword" validate:"required,eqfield=NewPassword"`
}

// PUT /api/admin/password
func UpdateAdminPassword(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(w, r)
	if !ok {
		return
	}
	var req updateAdminPasswordRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if !admin.ValidatePassword(req.CurrentPassword) {
		utils.WriteError(w, r, services.NewValidationError("Current password is incorrect"))
		return
	}

	admin.Password = req.NewPassword
	if err := admin.HashPassword(); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := database.DB.WithContext(r.Context()).Model(admin).Update("password", admin.Password).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Password updated"})
}

type createAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,pwdmin"`
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"omitempty,oneof=viewer admin superadmin"`
}

// POST /api/admin/admins (superadmin)
func CreateAdmin(w http.ResponseWriter, r *http.Request) {
	creator, ok := currentAdmin(w, r)
	if !ok {
		return
	}
	var req createAdminRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.Role == "" {
		req.Role = models.RoleAdmin
	}

	admin := models.Admin{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Role:     req.Role,
		IsActive: true,
	}
	db := database.DB.WithContext(r.Context())

	var n int64
	if err := db.Model(&models.Admin{}).Where("username = ? OR email = ?", admin.Username, admin.Email).Count(&n).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if n > 0 {
		utils.WriteError(w, r, services.ErrDuplicateAdmin)
		return
	}
	if err := admin.HashPassword(); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := db.Create(&admin).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}

	zap.L().Info("admin created",
		zap.String("admin_id", admin.ID),
		zap.String("role", admin.Role),
		zap.String("created_by", creator.ID))
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Admin created", Data: admin})
}
