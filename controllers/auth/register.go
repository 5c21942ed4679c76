package auth

import (
	"errors"
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

type RegisterRequest struct {
	FullName     string `json:"fullName" validate:"required,nameok"`
	PhoneNumber  string `json:"phoneNumber" validate:"required,ngphone"`
	Email        string `json:"email" validate:"omitempty,email"`
	Gender       string `json:"gender" validate:"required,oneof=Male Female Other"`
	State        string `json:"state"`
	City         string `json:"city"`
	StoreOutlet  string `json:"storeOutlet" validate:"required"`
	ConsentGiven bool   `json:"consentGiven"`
	DeviceID     string `json:"deviceId"`
}

func registeredUser(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":              u.ID,
		"full_name":       u.FullName,
		"phone_number":    u.PhoneNumber,
		"store_outlet_id": u.StoreOutletID,
		"phone_verified":  u.PhoneVerified,
	}
}

// POST /api/auth/register
func (c *OnboardingController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if !req.ConsentGiven {
		utils.WriteError(w, r, services.ErrConsentRequired)
		return
	}

	phone := utils.CanonicalPhone(req.PhoneNumber)
	db := database.DB.WithContext(r.Context())

	// registering twice is not an error, the client simply carries on to OTP
	var existing models.User
	err := db.Where("phone_number = ?", phone).First(&existing).Error
	if err == nil {
		utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
			Success: true,
			Message: "User already exists",
			Data:    registeredUser(&existing),
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, r, err)
		return
	}

	var outlet models.Location
	if err := db.Where("id = ? AND is_active = ?", req.StoreOutlet, true).First(&outlet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, r, services.ErrLocationInactive.WithMessage("Invalid or inactive store location"))
			return
		}
		utils.WriteError(w, r, err)
		return
	}

	user := models.User{
		FullName:      strings.TrimSpace(req.FullName),
		PhoneNumber:   phone,
		Email:         utils.StringPtr(strings.TrimSpace(req.Email)),
		Gender:        req.Gender,
		State:         utils.StringPtr(strings.TrimSpace(req.State)),
		City:          utils.StringPtr(strings.TrimSpace(req.City)),
		StoreOutletID: outlet.ID,
		ConsentGiven:  true,
		DeviceID:      utils.StringPtr(strings.TrimSpace(req.DeviceID)),
		IPAddress:     utils.StringPtr(middleware.ClientIP(r, c.trusted)),
		RegisteredAt:  time.Now(),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Model(&models.Location{}).Where("id = ?", outlet.ID).
			UpdateColumn("total_participants", gorm.Expr("total_participants + 1")).Error
	})
	if err != nil {
		// a concurrent registration for the same phone won the unique index
		if lookup := db.Where("phone_number = ?", phone).First(&existing).Error; lookup == nil {
			utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
				Success: true,
				Message: "User already exists",
				Data:    registeredUser(&existing),
			})
			return
		}
		utils.WriteError(w, r, err)
		return
	}

	zap.L().Info("participant registered",
		zap.String("user_id", user.ID),
		zap.String("store_outlet_id", outlet.ID))

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Registration successful. Please verify your phone number.",
		Data:    registeredUser(&user),
	})
}
