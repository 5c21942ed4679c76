package auth

import (
	"errors"
	"math"
	"net/http"

	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"gorm.io/gorm"
)

// OnboardingController registers participants and verifies their phone numbers
type OnboardingController struct {
	otp     *services.OTPService
	limiter *middleware.OTPRateLimiter
	trusted []string
}

func NewOnboardingController(otp *services.OTPService, limiter *middleware.OTPRateLimiter, trustedProxies []string) *OnboardingController {
	return &OnboardingController{otp: otp, limiter: limiter, trusted: trustedProxies}
}

type otpRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,ngphone"`
}

type verifyRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,ngphone"`
	OTP         string `json:"otp" validate:"required"`
}

func writeOTPLimited(w http.ResponseWriter, msg string, wait float64) {
	utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
		Success: false,
		Message: msg,
		Code:    "rate_limited",
		Data:    map[string]interface{}{"retry_after_seconds": int(math.Ceil(wait))},
	})
}

// POST /api/auth/otp/request
func (c *OnboardingController) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	phone := utils.CanonicalPhone(req.PhoneNumber)

	if c.limiter != nil {
		if ok, wait, msg := c.limiter.CheckIPRateLimit(c.limiter.ClientIP(r)); !ok {
			writeOTPLimited(w, msg, wait.Seconds())
			return
		}
		if ok, wait, msg := c.limiter.CheckPhoneRateLimit(phone); !ok {
			writeOTPLimited(w, msg, wait.Seconds())
			return
		}
	}

	issued, err := c.otp.Send(r.Context(), phone)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OTP sent successfully",
		Data:    issued,
	})
}

// POST /api/auth/otp/verify
func (c *OnboardingController) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	phone := utils.CanonicalPhone(req.PhoneNumber)

	if err := c.otp.Verify(r.Context(), phone, req.OTP); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if c.limiter != nil {
		c.limiter.ResetPhoneLimit(phone)
	}

	db := database.DB.WithContext(r.Context())
	var user models.User
	err := db.Where("phone_number = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// verified before registering; the client registers next
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
			Success: true,
			Message: "Phone number verified",
			Data:    map[string]interface{}{"verified": true},
		})
		return
	}
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	if !user.PhoneVerified {
		if err := db.Model(&user).Update("phone_verified", true).Error; err != nil {
			utils.WriteError(w, r, err)
			return
		}
	}

	token, err := utils.GenerateAccessToken(user.ID, utils.RoleUser)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Phone number verified",
		Data: map[string]interface{}{
			"verified":     true,
			"access_token": token,
			"user":         registeredUser(&user),
		},
	})
}
