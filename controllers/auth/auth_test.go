package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/config"
	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Code    string                 `json:"code"`
	Data    map[string]interface{} `json:"data"`
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	database.DB = db
	t.Cleanup(func() {
		database.DB = nil
		_ = sqlDB.Close()
	})

	require.NoError(t, utils.InitAuth(config.JWTConfig{Secret: "auth-controller-secret", UserExpiry: time.Hour, AdminExpiry: time.Hour}))
	return db
}

func addOutlet(t *testing.T, db *gorm.DB, active bool) models.Location {
	t.Helper()
	loc := models.Location{
		Name:         "Justrite Lekki",
		Type:         models.LocationSupermarket,
		Address:      "Lekki Phase 1",
		City:         "Lekki",
		State:        "Lagos",
		Latitude:     6.4474,
		Longitude:    3.4723,
		RadiusMeters: 500,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&loc).Error)
	if !active {
		require.NoError(t, db.Model(&loc).Update("is_active", false).Error)
	}
	return loc
}

func call(t *testing.T, h http.HandlerFunc, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func newController(db *gorm.DB) *OnboardingController {
	otp := services.NewOTPService(db, nil, services.OTPOptions{})
	return NewOnboardingController(otp, middleware.NewOTPRateLimiter(nil), nil)
}

func registerBody(outletID, phone string, consent bool) string {
	b, _ := json.Marshal(map[string]interface{}{
		"fullName":     "Chioma Eze",
		"phoneNumber":  phone,
		"gender":       "Female",
		"storeOutlet":  outletID,
		"consentGiven": consent,
		"deviceId":     "device-1",
	})
	return string(b)
}

func TestRegister(t *testing.T) {
	db := setupDB(t)
	c := newController(db)
	outlet := addOutlet(t, db, true)

	code, env := call(t, c.Register, registerBody(outlet.ID, "08031234567", false))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "consent_required", env.Code)

	code, env = call(t, c.Register, registerBody(outlet.ID, "0803", true))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Code)

	closed := addOutlet(t, db, false)
	code, env = call(t, c.Register, registerBody(closed.ID, "08031234567", true))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid or inactive store location", env.Message)

	code, env = call(t, c.Register, registerBody(outlet.ID, "08031234567", true))
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.Equal(t, "08031234567", env.Data["phone_number"])
	id := env.Data["id"]

	// the same subscriber typed in international form is the same account
	code, env = call(t, c.Register, registerBody(outlet.ID, "+234 803 123 4567", true))
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User already exists", env.Message)
	assert.Equal(t, id, env.Data["id"])

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	var loc models.Location
	require.NoError(t, db.First(&loc, "id = ?", outlet.ID).Error)
	assert.Equal(t, 1, loc.TotalParticipants)
}

func TestOTPFlow(t *testing.T) {
	db := setupDB(t)
	c := newController(db)
	outlet := addOutlet(t, db, true)

	code, _ := call(t, c.Register, registerBody(outlet.ID, "08031234567", true))
	require.Equal(t, http.StatusCreated, code)

	code, env := call(t, c.RequestOTP, `{"phoneNumber":"2348031234567"}`)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, env.Data["expires_at"])

	// a second request straight away is throttled
	code, env = call(t, c.RequestOTP, `{"phoneNumber":"08031234567"}`)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "rate_limited", env.Code)

	var otp models.OTP
	require.NoError(t, db.Where("phone_number = ?", "08031234567").First(&otp).Error)

	code, env = call(t, c.VerifyPhone, `{"phoneNumber":"08031234567","otp":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid OTP. 2 attempts remaining.", env.Message)

	code, env = call(t, c.VerifyPhone, `{"phoneNumber":"08031234567","otp":"`+otp.Code+`"}`)
	require.Equal(t, http.StatusOK, code)
	token, _ := env.Data["access_token"].(string)
	require.NotEmpty(t, token)

	claims, err := utils.ValidateAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, utils.RoleUser, claims["role"])

	var u models.User
	require.NoError(t, db.Where("phone_number = ?", "08031234567").First(&u).Error)
	assert.True(t, u.PhoneVerified)
	assert.Equal(t, u.ID, claims["id"])

	// verification resets the per-phone throttle
	code, _ = call(t, c.RequestOTP, `{"phoneNumber":"08031234567"}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestVerifyPhone_NoOTP(t *testing.T) {
	db := setupDB(t)
	c := newController(db)

	code, env := call(t, c.VerifyPhone, `{"phoneNumber":"08031234567","otp":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No OTP found. Please request a new one.", env.Message)
}

func TestLogoutRevokesToken(t *testing.T) {
	setupDB(t)

	token, err := utils.GenerateAccessToken("user-1", utils.RoleUser)
	require.NoError(t, err)

	h := middleware.AuthMiddleware(http.HandlerFunc(LogoutHandler))
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = utils.ValidateAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, utils.ErrTokenRevoked)
}
