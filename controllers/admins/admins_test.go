package admins

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
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/gorilla/mux"
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
	require.NoError(t, utils.InitAuth(config.JWTConfig{Secret: "admin-controller-secret", UserExpiry: time.Hour, AdminExpiry: time.Hour}))
	return db
}

func do(t *testing.T, h http.HandlerFunc, method, body string, vars map[string]string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	h(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func addAdmin(t *testing.T, db *gorm.DB, username, password string, active bool) models.Admin {
	t.Helper()
	a := models.Admin{
		Username: username,
		Password: password,
		FullName: "Ops " + username,
		Email:    username + "@poweroil.test",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	require.NoError(t, a.HashPassword())
	require.NoError(t, db.Create(&a).Error)
	if !active {
		require.NoError(t, db.Model(&a).Update("is_active", false).Error)
	}
	return a
}

func addLocation(t *testing.T, db *gorm.DB, name string) models.Location {
	t.Helper()
	loc := models.Location{
		Name:         name,
		Type:         models.LocationRetailStore,
		Address:      "12 Allen Avenue",
		City:         "Ikeja",
		State:        "Lagos",
		Latitude:     6.6018,
		Longitude:    3.3515,
		RadiusMeters: 300,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&loc).Error)
	return loc
}

func TestLogin(t *testing.T) {
	db := setupDB(t)
	addAdmin(t, db, "login-ok", "correct-horse", true)
	addAdmin(t, db, "login-off", "correct-horse", false)

	code, env := do(t, Login, http.MethodPost, `{"username":"login-ok","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_credentials", env.Code)

	code, env = do(t, Login, http.MethodPost, `{"username":"login-off","password":"correct-horse"}`, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "account_inactive", env.Code)

	code, env = do(t, Login, http.MethodPost, `{"username":"login-ok","password":"correct-horse"}`, nil)
	require.Equal(t, http.StatusOK, code)
	token, _ := env.Data["token"].(string)
	claims, err := utils.ValidateAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims["role"])

	var a models.Admin
	require.NoError(t, db.Where("username = ?", "login-ok").First(&a).Error)
	assert.NotNil(t, a.LastLogin)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	db := setupDB(t)
	addAdmin(t, db, "login-locked", "correct-horse", true)

	for i := 0; i < 3; i++ {
		code, _ := do(t, Login, http.MethodPost, `{"username":"login-locked","password":"wrong"}`, nil)
		require.Equal(t, http.StatusUnauthorized, code)
	}

	code, env := do(t, Login, http.MethodPost, `{"username":"login-locked","password":"correct-horse"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "account_locked", env.Code)
	assert.NotNil(t, env.Data["retry_after_seconds"])
}

func TestCampaignCRUD(t *testing.T) {
	db := setupDB(t)
	c := NewCatalogController(services.NewCatalogService(db), nil)
	loc := addLocation(t, db, "Ikeja Outlet")

	code, env := do(t, c.CreateCampaign, http.MethodPost,
		`{"name":"Festive Spin","startDate":"2024-07-10","endDate":"2024-07-01"}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_campaign_dates", env.Code)

	code, env = do(t, c.CreateCampaign, http.MethodPost,
		`{"name":"Festive Spin","startDate":"2024-07-01","endDate":"2024-07-31","locationIds":["`+loc.ID+`"]}`, nil)
	require.Equal(t, http.StatusCreated, code)
	id, _ := env.Data["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, models.CampaignDraft, env.Data["status"])
	assert.EqualValues(t, 7, env.Data["spin_cooldown_days"])
	assert.Equal(t, []interface{}{loc.ID}, env.Data["location_ids"])

	// an unknown location rolls the whole update back
	code, env = do(t, c.UpdateCampaign, http.MethodPut,
		`{"name":"Renamed","startDate":"2024-07-01","endDate":"2024-07-31","locationIds":["missing"]}`,
		map[string]string{"id": id})
	assert.Equal(t, http.StatusNotFound, code)
	var stored models.Campaign
	require.NoError(t, db.First(&stored, "id = ?", id).Error)
	assert.Equal(t, "Festive Spin", stored.Name)

	// omitting locationIds keeps the mapping
	code, env = do(t, c.UpdateCampaign, http.MethodPut,
		`{"name":"Renamed","startDate":"2024-07-01","endDate":"2024-07-31","status":"active","spinCooldownDays":0}`,
		map[string]string{"id": id})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Renamed", env.Data["name"])
	assert.EqualValues(t, 0, env.Data["spin_cooldown_days"])
	assert.Equal(t, []interface{}{loc.ID}, env.Data["location_ids"])

	code, env = do(t, c.UpdateCampaign, http.MethodPut,
		`{"name":"Renamed","startDate":"2024-07-01","endDate":"2024-07-31","locationIds":[]}`,
		map[string]string{"id": id})
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, env.Data["location_ids"])

	code, _ = do(t, c.DeleteCampaign, http.MethodDelete, "", map[string]string{"id": id})
	assert.Equal(t, http.StatusOK, code)
	code, env = do(t, c.GetCampaign, http.MethodGet, "", map[string]string{"id": id})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "campaign_not_found", env.Code)
}

func TestLocationCreateDefaults(t *testing.T) {
	db := setupDB(t)
	c := NewCatalogController(services.NewCatalogService(db), nil)

	code, env := do(t, c.CreateLocation, http.MethodPost,
		`{"name":"Wuse Market","address":"Wuse Zone 5","city":"Abuja","state":"FCT","latitude":9.0579,"longitude":7.4951}`, nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, models.LocationOther, env.Data["type"])
	assert.EqualValues(t, models.DefaultRadiusMeters, env.Data["radius_meters"])
	assert.Equal(t, true, env.Data["is_active"])

	code, env = do(t, c.CreateLocation, http.MethodPost,
		`{"name":"Nowhere","address":"x","city":"y","state":"z","latitude":91,"longitude":7.4951}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Code)
}

func TestPrizeAndRuleEndpoints(t *testing.T) {
	db := setupDB(t)
	c := NewCatalogController(services.NewCatalogService(db), nil)

	require.NoError(t, db.Create(&models.Campaign{
		Base:      models.Base{ID: "camp-1"},
		Name:      "Rules",
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 1, 0),
		Status:    models.CampaignActive,
	}).Error)

	code, env := do(t, c.CreatePrize, http.MethodPost, `{"name":"Power Oil 3L","type":"product"}`, nil)
	require.Equal(t, http.StatusCreated, code)
	prizeID, _ := env.Data["id"].(string)
	assert.Equal(t, models.DefaultPrizeColor, env.Data["color"])
	assert.Equal(t, true, env.Data["is_active"])

	code, env = do(t, c.CreatePrizeRule, http.MethodPost,
		`{"campaignId":"camp-1","prizeId":"`+prizeID+`","probability":1.5}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_probability", env.Code)

	body := `{"campaignId":"camp-1","prizeId":"` + prizeID + `","probability":0.25,"maxPerDay":5,"value":"1500.00"}`
	code, env = do(t, c.CreatePrizeRule, http.MethodPost, body, nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Nil(t, env.Data["max_total"])
	ruleID, _ := env.Data["id"].(string)
	require.NotEmpty(t, ruleID)

	code, env = do(t, c.GetPrizeRule, http.MethodGet, "", map[string]string{"id": ruleID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.25, env.Data["probability"])
	prize, _ := env.Data["prize"].(map[string]interface{})
	assert.Equal(t, "Power Oil 3L", prize["name"])
	campaign, _ := env.Data["campaign"].(map[string]interface{})
	assert.Equal(t, "Rules", campaign["name"])

	code, env = do(t, c.GetPrizeRule, http.MethodGet, "", map[string]string{"id": "missing"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "prize_rule_not_found", env.Code)

	code, env = do(t, c.CreatePrizeRule, http.MethodPost, body, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "duplicate_prize_rule", env.Code)

	code, _ = do(t, c.UploadPrizeImage, http.MethodPost, "", map[string]string{"id": prizeID})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestUserSpinsHandler_Filters(t *testing.T) {
	db := setupDB(t)
	loc := addLocation(t, db, "Yaba Outlet")
	user := models.User{
		FullName:      "Tunde Bello",
		PhoneNumber:   "08030000011",
		Gender:        models.GenderMale,
		StoreOutletID: loc.ID,
		ConsentGiven:  true,
		PhoneVerified: true,
		RegisteredAt:  time.Now(),
	}
	require.NoError(t, db.Create(&user).Error)

	now := time.Now()
	for i, win := range []bool{true, false, true} {
		status := models.RedemptionLossPrize
		if win {
			status = models.RedemptionRedeemed
		}
		require.NoError(t, db.Create(&models.SpinResult{
			UserID:           user.ID,
			CampaignID:       "camp-1",
			PrizeID:          "prize-1",
			LocationID:       loc.ID,
			IsWin:            win,
			RedemptionStatus: status,
			Latitude:         loc.Latitude,
			Longitude:        loc.Longitude,
			DeviceID:         "device",
			SpinDate:         now.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/spins?isWin=true&limit=1", nil)
	rec := httptest.NewRecorder()
	UserSpinsHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.EqualValues(t, 2, env.Data["total_spins"])
	assert.EqualValues(t, 2, env.Data["total_wins"])
	items, _ := env.Data["items"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Tunde Bello", first["user_name"])
	assert.Equal(t, "Yaba Outlet", first["location_name"])
}
