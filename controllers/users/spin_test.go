package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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

type world struct {
	db       *gorm.DB
	ctrl     *SpinController
	campaign models.Campaign
	location models.Location
	user     models.User
}

func newWorld(t *testing.T) *world {
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

	w := &world{db: db}
	w.location = models.Location{
		Name:         "Shoprite Lekki",
		Type:         models.LocationSupermarket,
		Address:      "Admiralty Way",
		City:         "Lekki",
		State:        "Lagos",
		Latitude:     6.4474,
		Longitude:    3.4723,
		RadiusMeters: 500,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&w.location).Error)

	now := time.Now()
	w.campaign = models.Campaign{
		Name:             "Lekki Launch",
		StartDate:        now.AddDate(0, 0, -3),
		EndDate:          now.AddDate(0, 0, 3),
		Status:           models.CampaignActive,
		MaxSpinsPerUser:  1,
		SpinCooldownDays: 7,
	}
	require.NoError(t, db.Create(&w.campaign).Error)
	require.NoError(t, db.Create(&models.LocationCampaignMapping{LocationID: w.location.ID, CampaignID: w.campaign.ID}).Error)

	prize := models.Prize{Name: "Power Oil 1L", Type: "product", Color: models.DefaultPrizeColor, IsActive: true}
	require.NoError(t, db.Create(&prize).Error)
	require.NoError(t, db.Create(&models.PrizeRule{CampaignID: w.campaign.ID, PrizeID: prize.ID, Probability: 1}).Error)

	w.user = models.User{
		FullName:      "Chioma Eze",
		PhoneNumber:   "08091112222",
		Gender:        models.GenderFemale,
		StoreOutletID: w.location.ID,
		ConsentGiven:  true,
		PhoneVerified: true,
		RegisteredAt:  now,
	}
	require.NoError(t, db.Create(&w.user).Error)

	prizes := services.NewPrizeService(db, utils.NewLockedRand(3), nil)
	w.ctrl = NewSpinController(
		services.NewEligibilityService(db, nil),
		services.NewSpinService(db, prizes, services.SpinOptions{}),
		prizes,
		nil,
	)
	return w
}

func (w *world) body(userID, deviceID string) string {
	return fmt.Sprintf(`{"userId":%q,"campaignId":%q,"locationId":%q,"latitude":%f,"longitude":%f,"deviceId":%q}`,
		userID, w.campaign.ID, w.location.ID, w.location.Latitude, w.location.Longitude, deviceID)
}

func post(t *testing.T, h http.HandlerFunc, uid, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req = req.WithContext(context.WithValue(req.Context(), utils.UserIDKey, uid))
	}
	rec := httptest.NewRecorder()
	h(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestSpinHandler(t *testing.T) {
	w := newWorld(t)

	code, _ := post(t, w.ctrl.Spin, "", w.body("", "device-1"))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := post(t, w.ctrl.Spin, w.user.ID, w.body("someone-else", "device-1"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", env.Code)

	code, env = post(t, w.ctrl.Spin, w.user.ID, w.body("", ""))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Code)

	code, env = post(t, w.ctrl.Eligibility, w.user.ID, w.body("", "device-1"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, env.Data["eligible"])

	code, env = post(t, w.ctrl.Spin, w.user.ID, w.body(w.user.ID, "device-1"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Congratulations! You won Power Oil 1L", env.Message)
	assert.Equal(t, true, env.Data["is_win"])
	assert.NotEmpty(t, env.Data["redemption_code"])

	code, env = post(t, w.ctrl.Spin, w.user.ID, w.body("", "device-1"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "cooldown_active", env.Code)

	code, env = post(t, w.ctrl.Eligibility, w.user.ID, w.body("", "device-1"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "cooldown_active", env.Code)
	assert.Equal(t, false, env.Data["eligible"])
}

func TestEligibilityHandler_OutOfRange(t *testing.T) {
	w := newWorld(t)
	body := fmt.Sprintf(`{"campaignId":%q,"locationId":%q,"latitude":6.6,"longitude":3.35}`, w.campaign.ID, w.location.ID)

	code, env := post(t, w.ctrl.Eligibility, w.user.ID, body)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "out_of_range", env.Code)
}

func TestAvailablePrizesHandler(t *testing.T) {
	w := newWorld(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/prizes/available", nil)
	rec := httptest.NewRecorder()
	w.ctrl.AvailablePrizes(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet,
		"/api/users/prizes/available?campaignId="+w.campaign.ID+"&locationId="+w.location.ID, nil)
	rec = httptest.NewRecorder()
	w.ctrl.AvailablePrizes(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.EqualValues(t, 1, env.Data["count"])
}

func TestVerifyLocationHandler(t *testing.T) {
	w := newWorld(t)
	c := NewCatalogController(services.NewLocationService(w.db), services.NewCatalogService(w.db))

	get := func(query string) (int, envelope) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/locations/"+w.location.ID+"/verify"+query, nil)
		req = mux.SetURLVars(req, map[string]string{"id": w.location.ID})
		rec := httptest.NewRecorder()
		c.VerifyLocation(rec, req)
		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		return rec.Code, env
	}

	code, _ := get("?latitude=6.4474")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := get("?latitude=6.4474&longitude=3.4723")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, true, env.Data["valid"])

	code, env = get("?latitude=6.4574&longitude=3.4723")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, env.Success)
	assert.EqualValues(t, 500, env.Data["allowed_radius"])
}
