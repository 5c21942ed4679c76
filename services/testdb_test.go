package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// Lagos outlet used by most fixtures
const (
	testLat = 6.5244
	testLon = 3.3792
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func intPtr(i int) *int { return &i }

type fixture struct {
	db       *gorm.DB
	campaign models.Campaign
	location models.Location
	user     models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{db: db}

	f.location = models.Location{
		Name:         "Shoprite Ikeja",
		Type:         models.LocationSupermarket,
		Address:      "Ikeja City Mall",
		City:         "Ikeja",
		State:        "Lagos",
		Latitude:     testLat,
		Longitude:    testLon,
		RadiusMeters: 500,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&f.location).Error)

	f.campaign = models.Campaign{
		Name:             "Test Campaign",
		StartDate:        testNow.AddDate(0, 0, -10),
		EndDate:          testNow.AddDate(0, 0, 10),
		Status:           models.CampaignActive,
		SpinCooldownDays: 7,
	}
	require.NoError(t, db.Create(&f.campaign).Error)
	require.NoError(t, db.Create(&models.LocationCampaignMapping{LocationID: f.location.ID, CampaignID: f.campaign.ID}).Error)

	f.user = f.addUser(t, "08030000001")
	return f
}

func (f *fixture) addUser(t *testing.T, phone string) models.User {
	t.Helper()
	u := models.User{
		FullName:      "Ada Obi",
		PhoneNumber:   phone,
		Gender:        models.GenderFemale,
		StoreOutletID: f.location.ID,
		ConsentGiven:  true,
		PhoneVerified: true,
		RegisteredAt:  testNow,
	}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) addPrize(t *testing.T, name, typ string, probability float64, maxPerDay, maxTotal *int) models.Prize {
	t.Helper()
	p := models.Prize{Name: name, Type: typ, Color: models.DefaultPrizeColor, IsActive: true}
	require.NoError(t, f.db.Create(&p).Error)
	rule := models.PrizeRule{
		CampaignID:  f.campaign.ID,
		PrizeID:     p.ID,
		Probability: probability,
		MaxPerDay:   maxPerDay,
		MaxTotal:    maxTotal,
	}
	require.NoError(t, f.db.Create(&rule).Error)
	return p
}

// addWin records a past winning spin directly
func (f *fixture) addWin(t *testing.T, prizeID, locationID string, at time.Time) {
	t.Helper()
	code := GenerateRedemptionCode(DefaultRedemptionPrefix)
	require.NoError(t, f.db.Create(&models.SpinResult{
		UserID:           f.user.ID,
		CampaignID:       f.campaign.ID,
		PrizeID:          prizeID,
		LocationID:       locationID,
		IsWin:            true,
		RedemptionCode:   &code,
		RedemptionStatus: models.RedemptionRedeemed,
		Latitude:         testLat,
		Longitude:        testLon,
		DeviceID:         "device-test",
		SpinDate:         at,
	}).Error)
}

type stubRand struct {
	f float64
	n int
}

func (s stubRand) Float64() float64 { return s.f }
func (s stubRand) Intn(n int) int   { return s.n % n }
