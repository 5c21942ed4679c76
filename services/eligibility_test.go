package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) eligibilityRequest() EligibilityRequest {
	return EligibilityRequest{
		UserID:     f.user.ID,
		CampaignID: f.campaign.ID,
		LocationID: f.location.ID,
		Latitude:   testLat,
		Longitude:  testLon,
	}
}

func TestCheckEligibility_Eligible(t *testing.T) {
	f := newFixture(t)
	f.addPrize(t, "Bottle", "product", 1, nil, nil)
	svc := NewEligibilityService(f.db, fixedClock(testNow))

	res, err := svc.CheckEligibility(context.Background(), f.eligibilityRequest())
	require.NoError(t, err)
	assert.True(t, res.Eligible)
	assert.Equal(t, http.StatusOK, res.HTTPStatus())
}

func TestCheckEligibility_Refusals(t *testing.T) {
	f := newFixture(t)
	svc := NewEligibilityService(f.db, fixedClock(testNow))
	ctx := context.Background()

	req := f.eligibilityRequest()
	req.UserID = "missing"
	res, err := svc.CheckEligibility(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.Eligible)
	assert.Equal(t, "user_not_found", res.Code)
	assert.Equal(t, http.StatusNotFound, res.HTTPStatus())

	unverified := f.addUser(t, "08030000002")
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", unverified.ID).Update("phone_verified", false).Error)
	req = f.eligibilityRequest()
	req.UserID = unverified.ID
	res, err = svc.CheckEligibility(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "phone_not_verified", res.Code)
	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus())

	req = f.eligibilityRequest()
	req.Latitude += 0.01
	res, err = svc.CheckEligibility(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "out_of_range", res.Code)
	assert.Equal(t, http.StatusForbidden, res.HTTPStatus())
	assert.Contains(t, res.Details, "distance")

	require.NoError(t, f.db.Model(&models.Campaign{}).Where("id = ?", f.campaign.ID).Update("status", models.CampaignPaused).Error)
	res, err = svc.CheckEligibility(ctx, f.eligibilityRequest())
	require.NoError(t, err)
	assert.Equal(t, "campaign_inactive", res.Code)
}

func TestCheckEligibility_CooldownBoundary(t *testing.T) {
	f := newFixture(t)
	svc := NewEligibilityService(f.db, fixedClock(testNow))
	ctx := context.Background()

	last := testNow.AddDate(0, 0, -6)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", f.user.ID).Update("last_spin_date", last).Error)
	res, err := svc.CheckEligibility(ctx, f.eligibilityRequest())
	require.NoError(t, err)
	assert.False(t, res.Eligible)
	assert.Equal(t, "cooldown_active", res.Code)
	assert.Equal(t, "You can spin again in 1 day(s)", res.Reason)
	assert.Equal(t, 1, res.Details["days_remaining"])
	next, ok := res.Details["next_spin_date"].(*time.Time)
	require.True(t, ok)
	assert.True(t, next.Equal(last.AddDate(0, 0, 7)))

	last = testNow.AddDate(0, 0, -7)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", f.user.ID).Update("last_spin_date", last).Error)
	res, err = svc.CheckEligibility(ctx, f.eligibilityRequest())
	require.NoError(t, err)
	assert.True(t, res.Eligible)
}

func TestCheckEligibility_DailyWinLimits(t *testing.T) {
	f := newFixture(t)
	p := f.addPrize(t, "Bottle", "product", 0.5, intPtr(1), nil)
	f.addPrize(t, "Try Again", models.PrizeTypeNoWin, 0.5, nil, nil)
	svc := NewEligibilityService(f.db, fixedClock(testNow))
	ctx := context.Background()

	f.addWin(t, p.ID, "other-outlet", testNow.Add(-time.Hour))
	res, err := svc.CheckEligibility(ctx, f.eligibilityRequest())
	require.NoError(t, err)
	assert.Equal(t, "user_daily_limit", res.Code)

	other := f.addUser(t, "08030000003")
	f.addWin(t, p.ID, f.location.ID, testNow.Add(-2*time.Hour))
	req := f.eligibilityRequest()
	req.UserID = other.ID
	res, err = svc.CheckEligibility(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "location_daily_limit", res.Code)
}
