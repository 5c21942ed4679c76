package services

import (
	"testing"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCooldown_Boundary(t *testing.T) {
	assert.True(t, EvaluateCooldown(nil, 7, testNow).Eligible)

	last := testNow.AddDate(0, 0, -7)
	cd := EvaluateCooldown(&last, 7, testNow)
	assert.True(t, cd.Eligible)
	assert.Equal(t, 7, cd.DaysSince)

	last = testNow.AddDate(0, 0, -6)
	cd = EvaluateCooldown(&last, 7, testNow)
	assert.False(t, cd.Eligible)
	assert.Equal(t, 6, cd.DaysSince)
	assert.Equal(t, 1, cd.DaysRemaining)
	require.NotNil(t, cd.NextSpinDate)
	assert.True(t, cd.NextSpinDate.Equal(last.AddDate(0, 0, 7)))

	// partial days do not count
	last = testNow.AddDate(0, 0, -7).Add(time.Minute)
	assert.False(t, EvaluateCooldown(&last, 7, testNow).Eligible)

	last = testNow.Add(-time.Hour)
	assert.True(t, EvaluateCooldown(&last, 0, testNow).Eligible)
}

func TestCheckCampaign_Window(t *testing.T) {
	c := &models.Campaign{
		Status:    models.CampaignActive,
		StartDate: testNow.Add(8 * time.Hour),
		EndDate:   testNow.Add(-8 * time.Hour),
	}
	// same calendar day at both ends
	assert.NoError(t, checkCampaign(c, testNow))

	c.StartDate = testNow.AddDate(0, 0, 1)
	c.EndDate = testNow.AddDate(0, 0, 5)
	assert.ErrorIs(t, checkCampaign(c, testNow), ErrCampaignNotRunning)

	c.StartDate = testNow.AddDate(0, 0, -5)
	c.EndDate = testNow.AddDate(0, 0, -1)
	assert.ErrorIs(t, checkCampaign(c, testNow), ErrCampaignNotRunning)

	c.EndDate = testNow.AddDate(0, 0, 5)
	c.Status = models.CampaignPaused
	assert.ErrorIs(t, checkCampaign(c, testNow), ErrCampaignInactive)

	assert.ErrorIs(t, checkCampaign(nil, testNow), ErrCampaignNotFound)
}

func TestMaxWinsPerDay(t *testing.T) {
	f := newFixture(t)

	_, ok, err := maxWinsPerDay(f.db, f.campaign.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	f.addPrize(t, "Bottle", "product", 0.2, intPtr(5), nil)
	f.addPrize(t, "Cap", "merch", 0.2, intPtr(0), nil)
	f.addPrize(t, "Bag", "merch", 0.2, intPtr(3), nil)
	f.addPrize(t, "Try Again", models.PrizeTypeNoWin, 0.4, nil, nil)

	limit, ok, err := maxWinsPerDay(f.db, f.campaign.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, limit)
}

func TestCountWins_DayWindow(t *testing.T) {
	f := newFixture(t)
	p := f.addPrize(t, "Bottle", "product", 1, nil, nil)

	f.addWin(t, p.ID, f.location.ID, testNow.Add(-time.Hour))
	f.addWin(t, p.ID, f.location.ID, testNow.AddDate(0, 0, -1))
	f.addWin(t, p.ID, "elsewhere", testNow.Add(time.Hour))

	today := testNow
	n, err := countWins(f.db, winQuery{CampaignID: f.campaign.ID, Day: &today})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = countWins(f.db, winQuery{CampaignID: f.campaign.ID, LocationID: f.location.ID, Day: &today})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = countWins(f.db, winQuery{CampaignID: f.campaign.ID, PrizeID: p.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
