package services

import (
	"context"
	"math"
	"testing"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistance(t *testing.T) {
	// one degree of longitude on the equator
	assert.InDelta(t, 111194.93, HaversineDistance(0, 0, 0, 1), 0.5)
	assert.Zero(t, HaversineDistance(testLat, testLon, testLat, testLon))
	assert.InDelta(t, HaversineDistance(6.45, 3.39, 9.07, 7.49), HaversineDistance(9.07, 7.49, 6.45, 3.39), 1e-6)
}

func TestIsWithinRadius_Boundary(t *testing.T) {
	assert.True(t, IsWithinRadius(500, 500))
	assert.True(t, IsWithinRadius(499.9, 500))
	assert.False(t, IsWithinRadius(math.Nextafter(500, 1000), 500))
	assert.False(t, IsWithinRadius(500.01, 500))
}

func TestVerifyUserLocation(t *testing.T) {
	f := newFixture(t)
	svc := NewLocationService(f.db)
	ctx := context.Background()

	check, err := svc.VerifyUserLocation(ctx, testLat, testLon, f.location.ID)
	require.NoError(t, err)
	assert.True(t, check.Valid)
	assert.Equal(t, 500, check.AllowedRadius)
	assert.Equal(t, "Location verified successfully", check.Message)

	// roughly 1.1km north
	check, err = svc.VerifyUserLocation(ctx, testLat+0.01, testLon, f.location.ID)
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.InDelta(t, 1112, check.Distance, 2)
	assert.Contains(t, check.Message, "You must be within 500m")
	assert.ErrorIs(t, geofenceError(check), ErrOutOfRange)

	check, err = svc.VerifyUserLocation(ctx, testLat, testLon, "missing")
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, "Location not found or inactive", check.Message)
	assert.ErrorIs(t, geofenceError(check), ErrLocationNotFound)

	require.NoError(t, f.db.Model(&models.Location{}).Where("id = ?", f.location.ID).Update("is_active", false).Error)
	check, err = svc.VerifyUserLocation(ctx, testLat, testLon, f.location.ID)
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.ErrorIs(t, geofenceError(check), ErrLocationInactive)
}

func TestListLocations(t *testing.T) {
	f := newFixture(t)
	svc := NewLocationService(f.db)
	ctx := context.Background()

	abuja := models.Location{Name: "Abuja Market", Type: models.LocationOpenMarket, Address: "Wuse", City: "Abuja", State: "FCT", Latitude: 9.0765, Longitude: 7.3986, RadiusMeters: 500, IsActive: true}
	lekki := models.Location{Name: "Lekki Store", Type: models.LocationRetailStore, Address: "Lekki Phase 1", City: "Lekki", State: "Lagos", Latitude: 6.4474, Longitude: 3.4723, RadiusMeters: 500, IsActive: true}
	closed := models.Location{Name: "Closed Store", Type: models.LocationOther, Address: "Yaba", City: "Yaba", State: "Lagos", Latitude: 6.5095, Longitude: 3.3711, RadiusMeters: 500}
	for _, l := range []*models.Location{&abuja, &lekki, &closed} {
		require.NoError(t, f.db.Create(l).Error)
	}

	all, err := svc.ListLocations(ctx, LocationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, l := range all {
		assert.Nil(t, l.Distance)
	}

	lagos, err := svc.ListLocations(ctx, LocationFilter{State: "lag"})
	require.NoError(t, err)
	assert.Len(t, lagos, 2)

	lat, lon := 9.07, 7.40
	sorted, err := svc.ListLocations(ctx, LocationFilter{Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, abuja.ID, sorted[0].ID)
	assert.Less(t, *sorted[0].Distance, *sorted[1].Distance)
	assert.LessOrEqual(t, *sorted[1].Distance, *sorted[2].Distance)

	mapped, err := svc.ListLocations(ctx, LocationFilter{CampaignID: f.campaign.ID})
	require.NoError(t, err)
	require.Len(t, mapped, 1)
	assert.Equal(t, f.location.ID, mapped[0].ID)

	none, err := svc.ListLocations(ctx, LocationFilter{CampaignID: "unmapped"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
