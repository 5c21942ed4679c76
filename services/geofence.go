package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"gorm.io/gorm"
)

const earthRadiusMeters = 6371000.0

// LocationCheck is the outcome of a geofence validation
type LocationCheck struct {
	Valid         bool             `json:"valid"`
	Distance      float64          `json:"distance"`
	AllowedRadius int              `json:"allowed_radius"`
	Message       string           `json:"message"`
	Location      *models.Location `json:"-"`
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineDistance returns the great-circle distance in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// IsWithinRadius is inclusive: a point exactly on the boundary passes
func IsWithinRadius(distance float64, radiusMeters int) bool {
	return distance <= float64(radiusMeters)
}

// verifyLocation runs the geofence against the given handle, which may be a transaction.
// A missing or inactive location is an invalid check, not an error.
func verifyLocation(db *gorm.DB, lat, lon float64, locationID string) (LocationCheck, error) {
	var loc models.Location
	err := db.Where("id = ?", locationID).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LocationCheck{Message: ErrLocationNotFound.Message}, nil
	}
	if err != nil {
		return LocationCheck{}, fmt.Errorf("load location: %w", err)
	}
	if !loc.IsActive {
		return LocationCheck{Message: ErrLocationNotFound.Message, Location: &loc}, nil
	}

	distance := HaversineDistance(lat, lon, loc.Latitude, loc.Longitude)
	check := LocationCheck{
		Valid:         IsWithinRadius(distance, loc.RadiusMeters),
		Distance:      distance,
		AllowedRadius: loc.RadiusMeters,
		Location:      &loc,
	}
	if check.Valid {
		check.Message = "Location verified successfully"
	} else {
		check.Message = fmt.Sprintf("You must be within %dm of the participating store. You are %.0fm away.", loc.RadiusMeters, distance)
	}
	return check, nil
}

// geofenceError turns a failed check into the domain error callers surface
func geofenceError(check LocationCheck) *Error {
	if check.Location == nil {
		return ErrLocationNotFound
	}
	if !check.Location.IsActive {
		return ErrLocationInactive
	}
	return ErrOutOfRange.WithMessage("%s", check.Message).WithDetails(map[string]interface{}{
		"distance":       math.Round(check.Distance),
		"allowed_radius": check.AllowedRadius,
	})
}

type LocationService struct {
	db *gorm.DB
}

func NewLocationService(db *gorm.DB) *LocationService {
	return &LocationService{db: db}
}

// VerifyUserLocation checks whether the point lies inside the location's geofence
func (s *LocationService) VerifyUserLocation(ctx context.Context, lat, lon float64, locationID string) (LocationCheck, error) {
	return verifyLocation(s.db.WithContext(ctx), lat, lon, locationID)
}

// LocationFilter narrows the public outlet list. Nil coordinates disable distance sorting.
type LocationFilter struct {
	State      string
	City       string
	CampaignID string
	Latitude   *float64
	Longitude  *float64
}

type LocationWithDistance struct {
	models.Location
	Distance *float64 `json:"distance"`
}

// ListLocations returns active outlets matching the filter, nearest first when coordinates are given
func (s *LocationService) ListLocations(ctx context.Context, f LocationFilter) ([]LocationWithDistance, error) {
	q := s.db.WithContext(ctx).Model(&models.Location{}).Where("is_active = ?", true)
	if f.State != "" {
		q = q.Where("LOWER(state) LIKE ?", "%"+strings.ToLower(f.State)+"%")
	}
	if f.City != "" {
		q = q.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(f.City)+"%")
	}
	if f.CampaignID != "" {
		var ids []string
		if err := s.db.WithContext(ctx).Model(&models.LocationCampaignMapping{}).
			Where("campaign_id = ?", f.CampaignID).Pluck("location_id", &ids).Error; err != nil {
			return nil, fmt.Errorf("load campaign locations: %w", err)
		}
		if len(ids) == 0 {
			return []LocationWithDistance{}, nil
		}
		q = q.Where("id IN ?", ids)
	}

	var locs []models.Location
	if err := q.Order("name ASC").Find(&locs).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	out := make([]LocationWithDistance, 0, len(locs))
	for _, l := range locs {
		item := LocationWithDistance{Location: l}
		if f.Latitude != nil && f.Longitude != nil {
			d := HaversineDistance(*f.Latitude, *f.Longitude, l.Latitude, l.Longitude)
			item.Distance = &d
		}
		out = append(out, item)
	}
	if f.Latitude != nil && f.Longitude != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return *out[i].Distance < *out[j].Distance
		})
	}
	return out, nil
}
