package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"gorm.io/gorm"
)

// Clock returns the current time. Services take one so day boundaries are testable.
type Clock func() time.Time

// RandomSource is the subset of math/rand the prize draw needs
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// dayBounds returns [start of t's day, start of the next day) in t's location
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// startOfDay truncates t to midnight in loc
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// winQuery scopes a count of winning spins. Empty ids are not filtered on.
type winQuery struct {
	CampaignID string
	PrizeID    string
	LocationID string
	UserID     string
	Day        *time.Time
}

func countWins(db *gorm.DB, q winQuery) (int64, error) {
	tx := db.Model(&models.SpinResult{}).Where("is_win = ?", true)
	if q.CampaignID != "" {
		tx = tx.Where("campaign_id = ?", q.CampaignID)
	}
	if q.PrizeID != "" {
		tx = tx.Where("prize_id = ?", q.PrizeID)
	}
	if q.LocationID != "" {
		tx = tx.Where("location_id = ?", q.LocationID)
	}
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.Day != nil {
		from, to := dayBounds(*q.Day)
		tx = tx.Where("spin_date >= ? AND spin_date < ?", from, to)
	}

	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count wins: %w", err)
	}
	return n, nil
}

// maxWinsPerDay is the smallest positive maxPerDay across the campaign's rules.
// ok is false when no rule sets one, which disables the daily checks.
func maxWinsPerDay(db *gorm.DB, campaignID string) (limit int, ok bool, err error) {
	var values []sql.NullInt64
	if err := db.Model(&models.PrizeRule{}).Where("campaign_id = ?", campaignID).Pluck("max_per_day", &values).Error; err != nil {
		return 0, false, fmt.Errorf("load daily caps: %w", err)
	}
	for _, v := range values {
		if !v.Valid || v.Int64 <= 0 {
			continue
		}
		if !ok || int(v.Int64) < limit {
			limit, ok = int(v.Int64), true
		}
	}
	return limit, ok, nil
}
