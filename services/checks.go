package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The checks below are shared by the pre-flight eligibility evaluator and the spin
// transaction. Each returns a *Error for a refusal and a wrapped error for store failures.

func lockForUpdate(db *gorm.DB, lock bool) *gorm.DB {
	if lock {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func loadUser(db *gorm.DB, userID string, lock bool) (*models.User, error) {
	var u models.User
	err := lockForUpdate(db, lock).Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &u, nil
}

func loadCampaign(db *gorm.DB, campaignID string, lock bool) (*models.Campaign, error) {
	var c models.Campaign
	err := lockForUpdate(db, lock).Where("id = ?", campaignID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	return &c, nil
}

func checkUser(u *models.User) error {
	if u == nil {
		return ErrUserNotFound
	}
	if !u.PhoneVerified {
		return ErrPhoneNotVerified
	}
	return nil
}

// checkCampaign requires an active campaign whose date window contains today.
// Both ends of the window are inclusive and compared by calendar date.
func checkCampaign(c *models.Campaign, now time.Time) error {
	if c == nil {
		return ErrCampaignNotFound
	}
	if c.Status != models.CampaignActive {
		return ErrCampaignInactive
	}
	today := startOfDay(now, now.Location())
	if today.Before(startOfDay(c.StartDate, now.Location())) || today.After(startOfDay(c.EndDate, now.Location())) {
		return ErrCampaignNotRunning
	}
	return nil
}

// Cooldown describes where a participant stands against the campaign's spin cooldown
type Cooldown struct {
	Eligible      bool
	DaysSince     int
	DaysRemaining int
	NextSpinDate  *time.Time
}

// EvaluateCooldown counts whole elapsed days since the last spin
func EvaluateCooldown(lastSpin *time.Time, cooldownDays int, now time.Time) Cooldown {
	if lastSpin == nil {
		return Cooldown{Eligible: true}
	}
	days := int(now.Sub(*lastSpin) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	next := lastSpin.AddDate(0, 0, cooldownDays)
	cd := Cooldown{
		Eligible:     days >= cooldownDays,
		DaysSince:    days,
		NextSpinDate: &next,
	}
	if !cd.Eligible {
		cd.DaysRemaining = cooldownDays - days
	}
	return cd
}

func checkCooldown(u *models.User, c *models.Campaign, now time.Time) error {
	cd := EvaluateCooldown(u.LastSpinDate, c.SpinCooldownDays, now)
	if cd.Eligible {
		return nil
	}
	return ErrCooldownActive.
		WithMessage("You can spin again in %d day(s)", cd.DaysRemaining).
		WithDetails(map[string]interface{}{
			"next_spin_date": cd.NextSpinDate,
			"days_remaining": cd.DaysRemaining,
		})
}

// dailyScope selects which daily win counters a caller enforces
type dailyScope struct {
	user     bool
	campaign bool
	location bool
}

// checkDailyCaps enforces the campaign's tightest maxPerDay against today's wins
func checkDailyCaps(db *gorm.DB, scope dailyScope, userID, campaignID, locationID string, now time.Time) error {
	limit, ok, err := maxWinsPerDay(db, campaignID)
	if err != nil || !ok {
		return err
	}

	if scope.campaign {
		n, err := countWins(db, winQuery{CampaignID: campaignID, Day: &now})
		if err != nil {
			return err
		}
		if n >= int64(limit) {
			return ErrCampaignDailyLimit.
				WithMessage("Maximum wins per day reached (%d wins). The campaign has already reached %d win(s) today.", limit, n).
				WithDetails(map[string]interface{}{"limit": limit, "count": n})
		}
	}
	if scope.user {
		n, err := countWins(db, winQuery{CampaignID: campaignID, UserID: userID, Day: &now})
		if err != nil {
			return err
		}
		if n >= int64(limit) {
			return ErrUserDailyLimit.
				WithMessage("Maximum wins per day reached (%d wins). You have already won %d time(s) today.", limit, n).
				WithDetails(map[string]interface{}{"limit": limit, "count": n})
		}
	}
	if scope.location {
		n, err := countWins(db, winQuery{CampaignID: campaignID, LocationID: locationID, Day: &now})
		if err != nil {
			return err
		}
		if n >= int64(limit) {
			return ErrLocationDailyLimit.
				WithMessage("Maximum wins per location reached (%d wins). This location has already reached the daily win limit.", limit).
				WithDetails(map[string]interface{}{"limit": limit, "count": n})
		}
	}
	return nil
}
