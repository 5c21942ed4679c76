package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"
)

// EligibilityRequest identifies a prospective spin
type EligibilityRequest struct {
	UserID     string
	CampaignID string
	LocationID string
	Latitude   float64
	Longitude  float64
}

// EligibilityResult is the advisory verdict shown before the wheel is spun
type EligibilityResult struct {
	Eligible bool                   `json:"eligible"`
	Reason   string                 `json:"reason,omitempty"`
	Code     string                 `json:"code,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
	status   int
}

// HTTPStatus is the status a refusal maps to, or 200 when eligible
func (r EligibilityResult) HTTPStatus() int {
	if r.Eligible || r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

type EligibilityService struct {
	db  *gorm.DB
	now Clock
}

func NewEligibilityService(db *gorm.DB, now Clock) *EligibilityService {
	if now == nil {
		now = time.Now
	}
	return &EligibilityService{db: db, now: now}
}

// CheckEligibility runs the ordered pre-flight checks and stops at the first refusal.
// It reserves nothing; the spin transaction repeats the checks authoritatively.
// The error return is reserved for store failures.
func (s *EligibilityService) CheckEligibility(ctx context.Context, req EligibilityRequest) (EligibilityResult, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	err := func() error {
		user, err := loadUser(db, req.UserID, false)
		if err != nil {
			return err
		}
		if err := checkUser(user); err != nil {
			return err
		}

		campaign, err := loadCampaign(db, req.CampaignID, false)
		if err != nil {
			return err
		}
		if err := checkCampaign(campaign, now); err != nil {
			return err
		}

		check, err := verifyLocation(db, req.Latitude, req.Longitude, req.LocationID)
		if err != nil {
			return err
		}
		if !check.Valid {
			return geofenceError(check)
		}

		if err := checkCooldown(user, campaign, now); err != nil {
			return err
		}
		return checkDailyCaps(db, dailyScope{user: true, location: true}, user.ID, campaign.ID, req.LocationID, now)
	}()

	if err == nil {
		return EligibilityResult{Eligible: true, Reason: "User is eligible to spin"}, nil
	}
	var de *Error
	if errors.As(err, &de) {
		return EligibilityResult{
			Eligible: false,
			Reason:   de.Message,
			Code:     de.Code,
			Details:  de.Details,
			status:   de.HTTPStatus(),
		}, nil
	}
	return EligibilityResult{}, err
}
