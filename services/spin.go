package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultRedemptionPrefix       = "PO-"
	DefaultRedemptionValidityDays = 30

	redemptionCodeAttempts = 5
)

// SpinRequest carries a spin attempt and the device metadata recorded with it
type SpinRequest struct {
	UserID     string
	CampaignID string
	LocationID string
	Latitude   float64
	Longitude  float64
	DeviceID   string
	IPAddress  string
	UserAgent  string
}

type SpinPrize struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Type        string  `json:"type"`
	Color       string  `json:"color"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// SpinOutcome is what a committed spin returns to the participant
type SpinOutcome struct {
	SpinID         string              `json:"spin_id"`
	Prize          SpinPrize           `json:"prize"`
	IsWin          bool                `json:"is_win"`
	RedemptionCode *string             `json:"redemption_code"`
	ExpiresAt      *time.Time          `json:"expires_at"`
	Value          decimal.NullDecimal `json:"value"`
}

type SpinOptions struct {
	RedemptionPrefix       string
	RedemptionValidityDays int
	Now                    Clock
}

type SpinService struct {
	db     *gorm.DB
	prizes *PrizeService
	opts   SpinOptions
}

func NewSpinService(db *gorm.DB, prizes *PrizeService, opts SpinOptions) *SpinService {
	if opts.RedemptionPrefix == "" {
		opts.RedemptionPrefix = DefaultRedemptionPrefix
	}
	if opts.RedemptionValidityDays <= 0 {
		opts.RedemptionValidityDays = DefaultRedemptionValidityDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SpinService{db: db, prizes: prizes, opts: opts}
}

// Spin validates, draws and records one spin in a single transaction.
// The campaign row is locked first and the user row second, which serialises
// concurrent spins of a campaign around the cap counts.
func (s *SpinService) Spin(ctx context.Context, req SpinRequest) (*SpinOutcome, error) {
	if req.DeviceID == "" {
		return nil, NewValidationError("deviceId is required")
	}

	var out *SpinOutcome
	now := s.opts.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		campaign, err := loadCampaign(tx, req.CampaignID, true)
		if err != nil {
			return err
		}
		user, err := loadUser(tx, req.UserID, true)
		if err != nil {
			return err
		}
		if err := checkUser(user); err != nil {
			return err
		}
		if err := checkCampaign(campaign, now); err != nil {
			return err
		}

		check, err := verifyLocation(tx, req.Latitude, req.Longitude, req.LocationID)
		if err != nil {
			return err
		}
		if !check.Valid {
			return geofenceError(check)
		}

		if err := checkCooldown(user, campaign, now); err != nil {
			return err
		}
		scope := dailyScope{user: true, campaign: true, location: true}
		if err := checkDailyCaps(tx, scope, user.ID, campaign.ID, req.LocationID, now); err != nil {
			return err
		}

		picked, err := s.prizes.SelectPrize(ctx, tx, campaign.ID, req.LocationID)
		if err != nil {
			return err
		}

		result := models.SpinResult{
			UserID:     user.ID,
			CampaignID: campaign.ID,
			PrizeID:    picked.Prize.ID,
			LocationID: req.LocationID,
			IsWin:      !picked.Prize.IsLoss(),
			Latitude:   req.Latitude,
			Longitude:  req.Longitude,
			DeviceID:   req.DeviceID,
			IPAddress:  utils.StringPtr(req.IPAddress),
			UserAgent:  utils.StringPtr(req.UserAgent),
			SpinDate:   now,
		}
		if result.IsWin {
			code, err := s.uniqueRedemptionCode(tx)
			if err != nil {
				return err
			}
			expires := now.AddDate(0, 0, s.opts.RedemptionValidityDays)
			redeemed := now
			result.RedemptionCode = &code
			result.RedemptionStatus = models.RedemptionRedeemed
			result.RedeemedAt = &redeemed
			result.ExpiresAt = &expires
		} else {
			result.RedemptionStatus = models.RedemptionLossPrize
		}
		if err := tx.Create(&result).Error; err != nil {
			return fmt.Errorf("insert spin result: %w", err)
		}

		wins := 0
		if result.IsWin {
			wins = 1
		}
		userUpdates := map[string]interface{}{
			"total_spins":    gorm.Expr("total_spins + ?", 1),
			"total_wins":     gorm.Expr("total_wins + ?", wins),
			"last_spin_date": now,
			"device_id":      req.DeviceID,
		}
		if req.IPAddress != "" {
			userUpdates["ip_address"] = req.IPAddress
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(userUpdates).Error; err != nil {
			return fmt.Errorf("update user counters: %w", err)
		}
		if err := tx.Model(&models.Campaign{}).Where("id = ?", campaign.ID).Updates(map[string]interface{}{
			"total_spins": gorm.Expr("total_spins + ?", 1),
			"total_wins":  gorm.Expr("total_wins + ?", wins),
		}).Error; err != nil {
			return fmt.Errorf("update campaign counters: %w", err)
		}

		out = &SpinOutcome{
			SpinID: result.ID,
			Prize: SpinPrize{
				ID:          picked.Prize.ID,
				Name:        picked.Prize.Name,
				Description: picked.Prize.Description,
				Type:        picked.Prize.Type,
				Color:       picked.Prize.Color,
				ImageURL:    picked.Prize.ImageURL,
			},
			IsWin:          result.IsWin,
			RedemptionCode: result.RedemptionCode,
			ExpiresAt:      result.ExpiresAt,
			Value:          picked.Rule.Value,
		}
		return nil
	}, s.txOptions()...)

	if err != nil {
		var de *Error
		if errors.As(err, &de) {
			utils.RecordSpinOutcome(de.Code)
			return nil, de
		}
		utils.RecordSpinOutcome("error")
		zap.L().Error("spin transaction failed",
			zap.String("user_id", req.UserID),
			zap.String("campaign_id", req.CampaignID),
			zap.String("location_id", req.LocationID),
			zap.Error(err),
		)
		return nil, err
	}

	if out.IsWin {
		utils.RecordSpinOutcome("win")
	} else {
		utils.RecordSpinOutcome("loss")
	}
	zap.L().Info("spin recorded",
		zap.String("spin_id", out.SpinID),
		zap.String("user_id", req.UserID),
		zap.String("campaign_id", req.CampaignID),
		zap.String("location_id", req.LocationID),
		zap.String("prize_id", out.Prize.ID),
		zap.Bool("is_win", out.IsWin),
	)
	return out, nil
}

// txOptions asks MySQL for READ COMMITTED so the counts taken after the row
// locks see every spin committed before them
func (s *SpinService) txOptions() []*sql.TxOptions {
	if s.db.Dialector != nil && s.db.Dialector.Name() == "mysql" {
		return []*sql.TxOptions{{Isolation: sql.LevelReadCommitted}}
	}
	return nil
}

func (s *SpinService) uniqueRedemptionCode(tx *gorm.DB) (string, error) {
	for i := 0; i < redemptionCodeAttempts; i++ {
		code := GenerateRedemptionCode(s.opts.RedemptionPrefix)
		var n int64
		if err := tx.Model(&models.SpinResult{}).Where("redemption_code = ?", code).Count(&n).Error; err != nil {
			return "", fmt.Errorf("check redemption code: %w", err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique redemption code")
}
