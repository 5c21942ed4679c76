package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SMSSender delivers a text message. utils.TermiiClient satisfies it.
type SMSSender interface {
	Enabled() bool
	Send(ctx context.Context, phone, message string) error
}

type OTPOptions struct {
	Length        int
	ExpiryMinutes int
	MaxAttempts   int
	BypassEnabled bool
	BypassCode    string
	Now           Clock
}

type OTPService struct {
	db     *gorm.DB
	sender SMSSender
	opts   OTPOptions
}

// OTPIssued is returned to the caller after a code is stored
type OTPIssued struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func NewOTPService(db *gorm.DB, sender SMSSender, opts OTPOptions) *OTPService {
	if opts.Length <= 0 {
		opts.Length = 6
	}
	if opts.ExpiryMinutes <= 0 {
		opts.ExpiryMinutes = 10
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &OTPService{db: db, sender: sender, opts: opts}
}

func generateCode(length int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}

// Send replaces any OTP for phone with a fresh one and texts it.
// Delivery failures are logged; the stored code stays valid.
func (s *OTPService) Send(ctx context.Context, phone string) (*OTPIssued, error) {
	code, err := generateCode(s.opts.Length)
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	expiresAt := s.opts.Now().Add(time.Duration(s.opts.ExpiryMinutes) * time.Minute)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("phone_number = ?", phone).Delete(&models.OTP{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.OTP{PhoneNumber: phone, Code: code, ExpiresAt: expiresAt}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	msg := fmt.Sprintf("Your Power Oil OTP is %s. Valid for %d minutes.", code, s.opts.ExpiryMinutes)
	switch {
	case s.sender == nil || !s.sender.Enabled():
		utils.RecordOTPDelivery("skipped")
		zap.L().Debug("sms disabled, otp not delivered", zap.String("phone", phone), zap.String("otp", code))
	default:
		if err := s.sender.Send(ctx, phone, msg); err != nil {
			utils.RecordOTPDelivery("failed")
			zap.L().Warn("otp sms delivery failed", zap.String("phone", phone), zap.Error(err))
		} else {
			utils.RecordOTPDelivery("sent")
		}
	}
	return &OTPIssued{ExpiresAt: expiresAt}, nil
}

// Verify checks code against the live OTP for phone. Every comparison counts
// as an attempt, including the one that exhausts the allowance.
func (s *OTPService) Verify(ctx context.Context, phone, code string) error {
	if s.opts.BypassEnabled && s.opts.BypassCode != "" && code == s.opts.BypassCode {
		zap.L().Warn("otp bypass code accepted", zap.String("phone", phone))
		return nil
	}

	db := s.db.WithContext(ctx)
	var rec models.OTP
	err := db.Where("phone_number = ? AND verified = ?", phone, false).
		Order("created_at DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}

	if s.opts.Now().After(rec.ExpiresAt) {
		return ErrOTPExpired
	}
	if rec.Attempts >= s.opts.MaxAttempts {
		return ErrOTPMaxAttempts
	}

	// the guarded increment claims an attempt; concurrent verifies cannot overspend
	res := db.Model(&models.OTP{}).Where("id = ? AND attempts < ?", rec.ID, s.opts.MaxAttempts).
		Update("attempts", gorm.Expr("attempts + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("update otp attempts: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOTPMaxAttempts
	}
	rec.Attempts++

	if rec.Code != code {
		return ErrOTPInvalid.WithMessage("Invalid OTP. %d attempts remaining.", s.opts.MaxAttempts-rec.Attempts)
	}

	if err := db.Model(&models.OTP{}).Where("id = ?", rec.ID).Update("verified", true).Error; err != nil {
		return fmt.Errorf("mark otp verified: %w", err)
	}
	return nil
}
