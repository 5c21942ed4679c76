package models

import "time"

// OTP is a one-time phone verification code. At most one live row exists per phone.
type OTP struct {
	Base
	PhoneNumber string    `gorm:"size:20;not null;index" json:"phone_number"`
	Code        string    `gorm:"column:otp;size:10;not null" json:"-"`
	ExpiresAt   time.Time `gorm:"not null" json:"expires_at"`
	Attempts    int       `gorm:"not null;default:0" json:"attempts"`
	Verified    bool      `gorm:"not null;default:false" json:"verified"`
}

func (OTP) TableName() string {
	return "otps"
}
