package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the UUID primary key and timestamps shared by every table
type Base struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All returns every model managed by migrations, parents first
func All() []interface{} {
	return []interface{}{
		&Admin{},
		&Campaign{},
		&Location{},
		&LocationCampaignMapping{},
		&Prize{},
		&PrizeRule{},
		&User{},
		&SpinResult{},
		&OTP{},
		&RevokedToken{},
	}
}
