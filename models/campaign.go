package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CampaignDraft     = "draft"
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
)

// ValidCampaignStatus reports whether s is a known campaign status
func ValidCampaignStatus(s string) bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignPaused, CampaignCompleted:
		return true
	}
	return false
}

type Campaign struct {
	Base
	Name              string          `gorm:"size:255;not null" json:"name"`
	Description       *string         `gorm:"type:text" json:"description,omitempty"`
	StartDate         time.Time       `gorm:"not null" json:"start_date"`
	EndDate           time.Time       `gorm:"not null" json:"end_date"`
	Status            string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	MaxSpinsPerUser   int             `gorm:"not null;default:1" json:"max_spins_per_user"`
	SpinCooldownDays  int             `gorm:"not null" json:"spin_cooldown_days"`
	TotalBudget       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_budget"`
	SpentBudget       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"spent_budget"`
	TotalParticipants int             `gorm:"not null;default:0" json:"total_participants"`
	TotalSpins        int             `gorm:"not null;default:0" json:"total_spins"`
	TotalWins         int             `gorm:"not null;default:0" json:"total_wins"`
	CreatedByID       *string         `gorm:"type:char(36)" json:"created_by_id,omitempty"`
}

func (Campaign) TableName() string {
	return "campaigns"
}
