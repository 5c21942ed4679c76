package models

import "strings"

const (
	PrizeTypeLoss  = "lossprize"
	PrizeTypeNoWin = "No Win"

	DefaultPrizeColor = "#FFD700"
)

type Prize struct {
	Base
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Type        string  `gorm:"size:100;not null" json:"type"`
	ImageURL    *string `gorm:"size:500" json:"image_url,omitempty"`
	Color       string  `gorm:"size:7;not null;default:'#FFD700'" json:"color"`
	IsActive    bool    `gorm:"not null;index" json:"is_active"`
}

func (Prize) TableName() string {
	return "prizes"
}

// IsLoss reports whether landing on this prize means the participant did not win
func (p Prize) IsLoss() bool {
	typ := strings.TrimSpace(p.Type)
	if typ == PrizeTypeLoss || typ == PrizeTypeNoWin {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(p.Name), "try again")
}
