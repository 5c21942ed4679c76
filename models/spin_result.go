package models

import "time"

const (
	RedemptionPending   = "pending"
	RedemptionRedeemed  = "redeemed"
	RedemptionExpired   = "expired"
	RedemptionCancelled = "cancelled"
	RedemptionLossPrize = "lossprize"
)

// SpinResult records one spin. Rows are never deleted.
type SpinResult struct {
	Base
	UserID           string     `gorm:"type:char(36);not null;index:idx_spin_user_campaign" json:"user_id"`
	CampaignID       string     `gorm:"type:char(36);not null;index:idx_spin_user_campaign;index:idx_spin_campaign_prize" json:"campaign_id"`
	PrizeID          string     `gorm:"type:char(36);not null;index:idx_spin_campaign_prize" json:"prize_id"`
	LocationID       string     `gorm:"type:char(36);not null;index" json:"location_id"`
	IsWin            bool       `gorm:"not null" json:"is_win"`
	RedemptionCode   *string    `gorm:"size:32;uniqueIndex" json:"redemption_code,omitempty"`
	RedemptionStatus string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"redemption_status"`
	RedeemedAt       *time.Time `json:"redeemed_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	Latitude         float64    `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude        float64    `gorm:"type:decimal(11,8);not null" json:"longitude"`
	DeviceID         string     `gorm:"size:255;not null;index" json:"device_id"`
	IPAddress        *string    `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent        *string    `gorm:"type:text" json:"user_agent,omitempty"`
	SpinDate         time.Time  `gorm:"not null;index" json:"spin_date"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Campaign *Campaign `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
	Prize    *Prize    `gorm:"foreignKey:PrizeID" json:"prize,omitempty"`
	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (SpinResult) TableName() string {
	return "spin_results"
}
