package models

import "github.com/shopspring/decimal"

// PrizeRule holds the odds and caps of one prize inside one campaign.
// Nil MaxPerDay / MaxTotal mean unlimited.
type PrizeRule struct {
	Base
	CampaignID  string              `gorm:"type:char(36);not null;uniqueIndex:idx_prize_rule_campaign_prize" json:"campaign_id"`
	PrizeID     string              `gorm:"type:char(36);not null;uniqueIndex:idx_prize_rule_campaign_prize" json:"prize_id"`
	Probability float64             `gorm:"type:decimal(5,4);not null" json:"probability"`
	MaxPerDay   *int                `json:"max_per_day"`
	MaxTotal    *int                `json:"max_total"`
	Value       decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"value"`

	Campaign *Campaign `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
	Prize    *Prize    `gorm:"foreignKey:PrizeID" json:"prize,omitempty"`
}

func (PrizeRule) TableName() string {
	return "prize_rules"
}
