package models

import "time"

// LocationCampaignMapping links a store outlet to the campaigns running there
type LocationCampaignMapping struct {
	LocationID string    `gorm:"type:char(36);primaryKey" json:"location_id"`
	CampaignID string    `gorm:"type:char(36);primaryKey;index" json:"campaign_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (LocationCampaignMapping) TableName() string {
	return "location_campaign_mappings"
}
