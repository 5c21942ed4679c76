package models

import "time"

// RevokedToken is the database fallback for the JWT revocation list when Redis is not configured
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
