package models

import "time"

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

func ValidGender(s string) bool {
	return s == GenderMale || s == GenderFemale || s == GenderOther
}

// User is a campaign participant registered at a store outlet
type User struct {
	Base
	FullName      string     `gorm:"size:255;not null" json:"full_name"`
	PhoneNumber   string     `gorm:"size:20;uniqueIndex;not null" json:"phone_number"`
	Email         *string    `gorm:"size:255" json:"email,omitempty"`
	Gender        string     `gorm:"type:varchar(10);not null" json:"gender"`
	State         *string    `gorm:"size:100" json:"state,omitempty"`
	City          *string    `gorm:"size:100" json:"city,omitempty"`
	StoreOutletID string     `gorm:"type:char(36);not null;index" json:"store_outlet_id"`
	ConsentGiven  bool       `gorm:"not null;default:false" json:"consent_given"`
	PhoneVerified bool       `gorm:"not null;default:false" json:"phone_verified"`
	DeviceID      *string    `gorm:"size:255" json:"device_id,omitempty"`
	IPAddress     *string    `gorm:"size:45" json:"ip_address,omitempty"`
	LastSpinDate  *time.Time `json:"last_spin_date,omitempty"`
	TotalSpins    int        `gorm:"not null;default:0" json:"total_spins"`
	TotalWins     int        `gorm:"not null;default:0" json:"total_wins"`
	RegisteredAt  time.Time  `json:"registered_at"`

	StoreOutlet *Location `gorm:"foreignKey:StoreOutletID" json:"store_outlet,omitempty"`
}

func (User) TableName() string {
	return "users"
}
