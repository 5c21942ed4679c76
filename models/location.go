package models

const (
	LocationSupermarket = "supermarket"
	LocationOpenMarket  = "openmarket"
	LocationRetailStore = "retailstore"
	LocationOther       = "other"

	DefaultRadiusMeters = 500
)

func ValidLocationType(s string) bool {
	switch s {
	case LocationSupermarket, LocationOpenMarket, LocationRetailStore, LocationOther:
		return true
	}
	return false
}

type Location struct {
	Base
	Name              string  `gorm:"size:255;not null" json:"name"`
	Type              string  `gorm:"type:varchar(20);not null;default:'other'" json:"type"`
	Address           string  `gorm:"type:text;not null" json:"address"`
	City              string  `gorm:"size:100;not null;index" json:"city"`
	State             string  `gorm:"size:100;not null;index" json:"state"`
	Latitude          float64 `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude         float64 `gorm:"type:decimal(11,8);not null" json:"longitude"`
	RadiusMeters      int     `gorm:"not null;default:500" json:"radius_meters"`
	IsActive          bool    `gorm:"not null;index" json:"is_active"`
	ContactPerson     *string `gorm:"size:255" json:"contact_person,omitempty"`
	ContactPhone      *string `gorm:"size:20" json:"contact_phone,omitempty"`
	TotalSpins        int     `gorm:"not null;default:0" json:"total_spins"`
	TotalParticipants int     `gorm:"not null;default:0" json:"total_participants"`
}

func (Location) TableName() string {
	return "locations"
}
