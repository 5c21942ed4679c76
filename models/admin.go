package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleViewer     = "viewer"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

func ValidAdminRole(s string) bool {
	return s == RoleViewer || s == RoleAdmin || s == RoleSuperAdmin
}

type Admin struct {
	Base
	Username  string     `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Password  string     `json:"-" gorm:"not null"` // Password won't be included in JSON responses
	FullName  string     `json:"full_name" gorm:"size:255;not null"`
	Email     string     `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Role      string     `json:"role" gorm:"type:varchar(20);not null;default:'admin'"`
	IsActive  bool       `json:"is_active" gorm:"not null"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (Admin) TableName() string {
	return "admins"
}

// HashPassword replaces the plain password with its bcrypt hash
func (a *Admin) HashPassword() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hashedPassword)
	return nil
}

// ValidatePassword checks if the provided password matches the hashed password
func (a *Admin) ValidatePassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password))
	return err == nil
}

// HasRole reports whether the admin's role is one of roles
func (a *Admin) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
