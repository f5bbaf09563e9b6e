package models

import (
	"time"

	"github.com/google/uuid"
)

// Role controls access to the back-office
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Profile mirrors an identity-provider user; ID is the token subject
type Profile struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email           string    `json:"email" gorm:"not null;index"`
	FullName        string    `json:"fullName"`
	Phone           *string   `json:"phone,omitempty"`
	AvatarURL       *string   `json:"avatarUrl,omitempty"`
	Role            Role      `json:"role" gorm:"type:varchar(20);not null;default:'customer';index"`
	PreferredLocale Locale    `json:"preferredLocale" gorm:"type:varchar(5);not null;default:'en'"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Address is a saved customer address
type Address struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Label      string    `json:"label"`
	FullName   string    `json:"fullName" gorm:"not null"`
	Phone      string    `json:"phone" gorm:"not null"`
	Line1      string    `json:"line1" gorm:"not null"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city" gorm:"not null"`
	Region     string    `json:"region,omitempty"`
	PostalCode string    `json:"postalCode,omitempty"`
	Country    string    `json:"country" gorm:"type:varchar(2);not null"`
	IsDefault  bool      `json:"isDefault" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Address) TableName() string {
	return "addresses"
}

// Snapshot copies the address onto an order
func (a *Address) Snapshot() ShippingAddress {
	return ShippingAddress{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Region:     a.Region,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

type UpdateProfileRequest struct {
	FullName        *string `json:"fullName" validate:"omitempty,min=2,max=120"`
	Phone           *string `json:"phone" validate:"omitempty,min=7,max=20"`
	AvatarURL       *string `json:"avatarUrl" validate:"omitempty,url"`
	PreferredLocale *Locale `json:"preferredLocale" validate:"omitempty,oneof=en ar"`
}

type AddressRequest struct {
	Label      string `json:"label" validate:"max=40"`
	FullName   string `json:"fullName" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,min=7,max=20"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	Region     string `json:"region" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"max=20"`
	Country    string `json:"country" validate:"required,len=2"`
	IsDefault  bool   `json:"isDefault"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=customer admin"`
}

// UserFilter narrows the admin user table
type UserFilter struct {
	Search string
	Role   Role
	Page   int
	Limit  int
}
