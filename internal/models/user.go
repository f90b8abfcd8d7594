package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PhoneNumber  string `gorm:"uniqueIndex;size:20;not null" json:"phone_number"`
	PasswordHash string `gorm:"size:255" json:"-"`

	// ReferralCode is the unique invite code other users register with.
	ReferralCode string `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	// ReferredByID links to the single upstream referrer, if any.
	ReferredByID *uint `gorm:"index" json:"referred_by_id,omitempty"`

	// ReferralEarnings is a denormalized mirror of the available bonus ledger
	// balance. It is only mutated inside the same transaction as the ledger
	// entries it mirrors.
	ReferralEarnings decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"referral_earnings"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReferredBy *User `gorm:"foreignKey:ReferredByID" json:"-"`
}

func (User) TableName() string { return "users" }
