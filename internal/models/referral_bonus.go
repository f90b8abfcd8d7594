package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReferralBonusEntry records bonus earned by a referrer from one investment
// made by a referred user. Entries are consumed oldest-first against the
// referrer's own later investments; a partially consumed entry is split into
// a used fragment and a residual so total bonus value is conserved.
type ReferralBonusEntry struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ReferrerID uint `gorm:"not null;index" json:"referrer_id"`
	ReferredID uint `gorm:"not null;index" json:"referred_id"`

	AmountInvested decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_invested"`
	BonusEarned    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"bonus_earned"`

	Status string     `gorm:"size:20;not null;default:'pending'" json:"status"` // pending | used
	UsedAt *time.Time `json:"used_at,omitempty"`

	// PaymentConfirmed flips once the referred investment's pairing group is
	// fully settled. Only then does the bonus become spendable.
	PaymentConfirmed   bool       `gorm:"not null;default:false" json:"payment_confirmed"`
	PaymentConfirmedAt *time.Time `json:"payment_confirmed_at,omitempty"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Referrer User `gorm:"foreignKey:ReferrerID" json:"-"`
	Referred User `gorm:"foreignKey:ReferredID" json:"-"`
}

func (ReferralBonusEntry) TableName() string { return "referral_bonus_entries" }
