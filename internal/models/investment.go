package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Investment is a fixed-term principal that accrues 2% simple interest per
// day. It is a payer while pending (its principal funds matured investors)
// and a payee once matured (its return is funded by newer investors).
type Investment struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	MaturityPeriod    int             `gorm:"not null" json:"maturity_period"` // days
	ReturnAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"return_amount"`
	ReferralBonusUsed decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"referral_bonus_used"`

	// RemainingPayout is the payee-side outstanding balance: how much of
	// ReturnAmount has not yet been allocated to pairings. Zero means fully
	// paired.
	RemainingPayout decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"remaining_payout"`
	// RemainingObligation is the payer-side balance: how much of Amount is
	// not yet covered by confirmed pairings. Decremented at allocation time
	// by the pairing engine, recomputed from confirmed payments on each
	// confirmation. Never negative.
	RemainingObligation decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"remaining_obligation"`
	// AmountPaid accumulates confirmed payments received as payee.
	AmountPaid decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`

	Status      string `gorm:"size:20;not null;default:'pending';index:idx_inv_sweep,priority:1" json:"status"`
	IsConfirmed bool   `gorm:"not null;default:false;index:idx_inv_sweep,priority:2" json:"is_confirmed"`

	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	MatureAt         *time.Time `gorm:"index:idx_inv_sweep,priority:3" json:"mature_at,omitempty"`
	MaturedAt        *time.Time `json:"matured_at,omitempty"`
	StartCountdownAt *time.Time `json:"start_countdown_at,omitempty"`
	LastPaymentAt    *time.Time `json:"last_payment_at,omitempty"`

	TransactionReference     string `gorm:"uniqueIndex;size:50;not null" json:"transaction_reference"`
	MaturityNotificationSent bool   `gorm:"not null;default:false" json:"maturity_notification_sent"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User         User          `gorm:"foreignKey:UserID" json:"-"`
	PairingGroup *PairingGroup `gorm:"foreignKey:InvestmentID" json:"pairing_group,omitempty"`
}

func (Investment) TableName() string { return "investments" }
