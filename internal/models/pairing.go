package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PairingGroup owns every Pairing created against one payer investment's
// obligation. It replaces a shared string token with a typed correlation so
// the per-group sum invariant (sum of AmountPaired == payer principal once
// fully allocated) can be checked against a real foreign key.
type PairingGroup struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	InvestmentID uint   `gorm:"uniqueIndex;not null" json:"investment_id"`
	Reference    string `gorm:"uniqueIndex;size:50;not null" json:"reference"` // PAIR-XXXXXXXX

	// Settled flips exactly once, when every pairing in the group is paid and
	// the payer's principal is fully covered. It is the serialization point
	// for settlement: whoever wins the flip runs the countdown and bonus
	// confirmation.
	Settled   bool       `gorm:"not null;default:false" json:"settled"`
	SettledAt *time.Time `json:"settled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Investment Investment `gorm:"foreignKey:InvestmentID" json:"-"`
}

func (PairingGroup) TableName() string { return "pairing_groups" }

// Pairing is one unit of obligation: the payer (new investor) owes the payee
// (matured investor) AmountPaired, due within 24 hours of pairing.
type Pairing struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	GroupID uint `gorm:"not null;index" json:"group_id"`

	MaturedInvestmentID uint `gorm:"not null;index" json:"matured_investment_id"`
	NewInvestmentID     uint `gorm:"not null;index" json:"new_investment_id"`
	MaturedInvestorID   uint `gorm:"not null;index" json:"matured_investor_id"`
	NewInvestorID       uint `gorm:"not null;index" json:"new_investor_id"`

	AmountPaired  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_paired"`
	Status        string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentStatus string          `gorm:"size:20;not null;default:'pending';index" json:"payment_status"`

	PairedAt       time.Time  `gorm:"not null" json:"paired_at"`
	PaymentDueDate time.Time  `gorm:"not null;index" json:"payment_due_date"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Group             PairingGroup `gorm:"foreignKey:GroupID" json:"-"`
	MaturedInvestment Investment   `gorm:"foreignKey:MaturedInvestmentID" json:"-"`
	NewInvestment     Investment   `gorm:"foreignKey:NewInvestmentID" json:"-"`
	MaturedInvestor   User         `gorm:"foreignKey:MaturedInvestorID" json:"-"`
	NewInvestor       User         `gorm:"foreignKey:NewInvestorID" json:"-"`
}

func (Pairing) TableName() string { return "pairings" }
