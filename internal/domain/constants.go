package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment lifecycle. Transitions are monotonic: an investment never
// returns to an earlier state once advanced, except the pending->confirmed
// gate which is driven by payment settlement rather than time.
const (
	InvestmentPending       = "pending"
	InvestmentConfirmed     = "confirmed"
	InvestmentMatured       = "matured"
	InvestmentPaired        = "paired"
	InvestmentPartiallyPaid = "partially_paid"
	InvestmentCompleted     = "completed"
)

const (
	PairingPending   = "pending"
	PairingConfirmed = "confirmed"
	PairingCompleted = "completed"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

const (
	BonusPending = "pending"
	BonusUsed    = "used"
)

// MaturityPeriods is the set of allowed investment durations in days.
var MaturityPeriods = []int{5, 10, 20, 30, 60}

// DefaultCountdownDays is used when an investment carries no maturity period.
const DefaultCountdownDays = 5

// PaymentWindow is how long a payer has to settle a pairing before it is
// flagged overdue.
const PaymentWindow = 24 * time.Hour

var (
	// DailyInterestRate is the simple (non-compounding) interest accrued per day.
	DailyInterestRate = decimal.RequireFromString("0.02")

	// ReferralBonusRate is the share of a referred investment's principal
	// credited to the referrer's bonus ledger.
	ReferralBonusRate = decimal.RequireFromString("0.03")

	// MinInvestmentAmount is the smallest accepted principal.
	MinInvestmentAmount = decimal.NewFromInt(100)
)

// ValidMaturityPeriod reports whether period is one of the allowed durations.
func ValidMaturityPeriod(period int) bool {
	for _, p := range MaturityPeriods {
		if p == period {
			return true
		}
	}
	return false
}
