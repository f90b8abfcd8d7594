package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pairvest/internal/domain"
	"pairvest/internal/models"
	"pairvest/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComputeReturn calculates the maturity payout: principal plus 2% simple
// interest per day plus any referral bonus applied. Interest is rounded to
// the currency's two decimal places.
func ComputeReturn(amount decimal.Decimal, period int, bonusApplied decimal.Decimal) decimal.Decimal {
	interest := amount.Mul(domain.DailyInterestRate).Mul(decimal.NewFromInt(int64(period))).Round(2)
	return amount.Add(interest).Add(bonusApplied)
}

func refSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

type InvestmentService struct {
	db    *gorm.DB
	clock domain.Clock
	bonus *BonusService
}

func NewInvestmentService(db *gorm.DB, clock domain.Clock, bonus *BonusService) *InvestmentService {
	return &InvestmentService{db: db, clock: clock, bonus: bonus}
}

// CreateInvestment validates the request, applies available referral bonus,
// and persists the investment in pending state together with its pairing
// group and, when the investor was referred, the referrer's bonus entry.
// All mutations commit atomically.
func (s *InvestmentService) CreateInvestment(userID uint, amount decimal.Decimal, maturityPeriod int) (*models.Investment, error) {
	if amount.LessThan(domain.MinInvestmentAmount) {
		return nil, fmt.Errorf("%w: minimum investment is %s", domain.ErrValidation, domain.MinInvestmentAmount)
	}
	if !domain.ValidMaturityPeriod(maturityPeriod) {
		return nil, fmt.Errorf("%w: maturity period must be one of %v days", domain.ErrValidation, domain.MaturityPeriods)
	}

	user, err := repository.NewUserRepository(s.db).GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
		}
		return nil, err
	}

	var inv *models.Investment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		bonusUsed := decimal.Zero
		available, err := repository.NewBonusRepository(tx).SumAvailable(userID)
		if err != nil {
			return err
		}
		// Bonus is applied in full or not at all: the principal must cover it.
		if available.GreaterThan(decimal.Zero) && amount.GreaterThanOrEqual(available) {
			consumed, err := s.bonus.ConsumeTx(tx, userID, available)
			if err != nil {
				return err
			}
			bonusUsed = consumed
		}

		now := s.clock.Now()
		returnAmount := ComputeReturn(amount, maturityPeriod, bonusUsed)
		inv = &models.Investment{
			UserID:               userID,
			Amount:               amount,
			MaturityPeriod:       maturityPeriod,
			ReturnAmount:         returnAmount,
			ReferralBonusUsed:    bonusUsed,
			RemainingPayout:      returnAmount,
			RemainingObligation:  amount,
			Status:               domain.InvestmentPending,
			TransactionReference: "INV-" + refSuffix(),
			CreatedAt:            now,
		}
		if err := repository.NewInvestmentRepository(tx).Create(inv); err != nil {
			return err
		}

		group := &models.PairingGroup{
			InvestmentID: inv.ID,
			Reference:    "PAIR-" + refSuffix(),
			CreatedAt:    now,
		}
		if err := repository.NewPairingRepository(tx).CreateGroup(group); err != nil {
			return err
		}
		inv.PairingGroup = group

		if user.ReferredByID != nil {
			if _, err := s.bonus.CreditTx(tx, *user.ReferredByID, userID, amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// StartCountdownTx confirms an investment and starts its maturity countdown.
// Idempotent: a second call keeps the original confirmed_at and therefore
// the same mature_at.
func (s *InvestmentService) StartCountdownTx(tx *gorm.DB, inv *models.Investment, now time.Time) error {
	if inv.Status == domain.InvestmentCompleted {
		return fmt.Errorf("%w: investment %d is completed", domain.ErrIllegalState, inv.ID)
	}
	if inv.ConfirmedAt == nil {
		t := now
		inv.ConfirmedAt = &t
	}
	days := inv.MaturityPeriod
	if days <= 0 {
		days = domain.DefaultCountdownDays
	}
	matureAt := inv.ConfirmedAt.Add(time.Duration(days) * 24 * time.Hour)
	inv.MatureAt = &matureAt
	inv.Status = domain.InvestmentConfirmed
	inv.IsConfirmed = true
	if inv.StartCountdownAt == nil {
		t := now
		inv.StartCountdownAt = &t
	}
	return tx.Save(inv).Error
}

// GetForUser returns one of the user's investments.
func (s *InvestmentService) GetForUser(id, userID uint) (*models.Investment, error) {
	inv, err := repository.NewInvestmentRepository(s.db).GetByIDForUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: investment %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return inv, nil
}

// ListForUser returns the user's investments, newest first.
func (s *InvestmentService) ListForUser(userID uint) ([]models.Investment, error) {
	return repository.NewInvestmentRepository(s.db).ListByUser(userID)
}
