package service

import (
	"fmt"

	"pairvest/internal/domain"
	"pairvest/internal/models"
	"pairvest/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BonusService is the referral bonus ledger: entries earned by referrers,
// consumed oldest-first against their own later investments.
//
// Canonical availability: an entry is spendable while status=pending AND
// payment_confirmed=true. Crediting is delayed — an entry is created when the
// referred user invests but only becomes spendable (and only then is the
// referrer's cached referral_earnings incremented) once the referred
// investment's pairing group fully settles.
type BonusService struct {
	db    *gorm.DB
	clock domain.Clock
}

func NewBonusService(db *gorm.DB, clock domain.Clock) *BonusService {
	return &BonusService{db: db, clock: clock}
}

// AvailableBonus returns the referrer's spendable bonus balance.
func (s *BonusService) AvailableBonus(userID uint) (decimal.Decimal, error) {
	return repository.NewBonusRepository(s.db).SumAvailable(userID)
}

// CreditTx records bonus earned from one investment by a referred user:
// 3% of the principal. Every investment produces its own entry, no dedup.
// The cached earnings mirror is not touched here; see ConfirmForReferredTx.
func (s *BonusService) CreditTx(tx *gorm.DB, referrerID, referredID uint, principal decimal.Decimal) (*models.ReferralBonusEntry, error) {
	entry := &models.ReferralBonusEntry{
		ReferrerID:     referrerID,
		ReferredID:     referredID,
		AmountInvested: principal,
		BonusEarned:    principal.Mul(domain.ReferralBonusRate).Round(2),
		Status:         domain.BonusPending,
		CreatedAt:      s.clock.Now(),
	}
	if err := repository.NewBonusRepository(tx).Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ConsumeTx spends up to amount of the investor's available bonus, oldest
// entries first. An entry larger than the remainder is split: the used
// fragment takes a proportional share of amount_invested and the residual
// keeps the rest, so bonus value is conserved. Every entry mutation is a
// guarded update checked via RowsAffected; an entry taken by a concurrent
// consumer between read and update is simply skipped, so the same bonus can
// never fund two investments. The cached earnings mirror is decremented by
// exactly the consumed amount in the same transaction.
func (s *BonusService) ConsumeTx(tx *gorm.DB, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	bonusRepo := repository.NewBonusRepository(tx)
	entries, err := bonusRepo.AvailableEntries(userID)
	if err != nil {
		return decimal.Zero, err
	}

	now := s.clock.Now()
	remaining := amount
	consumed := decimal.Zero

	for i := range entries {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		entry := &entries[i]

		if entry.BonusEarned.LessThanOrEqual(remaining) {
			ok, err := bonusRepo.MarkUsed(entry.ID, now)
			if err != nil {
				return decimal.Zero, err
			}
			if !ok {
				continue
			}
			consumed = consumed.Add(entry.BonusEarned)
			remaining = remaining.Sub(entry.BonusEarned)
			continue
		}

		// Split: used fragment scaled proportionally, residual keeps the rest.
		usedInvested := entry.AmountInvested.Mul(remaining).Div(entry.BonusEarned).Round(2)
		ok, err := bonusRepo.SplitReduce(entry.ID,
			entry.AmountInvested.Sub(usedInvested),
			entry.BonusEarned.Sub(remaining),
			entry.BonusEarned)
		if err != nil {
			return decimal.Zero, err
		}
		if !ok {
			continue
		}
		used := &models.ReferralBonusEntry{
			ReferrerID:         entry.ReferrerID,
			ReferredID:         entry.ReferredID,
			AmountInvested:     usedInvested,
			BonusEarned:        remaining,
			Status:             domain.BonusUsed,
			UsedAt:             &now,
			PaymentConfirmed:   entry.PaymentConfirmed,
			PaymentConfirmedAt: entry.PaymentConfirmedAt,
			CreatedAt:          entry.CreatedAt,
		}
		if err := bonusRepo.Create(used); err != nil {
			return decimal.Zero, err
		}
		consumed = consumed.Add(remaining)
		remaining = decimal.Zero
	}

	if consumed.GreaterThan(decimal.Zero) {
		if err := repository.NewUserRepository(tx).AddReferralEarnings(userID, consumed.Neg()); err != nil {
			return decimal.Zero, err
		}
	}
	return consumed, nil
}

// ConfirmForReferredTx marks every unconfirmed entry earned from the referred
// user's investments as payment-confirmed and credits each referrer's cached
// earnings. Called once the referred investment's pairing group settles.
func (s *BonusService) ConfirmForReferredTx(tx *gorm.DB, referredID uint) error {
	bonusRepo := repository.NewBonusRepository(tx)
	userRepo := repository.NewUserRepository(tx)

	entries, err := bonusRepo.UnconfirmedByReferred(referredID)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	for i := range entries {
		entry := &entries[i]
		entry.PaymentConfirmed = true
		entry.PaymentConfirmedAt = &now
		if err := bonusRepo.Save(entry); err != nil {
			return err
		}
		if err := userRepo.AddReferralEarnings(entry.ReferrerID, entry.BonusEarned); err != nil {
			return err
		}
	}
	return nil
}

// Reconcile verifies the cached referral_earnings mirror against the ledger.
func (s *BonusService) Reconcile(userID uint) error {
	user, err := repository.NewUserRepository(s.db).GetByID(userID)
	if err != nil {
		return err
	}
	computed, err := repository.NewBonusRepository(s.db).SumAvailable(userID)
	if err != nil {
		return err
	}
	if !user.ReferralEarnings.Equal(computed) {
		return fmt.Errorf("referral earnings cache mismatch for user %d: cached %s, ledger %s",
			userID, user.ReferralEarnings, computed)
	}
	return nil
}
