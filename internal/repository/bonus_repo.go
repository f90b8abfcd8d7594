package repository

import (
	"time"

	"pairvest/internal/domain"
	"pairvest/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BonusRepository struct {
	db *gorm.DB
}

func NewBonusRepository(db *gorm.DB) *BonusRepository {
	return &BonusRepository{db: db}
}

func (r *BonusRepository) Create(e *models.ReferralBonusEntry) error {
	return r.db.Create(e).Error
}

func (r *BonusRepository) Save(e *models.ReferralBonusEntry) error {
	return r.db.Save(e).Error
}

// MarkUsed consumes a whole pending entry. The status guard in the WHERE
// clause means exactly one concurrent consumer wins the entry.
func (r *BonusRepository) MarkUsed(id uint, now time.Time) (bool, error) {
	res := r.db.Model(&models.ReferralBonusEntry{}).
		Where("id = ? AND status = ?", id, domain.BonusPending).
		Updates(map[string]interface{}{
			"status":  domain.BonusUsed,
			"used_at": now,
		})
	return res.RowsAffected == 1, res.Error
}

// SplitReduce shrinks a pending entry to its residual share. oldBonus is the
// compare-and-swap guard: the update is lost if another consumer changed the
// entry after it was read.
func (r *BonusRepository) SplitReduce(id uint, newInvested, newBonus, oldBonus decimal.Decimal) (bool, error) {
	res := r.db.Model(&models.ReferralBonusEntry{}).
		Where("id = ? AND status = ? AND bonus_earned = ?", id, domain.BonusPending, oldBonus).
		Updates(map[string]interface{}{
			"amount_invested": newInvested,
			"bonus_earned":    newBonus,
		})
	return res.RowsAffected == 1, res.Error
}

// AvailableEntries returns spendable bonus entries for a referrer, oldest
// first. Spendable means pending and backed by a fully settled referred
// investment (payment_confirmed).
func (r *BonusRepository) AvailableEntries(referrerID uint) ([]models.ReferralBonusEntry, error) {
	var list []models.ReferralBonusEntry
	err := r.db.
		Where("referrer_id = ? AND status = ? AND payment_confirmed = ?",
			referrerID, domain.BonusPending, true).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

// SumAvailable computes the referrer's spendable bonus balance from the
// ledger. The cached users.referral_earnings column must always equal this.
func (r *BonusRepository) SumAvailable(referrerID uint) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&models.ReferralBonusEntry{}).
		Select("COALESCE(SUM(bonus_earned), 0) AS total").
		Where("referrer_id = ? AND status = ? AND payment_confirmed = ?",
			referrerID, domain.BonusPending, true).
		Scan(&out).Error
	return out.Total, err
}

// UnconfirmedByReferred returns entries earned from a referred user's
// investments that have not yet been payment-confirmed.
func (r *BonusRepository) UnconfirmedByReferred(referredID uint) ([]models.ReferralBonusEntry, error) {
	var list []models.ReferralBonusEntry
	err := r.db.
		Where("referred_id = ? AND payment_confirmed = ?", referredID, false).
		Find(&list).Error
	return list, err
}

// ListByReferrer returns the full bonus history for a referrer, newest first.
func (r *BonusRepository) ListByReferrer(referrerID uint) ([]models.ReferralBonusEntry, error) {
	var list []models.ReferralBonusEntry
	err := r.db.
		Where("referrer_id = ?", referrerID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// SumEarned totals every bonus ever earned by a referrer, regardless of
// status.
func (r *BonusRepository) SumEarned(referrerID uint) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&models.ReferralBonusEntry{}).
		Select("COALESCE(SUM(bonus_earned), 0) AS total").
		Where("referrer_id = ?", referrerID).
		Scan(&out).Error
	return out.Total, err
}
