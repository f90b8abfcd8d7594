package repository

import (
	"time"

	"pairvest/internal/domain"
	"pairvest/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvestmentRepository struct {
	db *gorm.DB
}

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(inv *models.Investment) error {
	return r.db.Create(inv).Error
}

func (r *InvestmentRepository) GetByID(id uint) (*models.Investment, error) {
	var inv models.Investment
	if err := r.db.First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvestmentRepository) GetByIDForUser(id, userID uint) (*models.Investment, error) {
	var inv models.Investment
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvestmentRepository) ListByUser(userID uint) ([]models.Investment, error) {
	var list []models.Investment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// DueForMaturity returns confirmed investments whose countdown has elapsed.
func (r *InvestmentRepository) DueForMaturity(now time.Time) ([]models.Investment, error) {
	var list []models.Investment
	err := r.db.
		Where("status = ? AND is_confirmed = ? AND mature_at IS NOT NULL AND mature_at <= ?",
			domain.InvestmentConfirmed, true, now).
		Order("mature_at ASC").
		Find(&list).Error
	return list, err
}

// MarkMatured promotes a confirmed investment to matured. The status guard in
// the WHERE clause makes the sweep idempotent under concurrent runs: only one
// invocation observes RowsAffected == 1.
func (r *InvestmentRepository) MarkMatured(id uint, now time.Time) (bool, error) {
	res := r.db.Model(&models.Investment{}).
		Where("id = ? AND status = ?", id, domain.InvestmentConfirmed).
		Updates(map[string]interface{}{
			"status":     domain.InvestmentMatured,
			"matured_at": now,
		})
	return res.RowsAffected == 1, res.Error
}

// MaturedUnnotified returns matured investments whose owner has not been
// notified yet.
func (r *InvestmentRepository) MaturedUnnotified() ([]models.Investment, error) {
	var list []models.Investment
	err := r.db.
		Where("status = ? AND maturity_notification_sent = ?", domain.InvestmentMatured, false).
		Find(&list).Error
	return list, err
}

// MarkNotified flips the notification flag exactly once.
func (r *InvestmentRepository) MarkNotified(id uint) (bool, error) {
	res := r.db.Model(&models.Investment{}).
		Where("id = ? AND maturity_notification_sent = ?", id, false).
		UpdateColumn("maturity_notification_sent", true)
	return res.RowsAffected == 1, res.Error
}

// MaturedPayees returns the pool of matured investments owed a payout,
// oldest maturity first.
func (r *InvestmentRepository) MaturedPayees() ([]models.Investment, error) {
	var list []models.Investment
	err := r.db.
		Where("status = ?", domain.InvestmentMatured).
		Order("matured_at ASC, created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

// PendingPayers returns the pool of new investments with unallocated
// obligation, oldest first.
func (r *InvestmentRepository) PendingPayers() ([]models.Investment, error) {
	var list []models.Investment
	err := r.db.
		Where("status = ? AND remaining_obligation > 0", domain.InvestmentPending).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

// AllocatePayout decrements the payee-side balance by amount. The balance
// guard is the compare-and-swap that prevents two concurrent sweeps from
// double-allocating the same payout.
func (r *InvestmentRepository) AllocatePayout(id uint, amount decimal.Decimal) (bool, error) {
	res := r.db.Model(&models.Investment{}).
		Where("id = ? AND status = ? AND remaining_payout >= ?", id, domain.InvestmentMatured, amount).
		UpdateColumn("remaining_payout", gorm.Expr("remaining_payout - ?", amount))
	return res.RowsAffected == 1, res.Error
}

// AllocateObligation decrements the payer-side balance by amount, guarded
// the same way.
func (r *InvestmentRepository) AllocateObligation(id uint, amount decimal.Decimal) (bool, error) {
	res := r.db.Model(&models.Investment{}).
		Where("id = ? AND status = ? AND remaining_obligation >= ?", id, domain.InvestmentPending, amount).
		UpdateColumn("remaining_obligation", gorm.Expr("remaining_obligation - ?", amount))
	return res.RowsAffected == 1, res.Error
}

// BackfillReturn fills in a missing return amount at maturity time, seeding
// the payee-side balance with it. Records created through the normal path
// already carry both and are left alone.
func (r *InvestmentRepository) BackfillReturn(id uint, returnAmount decimal.Decimal) error {
	return r.db.Model(&models.Investment{}).
		Where("id = ? AND return_amount = 0", id).
		Updates(map[string]interface{}{
			"return_amount":    returnAmount,
			"remaining_payout": returnAmount,
		}).Error
}

// SetStatusIf moves an investment from one of the expected states to the
// target state, reporting whether the transition happened.
func (r *InvestmentRepository) SetStatusIf(id uint, to string, from ...string) (bool, error) {
	res := r.db.Model(&models.Investment{}).
		Where("id = ? AND status IN ?", id, from).
		UpdateColumn("status", to)
	return res.RowsAffected == 1, res.Error
}

// AwaitingSettlement returns fully allocated payer investments whose
// countdown has not started yet. Payees passing through the same statuses are
// filtered out by the caller's paid-sum check.
func (r *InvestmentRepository) AwaitingSettlement() ([]models.Investment, error) {
	var list []models.Investment
	err := r.db.
		Where("status IN ?", []string{domain.InvestmentPaired, domain.InvestmentPartiallyPaid}).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// RecordPayeePayment accumulates a confirmed payment on the payee side.
func (r *InvestmentRepository) RecordPayeePayment(id uint, amount decimal.Decimal, now time.Time) error {
	return r.db.Model(&models.Investment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"amount_paid":     gorm.Expr("amount_paid + ?", amount),
			"last_payment_at": now,
		}).Error
}
