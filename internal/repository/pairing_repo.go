package repository

import (
	"time"

	"pairvest/internal/domain"
	"pairvest/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PairingRepository struct {
	db *gorm.DB
}

func NewPairingRepository(db *gorm.DB) *PairingRepository {
	return &PairingRepository{db: db}
}

func (r *PairingRepository) CreateGroup(g *models.PairingGroup) error {
	return r.db.Create(g).Error
}

func (r *PairingRepository) GetGroupByInvestmentID(investmentID uint) (*models.PairingGroup, error) {
	var g models.PairingGroup
	err := r.db.Where("investment_id = ?", investmentID).First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *PairingRepository) Create(p *models.Pairing) error {
	return r.db.Create(p).Error
}

func (r *PairingRepository) GetByID(id uint) (*models.Pairing, error) {
	var p models.Pairing
	err := r.db.Preload("Group").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PairingRepository) ListByGroup(groupID uint) ([]models.Pairing, error) {
	var list []models.Pairing
	err := r.db.Where("group_id = ?", groupID).Order("id ASC").Find(&list).Error
	return list, err
}

// ListForUser returns pairings where the user is either side, newest first.
func (r *PairingRepository) ListForUser(userID uint) ([]models.Pairing, error) {
	var list []models.Pairing
	err := r.db.
		Where("matured_investor_id = ? OR new_investor_id = ?", userID, userID).
		Preload("MaturedInvestor").
		Preload("NewInvestor").
		Order("paired_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// MarkPaid confirms a pairing's payment. The payment_status guard serializes
// concurrent confirmations: exactly one caller observes RowsAffected == 1.
// A pairing already flagged overdue (failed) may still be confirmed late.
func (r *PairingRepository) MarkPaid(id uint, now time.Time) (bool, error) {
	res := r.db.Model(&models.Pairing{}).
		Where("id = ? AND payment_status IN ?", id, []string{domain.PaymentPending, domain.PaymentFailed}).
		Updates(map[string]interface{}{
			"status":         domain.PairingConfirmed,
			"payment_status": domain.PaymentPaid,
			"confirmed_at":   now,
		})
	return res.RowsAffected == 1, res.Error
}

// SumConfirmedPaid totals confirmed-and-paid slices within a group.
func (r *PairingRepository) SumConfirmedPaid(groupID uint) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&models.Pairing{}).
		Select("COALESCE(SUM(amount_paired), 0) AS total").
		Where("group_id = ? AND status = ? AND payment_status = ?",
			groupID, domain.PairingConfirmed, domain.PaymentPaid).
		Scan(&out).Error
	return out.Total, err
}

// CountUnsettled counts group members not yet confirmed and paid.
func (r *PairingRepository) CountUnsettled(groupID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Pairing{}).
		Where("group_id = ? AND (status <> ? OR payment_status <> ?)",
			groupID, domain.PairingConfirmed, domain.PaymentPaid).
		Count(&n).Error
	return n, err
}

// MarkGroupSettled flips the group's settled flag exactly once. Concurrent
// confirmations and the settlement sweep may all reach a fully paid group;
// the settled guard lets exactly one of them run the payer promotion.
func (r *PairingRepository) MarkGroupSettled(id uint, now time.Time) (bool, error) {
	res := r.db.Model(&models.PairingGroup{}).
		Where("id = ? AND settled = ?", id, false).
		Updates(map[string]interface{}{
			"settled":    true,
			"settled_at": now,
		})
	return res.RowsAffected == 1, res.Error
}

// Overdue returns pairings whose payment window has lapsed without payment.
func (r *PairingRepository) Overdue(now time.Time) ([]models.Pairing, error) {
	var list []models.Pairing
	err := r.db.
		Where("payment_status = ? AND payment_due_date <= ?", domain.PaymentPending, now).
		Find(&list).Error
	return list, err
}

// MarkOverdue flags an unpaid pairing as failed exactly once.
func (r *PairingRepository) MarkOverdue(id uint) (bool, error) {
	res := r.db.Model(&models.Pairing{}).
		Where("id = ? AND payment_status = ?", id, domain.PaymentPending).
		UpdateColumn("payment_status", domain.PaymentFailed)
	return res.RowsAffected == 1, res.Error
}
