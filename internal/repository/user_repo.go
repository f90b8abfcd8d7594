package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"pairvest/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// generateReferralCode returns an 8-character uppercase hex code.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// Create persists a new user, assigning a unique referral code.
func (r *UserRepository) Create(u *models.User) error {
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return err
		}
		u.ReferralCode = code
		if err := r.db.Create(u).Error; err == nil {
			return nil
		} else if !strings.Contains(strings.ToLower(err.Error()), "referral_code") {
			return err
		}
		// Collision on the code: retry with a new one
	}
	return fmt.Errorf("failed to generate a unique referral code after retries")
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByPhone(phone string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("phone_number = ?", phone).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByReferralCode(code string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("referral_code = ?", code).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ListReferredBy returns all users referred by the given referrer.
func (r *UserRepository) ListReferredBy(referrerID uint) ([]models.User, error) {
	var list []models.User
	err := r.db.Where("referred_by_id = ?", referrerID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// AddReferralEarnings adjusts the cached earnings mirror atomically. The
// delta may be negative (bonus consumption).
func (r *UserRepository) AddReferralEarnings(userID uint, delta decimal.Decimal) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("referral_earnings", gorm.Expr("referral_earnings + ?", delta)).Error
}
