package service

import (
	"fmt"
	"testing"
	"time"

	"pairvest/internal/models"
	"pairvest/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Investment{},
		&models.PairingGroup{},
		&models.Pairing{},
		&models.ReferralBonusEntry{},
	))
	return db
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, referredByID *uint) *models.User {
	t.Helper()
	userSeq++
	u := &models.User{
		Username:     fmt.Sprintf("investor%d", userSeq),
		Email:        fmt.Sprintf("investor%d@example.com", userSeq),
		PhoneNumber:  fmt.Sprintf("+2547%08d", userSeq),
		PasswordHash: "x",
		ReferredByID: referredByID,
	}
	require.NoError(t, repository.NewUserRepository(db).Create(u))
	return u
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedConfirmedBonus credits a bonus entry and immediately confirms it, so it
// is spendable.
func seedConfirmedBonus(t *testing.T, db *gorm.DB, svc *BonusService, referrerID, referredID uint, principal decimal.Decimal) {
	t.Helper()
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.CreditTx(tx, referrerID, referredID, principal); err != nil {
			return err
		}
		return svc.ConfirmForReferredTx(tx, referredID)
	})
	require.NoError(t, err)
}
