package service

import (
	"strings"
	"testing"
	"time"

	"pairvest/internal/domain"
	"pairvest/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestComputeReturn(t *testing.T) {
	// 1000 over 30 days: 1000 + 1000 * 0.02 * 30 = 1600.
	got := ComputeReturn(dec("1000"), 30, decimal.Zero)
	require.True(t, got.Equal(dec("1600")), "got %s", got)

	// Applied bonus is added on top.
	got = ComputeReturn(dec("1000"), 30, dec("60"))
	require.True(t, got.Equal(dec("1660")), "got %s", got)

	// Interest rounds to cents.
	got = ComputeReturn(dec("333.33"), 5, decimal.Zero)
	require.True(t, got.Equal(dec("366.66")), "got %s", got)

	// Longer terms and larger principals never pay less.
	require.True(t, ComputeReturn(dec("1000"), 10, decimal.Zero).
		GreaterThan(ComputeReturn(dec("1000"), 5, decimal.Zero)))
	require.True(t, ComputeReturn(dec("2000"), 5, decimal.Zero).
		GreaterThan(ComputeReturn(dec("1000"), 5, decimal.Zero)))

	// Doubling the principal doubles the payout.
	require.True(t, ComputeReturn(dec("2000"), 30, decimal.Zero).
		Equal(ComputeReturn(dec("1000"), 30, decimal.Zero).Mul(dec("2"))))
}

func TestCreateInvestmentValidation(t *testing.T) {
	db := newTestDB(t)
	clock := newFakeClock()
	bonus := NewBonusService(db, clock)
	svc := NewInvestmentService(db, clock, bonus)
	u := createUser(t, db, nil)

	_, err := svc.CreateInvestment(u.ID, dec("50"), 30)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateInvestment(u.ID, dec("500"), 7)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateInvestment(9999, dec("500"), 30)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInvestment(t *testing.T) {
	db := newTestDB(t)
	clock := newFakeClock()
	bonus := NewBonusService(db, clock)
	svc := NewInvestmentService(db, clock, bonus)
	u := createUser(t, db, nil)

	inv, err := svc.CreateInvestment(u.ID, dec("2000"), 30)
	require.NoError(t, err)
	require.Equal(t, domain.InvestmentPending, inv.Status)
	require.True(t, inv.ReturnAmount.Equal(dec("3200")))
	require.True(t, inv.RemainingPayout.Equal(dec("3200")))
	require.True(t, inv.RemainingObligation.Equal(dec("2000")))
	require.True(t, strings.HasPrefix(inv.TransactionReference, "INV-"))
	require.NotNil(t, inv.PairingGroup)
	require.True(t, strings.HasPrefix(inv.PairingGroup.Reference, "PAIR-"))
}

func TestCreateInvestmentEarnsReferrerEntry(t *testing.T) {
	db := newTestDB(t)
	clock := newFakeClock()
	bonus := NewBonusService(db, clock)
	svc := NewInvestmentService(db, clock, bonus)

	referrer := createUser(t, db, nil)
	referred := createUser(t, db, &referrer.ID)

	_, err := svc.CreateInvestment(referred.ID, dec("2000"), 30)
	require.NoError(t, err)

	entries, err := repository.NewBonusRepository(db).ListByReferrer(referrer.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, entries[0].BonusEarned.Equal(dec("60")))
	require.False(t, entries[0].PaymentConfirmed)

	// Not spendable until the referred investment settles.
	available, err := bonus.AvailableBonus(referrer.ID)
	require.NoError(t, err)
	require.True(t, available.IsZero())
}

func TestCreateInvestmentAppliesBonusInFull(t *testing.T) {
	db := newTestDB(t)
	clock := newFakeClock()
	bonus := NewBonusService(db, clock)
	svc := NewInvestmentService(db, clock, bonus)

	investor := createUser(t, db, nil)
	referred := createUser(t, db, &investor.ID)
	seedConfirmedBonus(t, db, bonus, investor.ID, referred.ID, dec("2000")) // 60 available

	inv, err := svc.CreateInvestment(investor.ID, dec("1000"), 30)
	require.NoError(t, err)
	require.True(t, inv.ReferralBonusUsed.Equal(dec("60")))
	require.True(t, inv.ReturnAmount.Equal(dec("1660")))

	available, err := bonus.AvailableBonus(investor.ID)
	require.NoError(t, err)
	require.True(t, available.IsZero())
	require.NoError(t, bonus.Reconcile(investor.ID))
}

func TestCreateInvestmentSkipsBonusWhenPrincipalTooSmall(t *testing.T) {
	db := newTestDB(t)
	clock := newFakeClock()
	bonus := NewBonusService(db, clock)
	svc := NewInvestmentService(db, clock, bonus)

	investor := createUser(t, db, nil)
	referred := createUser(t, db, &investor.ID)
	seedConfirmedBonus(t, db, bonus, investor.ID, referred.ID, dec("10000")) // 300 available

	inv, err := svc.CreateInvestment(investor.ID, dec("200"), 5)
	require.NoError(t, err)
	require.True(t, inv.ReferralBonusUsed.IsZero())

	available, err := bonus.AvailableBonus(investor.ID)
	require.NoError(t, err)
	require.True(t, available.Equal(dec("300")))
}

func TestStartCountdownIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	clock := newFakeClock()
	bonus := NewBonusService(db, clock)
	svc := NewInvestmentService(db, clock, bonus)
	u := createUser(t, db, nil)

	inv, err := svc.CreateInvestment(u.ID, dec("1000"), 5)
	require.NoError(t, err)

	require.NoError(t, svc.StartCountdownTx(db, inv, clock.Now()))
	require.Equal(t, domain.InvestmentConfirmed, inv.Status)
	require.True(t, inv.IsConfirmed)
	firstMatureAt := *inv.MatureAt
	require.Equal(t, clock.Now().Add(5*24*time.Hour), firstMatureAt)

	clock.Advance(3 * time.Hour)
	require.NoError(t, svc.StartCountdownTx(db, inv, clock.Now()))
	require.Equal(t, firstMatureAt, *inv.MatureAt)
}
