package service

import (
	"testing"
	"time"

	"pairvest/internal/domain"
	"pairvest/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMaturitySweep(t *testing.T) {
	w := newWorld(t)
	u := createUser(t, w.db, nil)

	inv, err := w.invest.CreateInvestment(u.ID, dec("1000"), 5)
	require.NoError(t, err)
	require.NoError(t, w.invest.StartCountdownTx(w.db, inv, w.clock.Now()))

	// One hour short of maturity: nothing happens.
	w.clock.Advance(5*24*time.Hour - time.Hour)
	n, err := w.maturity.RunMaturitySweep()
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, domain.InvestmentConfirmed, w.reload(t, inv.ID).Status)

	w.clock.Advance(2 * time.Hour)
	n, err = w.maturity.RunMaturitySweep()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	after := w.reload(t, inv.ID)
	require.Equal(t, domain.InvestmentMatured, after.Status)
	require.NotNil(t, after.MaturedAt)
	require.True(t, after.MaturityNotificationSent)

	// Running again matures nothing: the sweep is idempotent.
	n, err = w.maturity.RunMaturitySweep()
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestMaturitySweepBackfillsReturnAmount(t *testing.T) {
	w := newWorld(t)
	u := createUser(t, w.db, nil)

	// A record confirmed before return amounts were stored at creation time.
	confirmedAt := w.clock.Now().Add(-6 * 24 * time.Hour)
	matureAt := confirmedAt.Add(5 * 24 * time.Hour)
	inv := &models.Investment{
		UserID:               u.ID,
		Amount:               dec("1000"),
		MaturityPeriod:       5,
		ReturnAmount:         decimal.Zero,
		RemainingPayout:      decimal.Zero,
		RemainingObligation:  decimal.Zero,
		Status:               domain.InvestmentConfirmed,
		IsConfirmed:          true,
		ConfirmedAt:          &confirmedAt,
		MatureAt:             &matureAt,
		TransactionReference: "INV-LEGACY01",
	}
	require.NoError(t, w.db.Create(inv).Error)

	n, err := w.maturity.RunMaturitySweep()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	after := w.reload(t, inv.ID)
	require.True(t, after.ReturnAmount.Equal(dec("1100")))
	require.True(t, after.RemainingPayout.Equal(dec("1100")))
}

func TestSchedulerCycleOrdering(t *testing.T) {
	// A full cycle must let an investment matured in the maturity phase be
	// paired in the same cycle's pairing phase.
	w := newWorld(t)
	alice := createUser(t, w.db, nil)
	bob := createUser(t, w.db, nil)

	aliceInv, err := w.invest.CreateInvestment(alice.ID, dec("1000"), 5)
	require.NoError(t, err)
	require.NoError(t, w.invest.StartCountdownTx(w.db, aliceInv, w.clock.Now()))
	w.clock.Advance(5*24*time.Hour + time.Hour)

	_, err = w.invest.CreateInvestment(bob.ID, dec("400"), 5)
	require.NoError(t, err)

	matured, err := w.maturity.RunMaturitySweep()
	require.NoError(t, err)
	require.Equal(t, 1, matured)
	paired, err := w.pairing.RunPairingSweep()
	require.NoError(t, err)
	require.Equal(t, 1, paired)
}
