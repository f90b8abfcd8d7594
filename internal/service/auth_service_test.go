package service

import (
	"testing"

	"pairvest/config"
	"pairvest/internal/repository"

	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *repository.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	cfg := config.Load()
	userRepo := repository.NewUserRepository(db)
	return NewAuthService(cfg, userRepo), userRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)

	u, access, refresh, err := svc.Register("wanjiku", "wanjiku@example.com", "+254700000001", "hunter2hunter2", "")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	require.Len(t, u.ReferralCode, 8)
	require.Nil(t, u.ReferredByID)

	_, _, _, err = svc.Register("wanjiku2", "w2@example.com", "+254700000001", "hunter2hunter2", "")
	require.ErrorIs(t, err, ErrPhoneExists)

	_, _, _, err = svc.Login("+254700000001", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCreds)

	logged, access2, _, err := svc.Login("+254700000001", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, u.ID, logged.ID)
	require.NotEmpty(t, access2)

	newAccess, newRefresh, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEmpty(t, newRefresh)
}

func TestRegisterWithReferralCode(t *testing.T) {
	svc, userRepo := newAuthService(t)

	referrer, _, _, err := svc.Register("mwangi", "mwangi@example.com", "+254700000010", "hunter2hunter2", "")
	require.NoError(t, err)

	referred, _, _, err := svc.Register("njeri", "njeri@example.com", "+254700000011", "hunter2hunter2", referrer.ReferralCode)
	require.NoError(t, err)
	require.NotNil(t, referred.ReferredByID)
	require.Equal(t, referrer.ID, *referred.ReferredByID)

	list, err := userRepo.ListReferredBy(referrer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, _, _, err = svc.Register("kamau", "kamau@example.com", "+254700000012", "hunter2hunter2", "NOPE1234")
	require.ErrorIs(t, err, ErrBadReferral)
}
