package handler

import (
	"log"
	"net/http"

	"pairvest/internal/middleware"
	"pairvest/internal/repository"
	"pairvest/internal/service"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	bonus     *service.BonusService
	userRepo  *repository.UserRepository
	bonusRepo *repository.BonusRepository
}

func NewReferralHandler(bonus *service.BonusService, userRepo *repository.UserRepository, bonusRepo *repository.BonusRepository) *ReferralHandler {
	return &ReferralHandler{bonus: bonus, userRepo: userRepo, bonusRepo: bonusRepo}
}

// Summary returns the user's referral code, lifetime and available bonus
// totals, and the people they brought in.
func (h *ReferralHandler) Summary(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	available, err := h.bonus.AvailableBonus(userID)
	if err != nil {
		log.Printf("[referral] summary failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load referral summary"})
		return
	}
	earned, err := h.bonusRepo.SumEarned(userID)
	if err != nil {
		log.Printf("[referral] summary failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load referral summary"})
		return
	}
	referred, err := h.userRepo.ListReferredBy(userID)
	if err != nil {
		log.Printf("[referral] summary failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load referral summary"})
		return
	}
	type referredUser struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		JoinedAt string `json:"joined_at"`
	}
	out := make([]referredUser, 0, len(referred))
	for _, r := range referred {
		out = append(out, referredUser{
			ID:       r.ID,
			Username: r.Username,
			JoinedAt: r.CreatedAt.Format("2006-01-02"),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"referral_code":   u.ReferralCode,
		"total_earned":    earned,
		"available_bonus": available,
		"referred_users":  out,
	})
}

// History returns the user's full bonus ledger, newest first.
func (h *ReferralHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	entries, err := h.bonusRepo.ListByReferrer(userID)
	if err != nil {
		log.Printf("[referral] history failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load bonus history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
