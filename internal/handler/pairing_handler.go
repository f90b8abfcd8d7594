package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"pairvest/internal/domain"
	"pairvest/internal/middleware"
	"pairvest/internal/service"

	"github.com/gin-gonic/gin"
)

type PairingHandler struct {
	svc *service.PairingService
}

func NewPairingHandler(svc *service.PairingService) *PairingHandler {
	return &PairingHandler{svc: svc}
}

// List returns the user's pairings on both sides: ones they must pay and
// ones paying them.
func (h *PairingHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.svc.ListForUser(userID)
	if err != nil {
		log.Printf("[pairing] list failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list pairings"})
		return
	}
	toPay := make([]interface{}, 0)
	toReceive := make([]interface{}, 0)
	for i := range list {
		p := list[i]
		if p.NewInvestorID == userID {
			toPay = append(toPay, p)
		}
		if p.MaturedInvestorID == userID {
			toReceive = append(toReceive, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"to_pay":     toPay,
		"to_receive": toReceive,
	})
}

// ConfirmPayment records that the payer's money arrived. Only the receiving
// (matured) investor may call it.
func (h *PairingHandler) ConfirmPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pairing id"})
		return
	}
	userID := middleware.GetUserID(c)
	p, err := h.svc.ConfirmPayment(uint(id), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the receiving investor can confirm this payment"})
		case errors.Is(err, domain.ErrAlreadyConfirmed):
			c.JSON(http.StatusConflict, gin.H{"error": "payment already confirmed"})
		default:
			log.Printf("[pairing] confirm failed: user=%d pairing=%d err=%v", userID, id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not confirm payment"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"pairing": p})
}
