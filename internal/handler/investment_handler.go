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
	"github.com/shopspring/decimal"
)

type InvestmentHandler struct {
	svc *service.InvestmentService
}

func NewInvestmentHandler(svc *service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{svc: svc}
}

type CreateInvestmentRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	MaturityPeriod int             `json:"maturity_period" binding:"required"` // days
}

func (h *InvestmentHandler) Create(c *gin.Context) {
	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	inv, err := h.svc.CreateInvestment(userID, req.Amount, req.MaturityPeriod)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			log.Printf("[investment] create failed: user=%d err=%v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create investment"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"investment": inv})
}

func (h *InvestmentHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.svc.ListForUser(userID)
	if err != nil {
		log.Printf("[investment] list failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list investments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"investments": list})
}

func (h *InvestmentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid investment id"})
		return
	}
	userID := middleware.GetUserID(c)
	inv, err := h.svc.GetForUser(uint(id), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[investment] get failed: user=%d id=%d err=%v", userID, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load investment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"investment": inv})
}
