package handler

import (
	"crypto-payment-gateway/internal/adapter/http/dto"
	"crypto-payment-gateway/internal/adapter/http/middleware"
	"crypto-payment-gateway/internal/core/domain"
	"crypto-payment-gateway/internal/core/ports"
	"crypto-payment-gateway/pkg/apperror"
	"crypto-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MerchantHandler handles merchant self-service endpoints.
type MerchantHandler struct {
	merchantSvc ports.MerchantService
}

// NewMerchantHandler creates a new merchant handler.
func NewMerchantHandler(merchantSvc ports.MerchantService) *MerchantHandler {
	return &MerchantHandler{merchantSvc: merchantSvc}
}

// GetProfile returns the authenticated merchant's profile.
func (h *MerchantHandler) GetProfile(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	profile, err := h.merchantSvc.GetProfile(c.Request.Context(), merchantID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"id":          profile.ID.String(),
		"merchant_id": profile.PublicID,
		"name":        profile.Name,
		"email":       profile.Email,
		"status":      string(profile.Status),
		"created_at":  profile.CreatedAt,
	})
}

// UpdateStatus toggles the authenticated merchant's activation status.
func (h *MerchantHandler) UpdateStatus(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.UpdateMerchantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	err := h.merchantSvc.UpdateStatus(c.Request.Context(), merchantID.(uuid.UUID), domain.MerchantStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "merchant status updated"})
}
