package handler

import (
	"crypto-payment-gateway/internal/adapter/http/dto"
	"crypto-payment-gateway/internal/core/ports"
	"crypto-payment-gateway/pkg/apperror"
	"crypto-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyHandler handles currency registry and conversion endpoints.
type CurrencyHandler struct {
	currencySvc ports.CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencySvc ports.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencySvc: currencySvc}
}

// ListNetworks handles GET /api/v1/currencies.
func (h *CurrencyHandler) ListNetworks(c *gin.Context) {
	networks, err := h.currencySvc.ListNetworks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"networks": networks})
}

// Convert handles POST /api/v1/currencies/convert.
func (h *CurrencyHandler) Convert(c *gin.Context) {
	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	fromID, err := uuid.Parse(req.FromCurrencyID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid from_currency_id"))
		return
	}
	toID, err := uuid.Parse(req.ToCurrencyID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid to_currency_id"))
		return
	}

	conv, err := h.currencySvc.Convert(c.Request.Context(), req.Amount, fromID, toID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ConversionResponse{
		FromCurrencyID: conv.FromCurrencyID.String(),
		ToCurrencyID:   conv.ToCurrencyID.String(),
		Amount:         conv.Amount.String(),
		Converted:      conv.Converted.String(),
		BaseCurrency:   conv.BaseCurrency,
		RateTimestamp:  conv.RateTimestamp.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// UpsertRate handles PUT /api/v1/currencies/rates.
func (h *CurrencyHandler) UpsertRate(c *gin.Context) {
	var req dto.UpsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	currencyID, err := uuid.Parse(req.CurrencyID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid currency_id"))
		return
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	if err := h.currencySvc.UpsertRate(c.Request.Context(), currencyID, rate, req.Source); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "rate published"})
}
