package handler

import (
	"crypto-payment-gateway/internal/adapter/http/dto"
	"crypto-payment-gateway/internal/core/domain"
	"crypto-payment-gateway/internal/core/ports"
	"crypto-payment-gateway/pkg/apperror"
	"crypto-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementHandler handles the chain-watcher settlement callback.
type SettlementHandler struct {
	txSvc ports.TransactionService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(txSvc ports.TransactionService) *SettlementHandler {
	return &SettlementHandler{txSvc: txSvc}
}

// Settle handles POST /api/v1/internal/settlements.
func (h *SettlementHandler) Settle(c *gin.Context) {
	var req dto.SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	var meta *domain.BlockMeta
	if req.TxHash != nil {
		meta = &domain.BlockMeta{TxHash: *req.TxHash}
		if req.BlockNumber != nil {
			meta.BlockNumber = *req.BlockNumber
		}
		if req.GasUsed != nil {
			meta.GasUsed = *req.GasUsed
		}
		if req.GasPrice != nil {
			gp, err := decimal.NewFromString(*req.GasPrice)
			if err != nil {
				response.Error(c, apperror.Validation("invalid gas price"))
				return
			}
			meta.GasPrice = gp
		}
	}

	txn, err := h.txSvc.Settle(c.Request.Context(), txID, domain.TransactionStatus(req.Status), meta)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}
