package handler

import (
	"strconv"

	"crypto-payment-gateway/internal/adapter/http/dto"
	"crypto-payment-gateway/internal/adapter/http/middleware"
	"crypto-payment-gateway/internal/core/domain"
	"crypto-payment-gateway/internal/core/ports"
	"crypto-payment-gateway/pkg/apperror"
	"crypto-payment-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles transaction ledger endpoints.
type TransactionHandler struct {
	txSvc ports.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txSvc ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc}
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	var walletID *uuid.UUID
	if req.WalletID != nil {
		id, err := uuid.Parse(*req.WalletID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid wallet id"))
			return
		}
		walletID = &id
	}

	txn, err := h.txSvc.Create(c.Request.Context(), ports.CreateTransactionRequest{
		MerchantID:  merchantID.(uuid.UUID),
		WalletID:    walletID,
		Amount:      req.Amount,
		Type:        domain.TransactionType(req.Type),
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		Network:     domain.Network(req.Network),
		Coin:        req.Coin,
		Reference:   req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// Get handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	txn, err := h.txSvc.GetForMerchant(c.Request.Context(), txID, merchantID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params := ports.TransactionListParams{
		MerchantID: merchantID.(uuid.UUID),
	}

	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}
	if t := c.Query("type"); t != "" {
		txType := domain.TransactionType(t)
		params.Type = &txType
	}
	if from := c.Query("from"); from != "" {
		ts, err := strconv.ParseInt(from, 10, 64)
		if err != nil {
			response.Error(c, apperror.Validation("invalid from timestamp"))
			return
		}
		params.From = &ts
	}
	if to := c.Query("to"); to != "" {
		ts, err := strconv.ParseInt(to, 10, 64)
		if err != nil {
			response.Error(c, apperror.Validation("invalid to timestamp"))
			return
		}
		params.To = &ts
	}
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	txns, total, err := h.txSvc.ListByMerchant(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:          tx.ID.String(),
		Reference:   tx.Reference,
		Amount:      tx.Amount.String(),
		Type:        string(tx.Type),
		Status:      string(tx.Status),
		FromAddress: tx.FromAddress,
		ToAddress:   tx.ToAddress,
		Network:     string(tx.Network),
		Coin:        tx.Coin,
		TxHash:      tx.TxHash,
		BlockNumber: tx.BlockNumber,
		GasUsed:     tx.GasUsed,
		CreatedAt:   tx.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if tx.WalletID != nil {
		s := tx.WalletID.String()
		resp.WalletID = &s
	}
	if tx.GasPrice != nil {
		s := tx.GasPrice.String()
		resp.GasPrice = &s
	}
	if tx.ProcessedAt != nil {
		s := tx.ProcessedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.ProcessedAt = &s
	}
	return resp
}
