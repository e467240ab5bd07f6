package service

import (
	"context"
	"fmt"
	"time"

	"crypto-payment-gateway/internal/core/domain"
	"crypto-payment-gateway/internal/core/ports"
	"crypto-payment-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransactionServiceImpl implements ports.TransactionService.
type TransactionServiceImpl struct {
	txRepo       ports.TransactionRepository
	walletRepo   ports.WalletRepository
	merchantRepo ports.MerchantRepository
	currencyRepo ports.CurrencyRepository
	transactor   ports.DBTransactor
	auditSvc     ports.AuditService
	log          zerolog.Logger
}

// NewTransactionService creates a new TransactionServiceImpl.
func NewTransactionService(
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	merchantRepo ports.MerchantRepository,
	currencyRepo ports.CurrencyRepository,
	transactor ports.DBTransactor,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		txRepo:       txRepo,
		walletRepo:   walletRepo,
		merchantRepo: merchantRepo,
		currencyRepo: currencyRepo,
		transactor:   transactor,
		auditSvc:     auditSvc,
		log:          log,
	}
}

// Create records a new pending transaction. All validation happens before
// any write, so a failure at any step leaves the ledger untouched.
func (s *TransactionServiceImpl) Create(ctx context.Context, req ports.CreateTransactionRequest) (*domain.Transaction, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, req.MerchantID)
	if err != nil {
		return nil, apperror.Unexpected("get merchant", err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	if !merchant.IsActive() {
		return nil, apperror.ErrMerchantInactive()
	}

	if !domain.ValidTransactionType(req.Type) {
		return nil, apperror.Validation(fmt.Sprintf("unknown transaction type: %s", req.Type))
	}

	amount, ok := domain.ParseAmount(req.Amount)
	if !ok {
		return nil, apperror.ErrInvalidAmount()
	}

	if req.Type == domain.TransactionTypeSend {
		if req.ToAddress == nil || !domain.ValidAddress(req.Network, *req.ToAddress) {
			return nil, apperror.Validation(fmt.Sprintf("to_address is not a valid %s address", req.Network))
		}
	}

	if req.WalletID != nil {
		wallet, err := s.walletRepo.GetByID(ctx, *req.WalletID)
		if err != nil {
			return nil, apperror.Unexpected("get wallet", err)
		}
		if wallet == nil {
			return nil, apperror.ErrNotFound("wallet")
		}
		if wallet.MerchantID != req.MerchantID {
			return nil, apperror.ErrForbidden("wallet")
		}
		if wallet.Network != req.Network {
			return nil, apperror.Validation("wallet network does not match transaction network")
		}
	}

	currency, err := s.currencyRepo.FindCurrency(ctx, req.Network, req.Coin)
	if err != nil {
		return nil, apperror.Unexpected("find currency", err)
	}
	if currency == nil || !currency.Active {
		return nil, apperror.ErrUnsupportedCurrency(string(req.Network), req.Coin)
	}

	reference := req.Reference
	if reference == "" {
		reference, err = generateKey("txn_", 12)
		if err != nil {
			return nil, apperror.Unexpected("generate reference", err)
		}
	} else {
		existing, err := s.txRepo.GetByReference(ctx, req.MerchantID, reference)
		if err != nil {
			return nil, apperror.Unexpected("check reference", err)
		}
		if existing != nil {
			return nil, apperror.ErrConflict("reference already used")
		}
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uuid.New(),
		MerchantID:  req.MerchantID,
		WalletID:    req.WalletID,
		Reference:   reference,
		Amount:      amount,
		Type:        req.Type,
		Status:      domain.TransactionStatusPending,
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		Network:     req.Network,
		Coin:        currency.Symbol,
		CreatedAt:   now,
	}

	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, apperror.Unexpected("create transaction", err)
	}

	if s.auditSvc != nil {
		s.auditSvc.Log(ctx, &domain.AuditLog{
			ID:           uuid.New(),
			MerchantID:   &req.MerchantID,
			Action:       domain.AuditActionTxCreate,
			ResourceType: "transaction",
			ResourceID:   txn.ID.String(),
			Details:      fmt.Sprintf(`{"type":%q,"network":%q,"coin":%q}`, req.Type, req.Network, currency.Symbol),
			CreatedAt:    now,
		})
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("merchant_id", merchant.PublicID).
		Str("type", string(req.Type)).
		Str("amount", amount.String()).
		Msg("transaction created")

	return txn, nil
}

// Settle moves a pending transaction to a terminal status. The status write
// is a compare-and-swap on PENDING, and the wallet balance effect of a
// confirmed send/receive is applied in the same database transaction: both
// succeed or neither does.
func (s *TransactionServiceImpl) Settle(ctx context.Context, txID uuid.UUID, status domain.TransactionStatus, meta *domain.BlockMeta) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.Unexpected("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock the transaction row first, then the wallet row. Every settlement
	// takes locks in this order, so concurrent settlements cannot deadlock.
	txn, err := s.txRepo.GetByIDForUpdate(ctx, dbTx, txID)
	if err != nil {
		return nil, apperror.Unexpected("lock transaction", err)
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if !domain.CanTransition(txn.Status, status) {
		return nil, apperror.ErrInvalidTransition(string(txn.Status), string(status))
	}

	now := time.Now().UTC()
	swapped, err := s.txRepo.SettleIfPending(ctx, dbTx, txID, status, meta, now)
	if err != nil {
		return nil, apperror.Unexpected("update transaction status", err)
	}
	if !swapped {
		return nil, apperror.ErrInvalidTransition(string(txn.Status), string(status))
	}

	if status == domain.TransactionStatusConfirmed && txn.WalletID != nil {
		effect := txn.BalanceEffect()
		if !effect.IsZero() {
			wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, *txn.WalletID)
			if err != nil {
				return nil, apperror.Unexpected("lock wallet", err)
			}
			if wallet == nil {
				return nil, apperror.Unexpected("lock wallet", fmt.Errorf("wallet %s referenced by transaction %s is missing", *txn.WalletID, txID))
			}

			newBalance := wallet.Balance.Add(effect)
			if newBalance.IsNegative() {
				return nil, apperror.ErrInsufficientFunds()
			}

			if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
				return nil, apperror.Unexpected("update balance", err)
			}
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.Unexpected("commit tx", err)
	}

	txn.Status = status
	txn.ProcessedAt = &now
	if meta != nil {
		txn.TxHash = &meta.TxHash
		txn.BlockNumber = &meta.BlockNumber
		txn.GasUsed = &meta.GasUsed
		gasPrice := meta.GasPrice
		txn.GasPrice = &gasPrice
	}

	if s.auditSvc != nil {
		s.auditSvc.Log(ctx, &domain.AuditLog{
			ID:           uuid.New(),
			MerchantID:   &txn.MerchantID,
			Action:       domain.AuditActionTxSettle,
			ResourceType: "transaction",
			ResourceID:   txn.ID.String(),
			Details:      fmt.Sprintf(`{"status":%q}`, status),
			CreatedAt:    now,
		})
	}

	s.log.Info().
		Str("tx_id", txID.String()).
		Str("status", string(status)).
		Msg("transaction settled")

	return txn, nil
}

// GetForMerchant fetches a transaction enforcing ownership with the same
// Forbidden-vs-NotFound distinction as the wallet ledger.
func (s *TransactionServiceImpl) GetForMerchant(ctx context.Context, txID, merchantID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, apperror.Unexpected("get transaction", err)
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if txn.MerchantID != merchantID {
		return nil, apperror.ErrForbidden("transaction")
	}
	return txn, nil
}

// ListByMerchant returns the merchant's transactions with filters applied.
func (s *TransactionServiceImpl) ListByMerchant(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	items, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.Unexpected("list transactions", err)
	}
	return items, total, nil
}
