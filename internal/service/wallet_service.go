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
	"github.com/shopspring/decimal"
)

// maxAddressAttempts bounds the address collision retry loop. Collisions are
// astronomically unlikely given the address space; hitting the bound means
// the generator is broken.
const maxAddressAttempts = 5

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo   ports.WalletRepository
	merchantRepo ports.MerchantRepository
	addrGen      ports.AddressGenerator
	auditSvc     ports.AuditService
	log          zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	merchantRepo ports.MerchantRepository,
	addrGen ports.AddressGenerator,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo:   walletRepo,
		merchantRepo: merchantRepo,
		addrGen:      addrGen,
		auditSvc:     auditSvc,
		log:          log,
	}
}

// Create provisions a wallet for a merchant on the given network with a
// fresh, globally unique address and a zero balance.
func (s *WalletServiceImpl) Create(ctx context.Context, merchantID uuid.UUID, network domain.Network) (*domain.Wallet, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.Unexpected("get merchant", err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	if !merchant.IsActive() {
		return nil, apperror.ErrMerchantInactive()
	}

	if !network.Known() {
		return nil, apperror.Validation(fmt.Sprintf("unsupported network: %s", network))
	}

	for attempt := 1; attempt <= maxAddressAttempts; attempt++ {
		address, err := s.addrGen.Generate(ctx, network)
		if err != nil {
			return nil, apperror.Unexpected("generate address", err)
		}

		existing, err := s.walletRepo.GetByAddress(ctx, address)
		if err != nil {
			return nil, apperror.Unexpected("check address uniqueness", err)
		}
		if existing != nil {
			s.log.Warn().
				Str("network", string(network)).
				Int("attempt", attempt).
				Msg("address collision, retrying")
			continue
		}

		now := time.Now().UTC()
		wallet := &domain.Wallet{
			ID:         uuid.New(),
			MerchantID: merchantID,
			Network:    network,
			Address:    address,
			Balance:    decimal.Zero,
			Status:     domain.WalletStatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := s.walletRepo.Create(ctx, wallet); err != nil {
			return nil, apperror.Unexpected("create wallet", err)
		}

		if s.auditSvc != nil {
			s.auditSvc.Log(ctx, &domain.AuditLog{
				ID:           uuid.New(),
				MerchantID:   &merchantID,
				Action:       domain.AuditActionWalletCreate,
				ResourceType: "wallet",
				ResourceID:   wallet.ID.String(),
				Details:      fmt.Sprintf(`{"network":%q}`, network),
				CreatedAt:    now,
			})
		}

		s.log.Info().
			Str("wallet_id", wallet.ID.String()).
			Str("merchant_id", merchant.PublicID).
			Str("network", string(network)).
			Msg("wallet created")

		return wallet, nil
	}

	return nil, apperror.Unexpected("create wallet",
		fmt.Errorf("address collision persisted after %d attempts", maxAddressAttempts))
}

// GetForMerchant fetches a wallet enforcing ownership. A wallet owned by a
// different merchant yields Forbidden, not NotFound; callers must not learn
// whether a foreign wallet exists.
func (s *WalletServiceImpl) GetForMerchant(ctx context.Context, walletID, merchantID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.Unexpected("get wallet", err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if wallet.MerchantID != merchantID {
		return nil, apperror.ErrForbidden("wallet")
	}
	return wallet, nil
}

// ListByMerchant returns the merchant's wallets ordered by creation time.
func (s *WalletServiceImpl) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.Unexpected("list wallets", err)
	}
	return wallets, nil
}
