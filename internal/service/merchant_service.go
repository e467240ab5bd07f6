package service

import (
	"context"
	"time"

	"crypto-payment-gateway/internal/core/domain"
	"crypto-payment-gateway/internal/core/ports"
	"crypto-payment-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type merchantService struct {
	merchantRepo ports.MerchantRepository
	auditSvc     ports.AuditService
	log          zerolog.Logger
}

// NewMerchantService creates the merchant directory service.
func NewMerchantService(
	merchantRepo ports.MerchantRepository,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) ports.MerchantService {
	return &merchantService{
		merchantRepo: merchantRepo,
		auditSvc:     auditSvc,
		log:          log,
	}
}

func (s *merchantService) GetProfile(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.Unexpected("get merchant", err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	return merchant, nil
}

// UpdateStatus toggles a merchant's activation. It never deletes: wallets and
// transactions keep referencing a deactivated merchant, but new creation for
// it is rejected by the ledgers.
func (s *merchantService) UpdateStatus(ctx context.Context, merchantID uuid.UUID, status domain.MerchantStatus) error {
	if status != domain.MerchantStatusActive && status != domain.MerchantStatusInactive {
		return apperror.Validation("unknown merchant status")
	}

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return apperror.Unexpected("get merchant", err)
	}
	if merchant == nil {
		return apperror.ErrNotFound("merchant")
	}

	if err := s.merchantRepo.UpdateStatus(ctx, merchantID, status); err != nil {
		return apperror.Unexpected("update merchant status", err)
	}

	if s.auditSvc != nil {
		s.auditSvc.Log(ctx, &domain.AuditLog{
			ID:           uuid.New(),
			MerchantID:   &merchantID,
			Action:       domain.AuditActionMerchantStatus,
			ResourceType: "merchant",
			ResourceID:   merchant.PublicID,
			Details:      `{"status":"` + string(status) + `"}`,
			CreatedAt:    time.Now().UTC(),
		})
	}

	s.log.Info().
		Str("merchant_id", merchant.PublicID).
		Str("status", string(status)).
		Msg("merchant status updated")

	return nil
}
