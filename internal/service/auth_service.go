package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"crypto-payment-gateway/internal/core/domain"
	"crypto-payment-gateway/internal/core/ports"
	"crypto-payment-gateway/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	merchantRepo ports.MerchantRepository
	hashSvc      ports.HashService
	tokenSvc     ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	merchantRepo ports.MerchantRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		merchantRepo: merchantRepo,
		hashSvc:      hashSvc,
		tokenSvc:     tokenSvc,
	}
}

// Register onboards a new merchant.
// Returns the public identifier and API secret (plaintext shown only once).
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResponse, error) {
	// Email uniqueness
	existing, err := s.merchantRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Unexpected("check email", err)
	}
	if existing != nil {
		return nil, apperror.ErrConflict("email already registered")
	}

	publicID, err := generateKey("mch_", 12)
	if err != nil {
		return nil, apperror.Unexpected("generate merchant id", err)
	}

	secret, err := generateKey("sk_", 32)
	if err != nil {
		return nil, apperror.Unexpected("generate secret", err)
	}

	secretHash, err := s.hashSvc.Hash(secret)
	if err != nil {
		return nil, apperror.Unexpected("hash secret", err)
	}

	now := time.Now().UTC()
	merchant := &domain.Merchant{
		ID:         uuid.New(),
		PublicID:   publicID,
		Name:       req.Name,
		Email:      req.Email,
		SecretHash: secretHash,
		Status:     domain.MerchantStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, apperror.Unexpected("create merchant", err)
	}

	return &ports.RegisterResponse{
		MerchantID: merchant.ID,
		PublicID:   publicID,
		Secret:     secret,
	}, nil
}

// Login validates email + API secret and returns a JWT token.
func (s *AuthServiceImpl) Login(ctx context.Context, email, secret string) (string, time.Time, error) {
	merchant, err := s.merchantRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, apperror.Unexpected("find merchant", err)
	}
	if merchant == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(secret, merchant.SecretHash)
	if err != nil {
		return "", time.Time{}, apperror.Unexpected("verify secret", err)
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	if !merchant.IsActive() {
		return "", time.Time{}, apperror.ErrMerchantInactive()
	}

	token, expiry, err := s.tokenSvc.Generate(merchant)
	if err != nil {
		return "", time.Time{}, apperror.Unexpected("generate token", err)
	}

	return token, expiry, nil
}

// generateKey generates a prefixed random hex key of n bytes.
func generateKey(prefix string, n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	return prefix + hex.EncodeToString(b), nil
}
