package ports

import (
	"context"
	"time"

	"crypto-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// HashService handles API-secret hashing (Argon2id).
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// SignatureService handles HMAC-SHA256 signing and verification for the
// chain-watcher settlement callback.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(merchant *domain.Merchant) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	MerchantID       uuid.UUID
	MerchantPublicID string
}

// AddressGenerator supplies fresh network-appropriate addresses. In
// production this fronts the chain RPC key-derivation pipeline; the core
// only consumes the resulting address string.
type AddressGenerator interface {
	Generate(ctx context.Context, network domain.Network) (string, error)
}

// NonceStore manages nonce uniqueness for replay attack prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error)
}

// RateCache is the Redis-layer cache for latest exchange rates (fast path).
// It is best-effort and never authoritative.
type RateCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached rate JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// --- Service Ports (Business Logic) ---

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, email, secret string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for merchant onboarding.
type RegisterRequest struct {
	Name  string
	Email string
}

// RegisterResponse holds the onboarding result shown once.
type RegisterResponse struct {
	MerchantID uuid.UUID
	PublicID   string
	Secret     string // Plaintext API secret, shown only at registration
}

// MerchantService defines merchant directory operations.
type MerchantService interface {
	GetProfile(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error)
	// UpdateStatus is the administrative activation toggle. Deactivation
	// does not cascade to existing wallets or transactions.
	UpdateStatus(ctx context.Context, merchantID uuid.UUID, status domain.MerchantStatus) error
}

// WalletService defines the wallet ledger business logic.
type WalletService interface {
	Create(ctx context.Context, merchantID uuid.UUID, network domain.Network) (*domain.Wallet, error)
	// GetForMerchant returns Forbidden, not NotFound, when the wallet exists
	// under another merchant.
	GetForMerchant(ctx context.Context, walletID, merchantID uuid.UUID) (*domain.Wallet, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Wallet, error)
}

// TransactionService defines the transaction ledger business logic.
type TransactionService interface {
	Create(ctx context.Context, req CreateTransactionRequest) (*domain.Transaction, error)
	// Settle moves a pending transaction to a terminal status and, for
	// confirmed send/receive, applies the balance effect atomically.
	Settle(ctx context.Context, txID uuid.UUID, status domain.TransactionStatus, meta *domain.BlockMeta) (*domain.Transaction, error)
	GetForMerchant(ctx context.Context, txID, merchantID uuid.UUID) (*domain.Transaction, error)
	ListByMerchant(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// CreateTransactionRequest holds validated input for transaction creation.
type CreateTransactionRequest struct {
	MerchantID  uuid.UUID
	WalletID    *uuid.UUID
	Amount      string // Decimal text, parsed and validated by the service
	Type        domain.TransactionType
	FromAddress *string
	ToAddress   *string
	Network     domain.Network
	Coin        string
	Reference   string // Optional; system-generated when empty
}

// CurrencyService defines the currency/exchange registry business logic.
type CurrencyService interface {
	ListNetworks(ctx context.Context) ([]domain.NetworkCurrencies, error)
	FindCurrency(ctx context.Context, network domain.Network, symbol string) (*domain.Currency, error)
	Convert(ctx context.Context, amount string, fromCurrencyID, toCurrencyID uuid.UUID) (*domain.Conversion, error)
	UpsertRate(ctx context.Context, currencyID uuid.UUID, rate decimal.Decimal, source string) error
}

// AuditService records audit log entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
