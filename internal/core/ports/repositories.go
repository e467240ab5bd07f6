package ports

import (
	"context"
	"time"

	"crypto-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByPublicID(ctx context.Context, publicID string) (*domain.Merchant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Merchant, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MerchantStatus) error
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByReference(ctx context.Context, merchantID uuid.UUID, reference string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)
	// SettleIfPending is a compare-and-swap: it moves the transaction to a
	// terminal status only if it is still PENDING, recording block metadata.
	// Returns false when the guard did not match (already terminal).
	SettleIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, meta *domain.BlockMeta, processedAt time.Time) (bool, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	MerchantID uuid.UUID
	Status     *domain.TransactionStatus
	Type       *domain.TransactionType
	From       *int64 // Unix timestamp
	To         *int64 // Unix timestamp
	Page       int
	PageSize   int
}

// CurrencyRepository defines persistence for the currency/exchange registry.
type CurrencyRepository interface {
	// ListNetworks returns networks with their active currencies and each
	// currency's latest active rate, in stable insertion order.
	ListNetworks(ctx context.Context) ([]domain.NetworkCurrencies, error)
	FindCurrency(ctx context.Context, network domain.Network, symbol string) (*domain.Currency, error)
	GetCurrencyByID(ctx context.Context, id uuid.UUID) (*domain.Currency, error)
	GetActiveRate(ctx context.Context, currencyID uuid.UUID) (*domain.ExchangeRate, error)
	// DeactivateRates marks all active rates for a currency inactive. Called
	// inside the same transaction as the subsequent InsertRate so that at
	// most one active rate exists per currency.
	DeactivateRates(ctx context.Context, tx pgx.Tx, currencyID uuid.UUID) error
	InsertRate(ctx context.Context, tx pgx.Tx, rate *domain.ExchangeRate) error
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
