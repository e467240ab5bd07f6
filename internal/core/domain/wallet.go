package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletStatus represents the state of a wallet.
type WalletStatus string

const (
	WalletStatusActive   WalletStatus = "ACTIVE"
	WalletStatusInactive WalletStatus = "INACTIVE"
)

// Wallet represents a merchant's address on a single blockchain network.
// A wallet belongs to exactly one merchant for its lifetime and its address
// is globally unique. Balances are mutated only by confirmed settlement.
type Wallet struct {
	ID         uuid.UUID       `json:"id"`
	MerchantID uuid.UUID       `json:"merchant_id"`
	Network    Network         `json:"network"`
	Address    string          `json:"address"`
	Balance    decimal.Decimal `json:"balance"`
	Status     WalletStatus    `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IsActive returns true if the wallet can take part in new transactions.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}
