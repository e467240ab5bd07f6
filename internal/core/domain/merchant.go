package domain

import (
	"time"

	"github.com/google/uuid"
)

// MerchantStatus represents the state of a merchant account.
type MerchantStatus string

const (
	MerchantStatusActive   MerchantStatus = "ACTIVE"
	MerchantStatusInactive MerchantStatus = "INACTIVE"
)

// Merchant represents a registered merchant in the system.
// Merchants are never physically deleted while wallets or transactions
// reference them; deactivation is the only removal path.
type Merchant struct {
	ID         uuid.UUID      `json:"id"`
	PublicID   string         `json:"merchant_id"` // External identifier (mch_ prefix), unique
	Name       string         `json:"name"`
	Email      string         `json:"email"` // Unique
	SecretHash string         `json:"-"`     // Argon2id hash of the API secret, never expose
	Status     MerchantStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// IsActive returns true if the merchant account is active.
func (m *Merchant) IsActive() bool {
	return m.Status == MerchantStatusActive
}
