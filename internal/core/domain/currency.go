package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NetworkInfo describes a blockchain known to the currency registry.
type NetworkInfo struct {
	ID            uuid.UUID `json:"id"`
	Name          Network   `json:"name"`
	DisplayName   string    `json:"display_name"`
	ChainID       int64     `json:"chain_id"`
	Testnet       bool      `json:"testnet"`
	Confirmations int       `json:"confirmations"` // Blocks required before settlement
	BlockTimeSec  int       `json:"block_time_sec"`
	CreatedAt     time.Time `json:"created_at"`
}

// Currency is a native coin or token on exactly one network.
type Currency struct {
	ID              uuid.UUID `json:"id"`
	NetworkID       uuid.UUID `json:"network_id"`
	Symbol          string    `json:"symbol"`
	Name            string    `json:"name"`
	Native          bool      `json:"native"`
	ContractAddress *string   `json:"contract_address,omitempty"` // Tokens only
	Decimals        int       `json:"decimals"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// ExchangeRate prices a currency against the registry's base currency.
// Only the most recently updated active rate per currency is authoritative.
type ExchangeRate struct {
	ID           uuid.UUID       `json:"id"`
	CurrencyID   uuid.UUID       `json:"currency_id"`
	Rate         decimal.Decimal `json:"rate"` // Base-currency units per 1 unit of the currency
	BaseCurrency string          `json:"base_currency"`
	Source       string          `json:"source"`
	Active       bool            `json:"active"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CurrencyWithRate pairs a currency with its latest active rate, if any.
type CurrencyWithRate struct {
	Currency
	LatestRate *ExchangeRate `json:"latest_rate,omitempty"`
}

// NetworkCurrencies is one registry listing entry: a network and its active
// currencies in stable insertion order.
type NetworkCurrencies struct {
	Network    NetworkInfo        `json:"network"`
	Currencies []CurrencyWithRate `json:"currencies"`
}

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	FromCurrencyID uuid.UUID       `json:"from_currency_id"`
	ToCurrencyID   uuid.UUID       `json:"to_currency_id"`
	Amount         decimal.Decimal `json:"amount"`
	Converted      decimal.Decimal `json:"converted"`
	BaseCurrency   string          `json:"base_currency"`
	RateTimestamp  time.Time       `json:"rate_timestamp"` // Older of the two rates used
}
