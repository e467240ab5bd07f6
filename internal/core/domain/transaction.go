package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeSend     TransactionType = "SEND"
	TransactionTypeReceive  TransactionType = "RECEIVE"
	TransactionTypeRequest  TransactionType = "REQUEST"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// ValidTransactionType reports whether t is a known transaction type.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TransactionTypeSend, TransactionTypeReceive, TransactionTypeRequest, TransactionTypeTransfer:
		return true
	}
	return false
}

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusConfirmed TransactionStatus = "CONFIRMED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// transactionTransitions is the full status state machine. Terminal states
// have no outgoing edges; self-transitions are not listed and therefore
// rejected.
var transactionTransitions = map[TransactionStatus]map[TransactionStatus]struct{}{
	TransactionStatusPending: {
		TransactionStatusConfirmed: {},
		TransactionStatusFailed:    {},
	},
	TransactionStatusConfirmed: {},
	TransactionStatusFailed:    {},
}

// CanTransition reports whether a status change from current to next is legal.
func CanTransition(current, next TransactionStatus) bool {
	nextStates, ok := transactionTransitions[current]
	if !ok {
		return false
	}
	_, ok = nextStates[next]
	return ok
}

// BlockMeta carries on-chain confirmation details supplied by the chain
// watcher when a transaction reaches a terminal state.
type BlockMeta struct {
	TxHash      string          `json:"tx_hash"`
	BlockNumber int64           `json:"block_number"`
	GasUsed     int64           `json:"gas_used"`
	GasPrice    decimal.Decimal `json:"gas_price"`
}

// Transaction represents a ledger entry for an on-chain money movement.
// Amounts use arbitrary-precision decimals; binary floats would accumulate
// rounding drift across settlements.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	MerchantID  uuid.UUID         `json:"merchant_id"`
	WalletID    *uuid.UUID        `json:"wallet_id,omitempty"`
	TxHash      *string           `json:"tx_hash,omitempty"` // Unique once assigned
	Reference   string            `json:"reference"`         // Merchant-supplied or system-generated
	Amount      decimal.Decimal   `json:"amount"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	FromAddress *string           `json:"from_address,omitempty"`
	ToAddress   *string           `json:"to_address,omitempty"`
	Network     Network           `json:"network"`
	Coin        string            `json:"coin"`
	BlockNumber *int64            `json:"block_number,omitempty"`
	GasUsed     *int64            `json:"gas_used,omitempty"`
	GasPrice    *decimal.Decimal  `json:"gas_price,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusConfirmed ||
		t.Status == TransactionStatusFailed
}

// BalanceEffect returns the signed amount a confirmed transaction applies to
// its wallet: credit for receive, debit for send, zero otherwise.
func (t *Transaction) BalanceEffect() decimal.Decimal {
	switch t.Type {
	case TransactionTypeReceive:
		return t.Amount
	case TransactionTypeSend:
		return t.Amount.Neg()
	}
	return decimal.Zero
}

// ParseAmount validates and parses a decimal amount string. It rejects
// malformed text and non-positive values.
func ParseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}
