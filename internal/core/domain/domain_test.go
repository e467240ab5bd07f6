package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		current TransactionStatus
		next    TransactionStatus
		want    bool
	}{
		{"pending to confirmed", TransactionStatusPending, TransactionStatusConfirmed, true},
		{"pending to failed", TransactionStatusPending, TransactionStatusFailed, true},
		{"confirmed to failed", TransactionStatusConfirmed, TransactionStatusFailed, false},
		{"failed to confirmed", TransactionStatusFailed, TransactionStatusConfirmed, false},
		{"confirmed to pending", TransactionStatusConfirmed, TransactionStatusPending, false},
		{"pending self-transition", TransactionStatusPending, TransactionStatusPending, false},
		{"confirmed self-transition", TransactionStatusConfirmed, TransactionStatusConfirmed, false},
		{"unknown current", TransactionStatus("PROCESSING"), TransactionStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.current, tt.next))
		})
	}
}

func TestTransaction_IsTerminal(t *testing.T) {
	assert.False(t, (&Transaction{Status: TransactionStatusPending}).IsTerminal())
	assert.True(t, (&Transaction{Status: TransactionStatusConfirmed}).IsTerminal())
	assert.True(t, (&Transaction{Status: TransactionStatusFailed}).IsTerminal())
}

func TestTransaction_BalanceEffect(t *testing.T) {
	amount := decimal.RequireFromString("1.5")

	receive := &Transaction{Type: TransactionTypeReceive, Amount: amount}
	assert.True(t, receive.BalanceEffect().Equal(amount))

	send := &Transaction{Type: TransactionTypeSend, Amount: amount}
	assert.True(t, send.BalanceEffect().Equal(amount.Neg()))

	request := &Transaction{Type: TransactionTypeRequest, Amount: amount}
	assert.True(t, request.BalanceEffect().IsZero())

	transfer := &Transaction{Type: TransactionTypeTransfer, Amount: amount}
	assert.True(t, transfer.BalanceEffect().IsZero())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"1.5", true},
		{"0.00000001", true},
		{"50000", true},
		{"0", false},
		{"-1.5", false},
		{"", false},
		{"abc", false},
		{"1.5e3", true}, // Scientific notation is well-formed decimal text
		{"1,5", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.True(t, d.IsPositive())
			}
		})
	}
}

func TestParseAmount_ExactDecimal(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3; float64 would give 0.30000000000000004.
	a, ok := ParseAmount("0.1")
	require.True(t, ok)
	b, ok := ParseAmount("0.2")
	require.True(t, ok)
	assert.Equal(t, "0.3", a.Add(b).String())
}

func TestValidTransactionType(t *testing.T) {
	assert.True(t, ValidTransactionType(TransactionTypeSend))
	assert.True(t, ValidTransactionType(TransactionTypeReceive))
	assert.True(t, ValidTransactionType(TransactionTypeRequest))
	assert.True(t, ValidTransactionType(TransactionTypeTransfer))
	assert.False(t, ValidTransactionType(TransactionType("REFUND")))
}

func TestNetwork_Known(t *testing.T) {
	for _, n := range KnownNetworks {
		assert.True(t, n.Known())
	}
	assert.False(t, Network("dogecoin").Known())
}

func TestMerchant_IsActive(t *testing.T) {
	assert.True(t, (&Merchant{Status: MerchantStatusActive}).IsActive())
	assert.False(t, (&Merchant{Status: MerchantStatusInactive}).IsActive())
}
