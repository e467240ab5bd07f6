package dto

// RegisterRequest is the request body for merchant registration.
type RegisterRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"required,email,max=255"`
}

// RegisterResponse is the response body for successful registration.
// The API secret appears here once and is never retrievable again.
type RegisterResponse struct {
	MerchantID string `json:"merchant_id"`
	PublicID   string `json:"public_id"`
	Secret     string `json:"secret"`
}

// LoginRequest is the request body for merchant login.
type LoginRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Secret string `json:"secret" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	Network string `json:"network" binding:"required,safe_id"`
}

// WalletResponse is the response body for a single wallet.
type WalletResponse struct {
	ID        string `json:"id"`
	Network   string `json:"network"`
	Address   string `json:"address"`
	Balance   string `json:"balance"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// WalletListResponse wraps a merchant's wallet list.
type WalletListResponse struct {
	Items []WalletResponse `json:"items"`
	Total int              `json:"total"`
}

// CreateTransactionRequest is the request body for transaction creation.
// Amounts travel as decimal strings; JSON numbers lose precision.
type CreateTransactionRequest struct {
	WalletID    *string `json:"wallet_id,omitempty"`
	Amount      string  `json:"amount" binding:"required"`
	Type        string  `json:"type" binding:"required,safe_id"`
	FromAddress *string `json:"from_address,omitempty"`
	ToAddress   *string `json:"to_address,omitempty"`
	Network     string  `json:"network" binding:"required,safe_id"`
	Coin        string  `json:"coin" binding:"required,max=20"`
	Reference   string  `json:"reference" binding:"omitempty,max=100,safe_id"`
}

// TransactionResponse is the response body for transaction results.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Reference   string  `json:"reference"`
	WalletID    *string `json:"wallet_id,omitempty"`
	Amount      string  `json:"amount"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	FromAddress *string `json:"from_address,omitempty"`
	ToAddress   *string `json:"to_address,omitempty"`
	Network     string  `json:"network"`
	Coin        string  `json:"coin"`
	TxHash      *string `json:"tx_hash,omitempty"`
	BlockNumber *int64  `json:"block_number,omitempty"`
	GasUsed     *int64  `json:"gas_used,omitempty"`
	GasPrice    *string `json:"gas_price,omitempty"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at,omitempty"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// SettlementRequest is the chain-watcher callback body moving a pending
// transaction to a terminal status.
type SettlementRequest struct {
	TransactionID string  `json:"transaction_id" binding:"required,uuid"`
	Status        string  `json:"status" binding:"required,oneof=CONFIRMED FAILED"`
	TxHash        *string `json:"tx_hash,omitempty"`
	BlockNumber   *int64  `json:"block_number,omitempty"`
	GasUsed       *int64  `json:"gas_used,omitempty"`
	GasPrice      *string `json:"gas_price,omitempty"`
}

// ConvertRequest is the request body for currency conversion.
type ConvertRequest struct {
	Amount         string `json:"amount" binding:"required"`
	FromCurrencyID string `json:"from_currency_id" binding:"required,uuid"`
	ToCurrencyID   string `json:"to_currency_id" binding:"required,uuid"`
}

// ConversionResponse is the response body for currency conversion.
type ConversionResponse struct {
	FromCurrencyID string `json:"from_currency_id"`
	ToCurrencyID   string `json:"to_currency_id"`
	Amount         string `json:"amount"`
	Converted      string `json:"converted"`
	BaseCurrency   string `json:"base_currency"`
	RateTimestamp  string `json:"rate_timestamp"`
}

// UpsertRateRequest is the request body for publishing a new exchange rate.
type UpsertRateRequest struct {
	CurrencyID string `json:"currency_id" binding:"required,uuid"`
	Rate       string `json:"rate" binding:"required"`
	Source     string `json:"source" binding:"required,max=50,safe_id"`
}

// UpdateMerchantStatusRequest toggles a merchant account's activation.
type UpdateMerchantStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}
