package postgres

import (
	"context"
	"testing"
	"time"

	"crypto-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCurrency(networkID uuid.UUID) *domain.Currency {
	return &domain.Currency{
		ID:        uuid.New(),
		NetworkID: networkID,
		Symbol:    "ETH",
		Name:      "Ether",
		Native:    true,
		Decimals:  18,
		Active:    true,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func currencyTestColumns() []string {
	return []string{"id", "network_id", "symbol", "name", "native", "contract_address", "decimals", "active", "created_at"}
}

func currencyRow(c *domain.Currency) *pgxmock.Rows {
	return pgxmock.NewRows(currencyTestColumns()).AddRow(
		c.ID, c.NetworkID, c.Symbol, c.Name, c.Native,
		c.ContractAddress, c.Decimals, c.Active, c.CreatedAt,
	)
}

func TestCurrencyRepo_FindCurrency(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)
	c := newTestCurrency(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM currencies c").
		WithArgs(domain.NetworkEthereum, "eth").
		WillReturnRows(currencyRow(c))

	result, err := repo.FindCurrency(context.Background(), domain.NetworkEthereum, "eth")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "ETH", result.Symbol)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepo_FindCurrency_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM currencies c").
		WithArgs(domain.NetworkTron, "XYZ").
		WillReturnRows(pgxmock.NewRows(currencyTestColumns()))

	result, err := repo.FindCurrency(context.Background(), domain.NetworkTron, "XYZ")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepo_GetActiveRate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)
	currencyID := uuid.New()
	rate := decimal.RequireFromString("3000.5")
	updatedAt := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM exchange_rates WHERE currency_id").
		WithArgs(currencyID).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "currency_id", "rate", "base_currency", "source", "active", "updated_at"},
		).AddRow(uuid.New(), currencyID, rate, "USD", "coingecko", true, updatedAt))

	result, err := repo.GetActiveRate(context.Background(), currencyID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, rate.Equal(result.Rate))
	assert.Equal(t, "USD", result.BaseCurrency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepo_UpsertRateFlow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)
	currencyID := uuid.New()
	rate := &domain.ExchangeRate{
		ID:           uuid.New(),
		CurrencyID:   currencyID,
		Rate:         decimal.RequireFromString("61000"),
		BaseCurrency: "USD",
		Source:       "coingecko",
		Active:       true,
		UpdatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE exchange_rates SET active").
		WithArgs(currencyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO exchange_rates").
		WithArgs(rate.ID, rate.CurrencyID, rate.Rate, rate.BaseCurrency,
			rate.Source, rate.Active, rate.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.DeactivateRates(ctx, tx, currencyID))
	require.NoError(t, repo.InsertRate(ctx, tx, rate))
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepo_ListNetworks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)
	networkID := uuid.New()
	btcID := uuid.New()
	rateID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)
	rate := decimal.RequireFromString("60000")

	cols := []string{
		"n_id", "n_name", "n_display_name", "n_chain_id", "n_testnet", "n_confirmations", "n_block_time_sec", "n_created_at",
		"c_id", "c_network_id", "c_symbol", "c_name", "c_native", "c_contract_address", "c_decimals", "c_active", "c_created_at",
		"r_id", "r_currency_id", "r_rate", "r_base_currency", "r_source", "r_active", "r_updated_at",
	}
	contract := (*string)(nil)
	rows := pgxmock.NewRows(cols).AddRow(
		networkID, domain.NetworkBitcoin, "Bitcoin", int64(0), false, 2, 600, now,
		&btcID, &networkID, strPtr("BTC"), strPtr("Bitcoin"), boolPtr(true), contract, intPtr(8), boolPtr(true), &now,
		&rateID, &btcID, &rate, strPtr("USD"), strPtr("coingecko"), boolPtr(true), &now,
	)

	// The ORDER BY is part of the contract: listing follows insertion order,
	// not symbol order.
	mock.ExpectQuery(`(?s)SELECT .+ FROM networks n.+ORDER BY n\.created_at ASC, n\.id ASC, c\.created_at ASC, c\.id ASC`).
		WillReturnRows(rows)

	networks, err := repo.ListNetworks(context.Background())
	require.NoError(t, err)
	require.Len(t, networks, 1)
	assert.Equal(t, domain.NetworkBitcoin, networks[0].Network.Name)
	require.Len(t, networks[0].Currencies, 1)
	assert.Equal(t, "BTC", networks[0].Currencies[0].Symbol)
	require.NotNil(t, networks[0].Currencies[0].LatestRate)
	assert.True(t, rate.Equal(networks[0].Currencies[0].LatestRate.Rate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
