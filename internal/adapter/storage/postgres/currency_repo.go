package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CurrencyRepo implements ports.CurrencyRepository over the networks,
// currencies and exchange_rates tables.
type CurrencyRepo struct {
	pool Pool
}

// NewCurrencyRepo creates a new CurrencyRepo.
func NewCurrencyRepo(pool Pool) *CurrencyRepo {
	return &CurrencyRepo{pool: pool}
}

const currencyColumns = `id, network_id, symbol, name, native, contract_address, decimals, active, created_at`

func scanCurrency(row pgx.Row) (*domain.Currency, error) {
	c := &domain.Currency{}
	err := row.Scan(
		&c.ID, &c.NetworkID, &c.Symbol, &c.Name, &c.Native,
		&c.ContractAddress, &c.Decimals, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListNetworks returns every network with its active currencies and each
// currency's latest active rate. A single joined query avoids N+1 round
// trips; the LEFT JOINs produce NULL currency and rate columns for networks
// without entries. Networks and currencies come back in insertion order
// (created_at, with id as the tiebreak for equal timestamps), so repeated
// calls always list them the same way.
func (r *CurrencyRepo) ListNetworks(ctx context.Context) ([]domain.NetworkCurrencies, error) {
	query := `SELECT
			n.id, n.name, n.display_name, n.chain_id, n.testnet, n.confirmations, n.block_time_sec, n.created_at,
			c.id, c.network_id, c.symbol, c.name, c.native, c.contract_address, c.decimals, c.active, c.created_at,
			r.id, r.currency_id, r.rate, r.base_currency, r.source, r.active, r.updated_at
		FROM networks n
		LEFT JOIN currencies c ON c.network_id = n.id AND c.active = TRUE
		LEFT JOIN exchange_rates r ON r.currency_id = c.id AND r.active = TRUE
		ORDER BY n.created_at ASC, n.id ASC, c.created_at ASC, c.id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	defer rows.Close()

	result := []domain.NetworkCurrencies{}
	index := map[uuid.UUID]int{}

	for rows.Next() {
		var n domain.NetworkInfo
		var (
			cID        *uuid.UUID
			cNetworkID *uuid.UUID
			cSymbol    *string
			cName      *string
			cNative    *bool
			cContract  *string
			cDecimals  *int
			cActive    *bool
			cCreatedAt *time.Time
		)
		var (
			rID         *uuid.UUID
			rCurrencyID *uuid.UUID
			rRate       *decimal.Decimal
			rBase       *string
			rSource     *string
			rActive     *bool
			rUpdatedAt  *time.Time
		)

		err := rows.Scan(
			&n.ID, &n.Name, &n.DisplayName, &n.ChainID, &n.Testnet, &n.Confirmations, &n.BlockTimeSec, &n.CreatedAt,
			&cID, &cNetworkID, &cSymbol, &cName, &cNative, &cContract, &cDecimals, &cActive, &cCreatedAt,
			&rID, &rCurrencyID, &rRate, &rBase, &rSource, &rActive, &rUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan network row: %w", err)
		}

		idx, ok := index[n.ID]
		if !ok {
			result = append(result, domain.NetworkCurrencies{Network: n, Currencies: []domain.CurrencyWithRate{}})
			idx = len(result) - 1
			index[n.ID] = idx
		}

		if cID == nil {
			continue
		}

		cwr := domain.CurrencyWithRate{Currency: domain.Currency{
			ID:              *cID,
			NetworkID:       *cNetworkID,
			Symbol:          *cSymbol,
			Name:            *cName,
			Native:          *cNative,
			ContractAddress: cContract,
			Decimals:        *cDecimals,
			Active:          *cActive,
			CreatedAt:       *cCreatedAt,
		}}
		if rID != nil {
			cwr.LatestRate = &domain.ExchangeRate{
				ID:           *rID,
				CurrencyID:   *rCurrencyID,
				Rate:         *rRate,
				BaseCurrency: *rBase,
				Source:       *rSource,
				Active:       *rActive,
				UpdatedAt:    *rUpdatedAt,
			}
		}
		result[idx].Currencies = append(result[idx].Currencies, cwr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate networks: %w", err)
	}
	return result, nil
}

// FindCurrency looks up a currency by network name and symbol. Symbol
// matching is case-insensitive.
func (r *CurrencyRepo) FindCurrency(ctx context.Context, network domain.Network, symbol string) (*domain.Currency, error) {
	query := `SELECT c.id, c.network_id, c.symbol, c.name, c.native, c.contract_address, c.decimals, c.active, c.created_at
		FROM currencies c
		JOIN networks n ON n.id = c.network_id
		WHERE n.name = $1 AND LOWER(c.symbol) = LOWER($2)`

	c, err := scanCurrency(r.pool.QueryRow(ctx, query, network, symbol))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find currency: %w", err)
	}
	return c, nil
}

// GetCurrencyByID fetches a currency by its UUID.
func (r *CurrencyRepo) GetCurrencyByID(ctx context.Context, id uuid.UUID) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE id = $1`

	c, err := scanCurrency(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get currency by id: %w", err)
	}
	return c, nil
}

// GetActiveRate fetches the single active rate for a currency.
func (r *CurrencyRepo) GetActiveRate(ctx context.Context, currencyID uuid.UUID) (*domain.ExchangeRate, error) {
	query := `SELECT id, currency_id, rate, base_currency, source, active, updated_at
		FROM exchange_rates WHERE currency_id = $1 AND active = TRUE
		ORDER BY updated_at DESC LIMIT 1`

	rate := &domain.ExchangeRate{}
	err := r.pool.QueryRow(ctx, query, currencyID).Scan(
		&rate.ID, &rate.CurrencyID, &rate.Rate, &rate.BaseCurrency,
		&rate.Source, &rate.Active, &rate.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active rate: %w", err)
	}
	return rate, nil
}

// DeactivateRates marks all active rates for a currency inactive.
// This MUST be called within a transaction.
func (r *CurrencyRepo) DeactivateRates(ctx context.Context, tx pgx.Tx, currencyID uuid.UUID) error {
	query := `UPDATE exchange_rates SET active = FALSE WHERE currency_id = $1 AND active = TRUE`

	if _, err := tx.Exec(ctx, query, currencyID); err != nil {
		return fmt.Errorf("deactivate rates: %w", err)
	}
	return nil
}

// InsertRate inserts a new exchange rate row.
// This MUST be called within a transaction.
func (r *CurrencyRepo) InsertRate(ctx context.Context, tx pgx.Tx, rate *domain.ExchangeRate) error {
	query := `INSERT INTO exchange_rates (id, currency_id, rate, base_currency, source, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		rate.ID, rate.CurrencyID, rate.Rate, rate.BaseCurrency,
		rate.Source, rate.Active, rate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rate: %w", err)
	}
	return nil
}
