package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crypto-payment-gateway/internal/core/domain"
	"crypto-payment-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, merchant_id, wallet_id, tx_hash, reference, amount, type, status,
		from_address, to_address, network, coin, block_number, gas_used, gas_price, created_at, processed_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.MerchantID, &t.WalletID, &t.TxHash, &t.Reference,
		&t.Amount, &t.Type, &t.Status, &t.FromAddress, &t.ToAddress,
		&t.Network, &t.Coin, &t.BlockNumber, &t.GasUsed, &t.GasPrice,
		&t.CreatedAt, &t.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new transaction into the database.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, merchant_id, wallet_id, tx_hash, reference, amount, type, status,
		from_address, to_address, network, coin, block_number, gas_used, gas_price, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.MerchantID, t.WalletID, t.TxHash, t.Reference,
		t.Amount, t.Type, t.Status, t.FromAddress, t.ToAddress,
		t.Network, t.Coin, t.BlockNumber, t.GasUsed, t.GasPrice,
		t.CreatedAt, t.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by its UUID (without locking).
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// GetByReference fetches a merchant's transaction by its reference.
func (r *TransactionRepo) GetByReference(ctx context.Context, merchantID uuid.UUID, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE merchant_id = $1 AND reference = $2`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, merchantID, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by reference: %w", err)
	}
	return t, nil
}

// GetByIDForUpdate fetches a transaction by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	t, err := scanTransaction(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction for update: %w", err)
	}
	return t, nil
}

// SettleIfPending moves a transaction to a terminal status only if it is
// still PENDING. The status guard in the WHERE clause makes the write a
// compare-and-swap; RowsAffected tells the caller whether it won.
func (r *TransactionRepo) SettleIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, meta *domain.BlockMeta, processedAt time.Time) (bool, error) {
	query := `UPDATE transactions
		SET status = $1, tx_hash = $2, block_number = $3, gas_used = $4, gas_price = $5, processed_at = $6
		WHERE id = $7 AND status = 'PENDING'`

	var txHash, gasPrice any
	var blockNumber, gasUsed any
	if meta != nil {
		txHash = meta.TxHash
		blockNumber = meta.BlockNumber
		gasUsed = meta.GasUsed
		gasPrice = meta.GasPrice
	}

	tag, err := tx.Exec(ctx, query, status, txHash, blockNumber, gasUsed, gasPrice, processedAt, id)
	if err != nil {
		return false, fmt.Errorf("settle transaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List fetches a merchant's transactions with optional filters, newest first.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	where := []string{"merchant_id = $1"}
	args := []any{params.MerchantID}

	if params.Status != nil {
		args = append(args, *params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Type != nil {
		args = append(args, *params.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if params.From != nil {
		args = append(args, time.Unix(*params.From, 0).UTC())
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if params.To != nil {
		args = append(args, time.Unix(*params.To, 0).UTC())
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)
	listQuery := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.MerchantID, &t.WalletID, &t.TxHash, &t.Reference,
			&t.Amount, &t.Type, &t.Status, &t.FromAddress, &t.ToAddress,
			&t.Network, &t.Coin, &t.BlockNumber, &t.GasUsed, &t.GasPrice,
			&t.CreatedAt, &t.ProcessedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, total, nil
}
