package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"crypto-payment-gateway/internal/core/domain"
	"crypto-payment-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.merchants {
		if existing.Email == m.Email {
			return fmt.Errorf("email already exists")
		}
	}
	r.merchants[m.ID] = m
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	return m, nil
}

func (r *inMemoryMerchantRepo) GetByPublicID(ctx context.Context, publicID string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.PublicID == publicID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) GetByEmail(ctx context.Context, email string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MerchantStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[id]
	if !ok {
		return fmt.Errorf("merchant not found")
	}
	m.Status = status
	m.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wallets {
		if existing.Address == w.Address {
			return fmt.Errorf("address already exists")
		}
	}
	r.wallets[w.ID] = w
	return nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	return w, nil
}

func (r *inMemoryWalletRepo) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.Address == address {
			return w, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Wallet
	for _, w := range r.wallets {
		if w.MerchantID == merchantID {
			result = append(result, *w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Balance = balance
	w.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[t.ID] = t
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByReference(ctx context.Context, merchantID uuid.UUID, reference string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.MerchantID == merchantID && t.Reference == reference {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryTransactionRepo) SettleIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, meta *domain.BlockMeta, processedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return false, fmt.Errorf("transaction not found")
	}
	if t.Status != domain.TransactionStatusPending {
		return false, nil
	}
	t.Status = status
	t.ProcessedAt = &processedAt
	if meta != nil {
		hash := meta.TxHash
		block := meta.BlockNumber
		gas := meta.GasUsed
		price := meta.GasPrice
		t.TxHash = &hash
		t.BlockNumber = &block
		t.GasUsed = &gas
		t.GasPrice = &price
	}
	return true, nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.MerchantID != params.MerchantID {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		if params.From != nil && t.CreatedAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && t.CreatedAt.Unix() > *params.To {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))

	// Simple pagination
	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

// --- In-Memory Currency Repo ---

// Networks and currencies are slices, not maps: listing must follow
// insertion order the way the postgres repo's ORDER BY created_at, id does,
// and map iteration would shuffle it.
type inMemoryCurrencyRepo struct {
	mu         sync.RWMutex
	networks   []domain.NetworkInfo
	currencies []*domain.Currency
	rates      map[uuid.UUID][]*domain.ExchangeRate
}

func newInMemoryCurrencyRepo() *inMemoryCurrencyRepo {
	return &inMemoryCurrencyRepo{
		rates: make(map[uuid.UUID][]*domain.ExchangeRate),
	}
}

func (r *inMemoryCurrencyRepo) addNetwork(n domain.NetworkInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.networks = append(r.networks, n)
}

func (r *inMemoryCurrencyRepo) addCurrency(c *domain.Currency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currencies = append(r.currencies, c)
}

func (r *inMemoryCurrencyRepo) ListNetworks(ctx context.Context) ([]domain.NetworkCurrencies, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.NetworkCurrencies, 0, len(r.networks))
	for _, n := range r.networks {
		entry := domain.NetworkCurrencies{Network: n}
		for _, c := range r.currencies {
			if c.NetworkID != n.ID || !c.Active {
				continue
			}
			cwr := domain.CurrencyWithRate{Currency: *c}
			if rate := r.latestActiveRate(c.ID); rate != nil {
				cp := *rate
				cwr.LatestRate = &cp
			}
			entry.Currencies = append(entry.Currencies, cwr)
		}
		result = append(result, entry)
	}
	return result, nil
}

func (r *inMemoryCurrencyRepo) FindCurrency(ctx context.Context, network domain.Network, symbol string) (*domain.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var netID uuid.UUID
	found := false
	for _, n := range r.networks {
		if n.Name == network {
			netID = n.ID
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}
	for _, c := range r.currencies {
		if c.NetworkID == netID && strings.EqualFold(c.Symbol, symbol) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryCurrencyRepo) GetCurrencyByID(ctx context.Context, id uuid.UUID) (*domain.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.currencies {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryCurrencyRepo) GetActiveRate(ctx context.Context, currencyID uuid.UUID) (*domain.ExchangeRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rate := r.latestActiveRate(currencyID)
	if rate == nil {
		return nil, nil
	}
	cp := *rate
	return &cp, nil
}

func (r *inMemoryCurrencyRepo) latestActiveRate(currencyID uuid.UUID) *domain.ExchangeRate {
	var latest *domain.ExchangeRate
	for _, rate := range r.rates[currencyID] {
		if !rate.Active {
			continue
		}
		if latest == nil || rate.UpdatedAt.After(latest.UpdatedAt) {
			latest = rate
		}
	}
	return latest
}

func (r *inMemoryCurrencyRepo) DeactivateRates(ctx context.Context, tx pgx.Tx, currencyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rate := range r.rates[currencyID] {
		rate.Active = false
	}
	return nil
}

func (r *inMemoryCurrencyRepo) InsertRate(ctx context.Context, tx pgx.Tx, rate *domain.ExchangeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rate
	r.rates[rate.CurrencyID] = append(r.rates[rate.CurrencyID], &cp)
	return nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes transactions with a single mutex. This stands
// in for the row locks the postgres repos take with SELECT ... FOR UPDATE:
// two settlements touching the same wallet never interleave their
// read-modify-write of the balance.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	tx := &noopTx{}
	tx.release = func() { t.mu.Unlock() }
	return tx, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing. The release
// hook runs exactly once: services defer Rollback after a successful Commit.
type noopTx struct {
	release func()
	once    sync.Once
}

func (t *noopTx) done() {
	if t.release != nil {
		t.once.Do(t.release)
	}
}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
