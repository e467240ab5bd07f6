package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"crypto-payment-gateway/internal/core/domain"
	"crypto-payment-gateway/internal/core/ports/mocks"
	"crypto-payment-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type currencyTestDeps struct {
	svc          *CurrencyServiceImpl
	currencyRepo *mocks.MockCurrencyRepository
	transactor   *mocks.MockDBTransactor
	rateCache    *mocks.MockRateCache
	auditSvc     *mocks.MockAuditService
	ctrl         *gomock.Controller
}

func setupCurrencyService(t *testing.T) *currencyTestDeps {
	ctrl := gomock.NewController(t)
	d := &currencyTestDeps{
		currencyRepo: mocks.NewMockCurrencyRepository(ctrl),
		transactor:   mocks.NewMockDBTransactor(ctrl),
		rateCache:    mocks.NewMockRateCache(ctrl),
		auditSvc:     mocks.NewMockAuditService(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewCurrencyService(d.currencyRepo, d.transactor, d.rateCache, d.auditSvc, "USD", zerolog.Nop())
	return d
}

func activeCurrency(symbol string) *domain.Currency {
	return &domain.Currency{ID: uuid.New(), Symbol: symbol, Active: true}
}

func usdRate(currencyID uuid.UUID, rate string) *domain.ExchangeRate {
	return &domain.ExchangeRate{
		ID:           uuid.New(),
		CurrencyID:   currencyID,
		Rate:         decimal.RequireFromString(rate),
		BaseCurrency: "USD",
		Source:       "test",
		Active:       true,
		UpdatedAt:    time.Now().UTC(),
	}
}

func TestCurrencyService_Convert_BTCToETH(t *testing.T) {
	d := setupCurrencyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	btc := activeCurrency("BTC")
	eth := activeCurrency("ETH")

	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, btc.ID).Return(btc, nil)
	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, eth.ID).Return(eth, nil)

	// Cache misses, then database reads and cache refills.
	d.rateCache.EXPECT().Get(ctx, "rate:"+btc.ID.String()).Return(nil, nil)
	d.currencyRepo.EXPECT().GetActiveRate(ctx, btc.ID).Return(usdRate(btc.ID, "60000"), nil)
	d.rateCache.EXPECT().Set(ctx, "rate:"+btc.ID.String(), gomock.Any(), rateCacheTTL).Return(nil)
	d.rateCache.EXPECT().Get(ctx, "rate:"+eth.ID.String()).Return(nil, nil)
	d.currencyRepo.EXPECT().GetActiveRate(ctx, eth.ID).Return(usdRate(eth.ID, "3000"), nil)
	d.rateCache.EXPECT().Set(ctx, "rate:"+eth.ID.String(), gomock.Any(), rateCacheTTL).Return(nil)

	conv, err := d.svc.Convert(ctx, "1", btc.ID, eth.ID)
	require.NoError(t, err)

	assert.True(t, conv.Converted.Equal(decimal.RequireFromString("20")), "got %s", conv.Converted)
	assert.Equal(t, "USD", conv.BaseCurrency)
}

func TestCurrencyService_Convert_UsesCachedRate(t *testing.T) {
	d := setupCurrencyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	btc := activeCurrency("BTC")
	eth := activeCurrency("ETH")

	btcRate, _ := json.Marshal(usdRate(btc.ID, "50000"))
	ethRate, _ := json.Marshal(usdRate(eth.ID, "2500"))

	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, btc.ID).Return(btc, nil)
	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, eth.ID).Return(eth, nil)
	d.rateCache.EXPECT().Get(ctx, "rate:"+btc.ID.String()).Return(btcRate, nil)
	d.rateCache.EXPECT().Get(ctx, "rate:"+eth.ID.String()).Return(ethRate, nil)

	conv, err := d.svc.Convert(ctx, "2", btc.ID, eth.ID)
	require.NoError(t, err)
	assert.True(t, conv.Converted.Equal(decimal.RequireFromString("40")), "got %s", conv.Converted)
}

func TestCurrencyService_Convert_RoundTripStaysWithinTolerance(t *testing.T) {
	d := setupCurrencyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	btc := activeCurrency("BTC")
	eth := activeCurrency("ETH")

	// Rates that do not divide evenly, so the forward leg actually rounds.
	btcRate, _ := json.Marshal(usdRate(btc.ID, "60000"))
	ethRate, _ := json.Marshal(usdRate(eth.ID, "2923.77"))

	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, btc.ID).Return(btc, nil).Times(2)
	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, eth.ID).Return(eth, nil).Times(2)
	d.rateCache.EXPECT().Get(ctx, "rate:"+btc.ID.String()).Return(btcRate, nil).Times(2)
	d.rateCache.EXPECT().Get(ctx, "rate:"+eth.ID.String()).Return(ethRate, nil).Times(2)

	original := decimal.RequireFromString("1.23")

	forward, err := d.svc.Convert(ctx, original.String(), btc.ID, eth.ID)
	require.NoError(t, err)

	back, err := d.svc.Convert(ctx, forward.Converted.String(), eth.ID, btc.ID)
	require.NoError(t, err)

	// Each leg rounds to conversionScale places, so the round trip can drift
	// by at most a few units in the last place.
	tolerance := decimal.New(1, -conversionScale+2)
	diff := back.Converted.Sub(original).Abs()
	assert.True(t, diff.LessThanOrEqual(tolerance),
		"round trip drifted: sent %s, got back %s (diff %s)", original, back.Converted, diff)
}

func TestCurrencyService_Convert_InvalidAmount(t *testing.T) {
	d := setupCurrencyService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Convert(context.Background(), "-3", uuid.New(), uuid.New())

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_002", appErr.Code)
}

func TestCurrencyService_Convert_NoActiveRate(t *testing.T) {
	d := setupCurrencyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	btc := activeCurrency("BTC")
	eth := activeCurrency("ETH")

	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, btc.ID).Return(btc, nil)
	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, eth.ID).Return(eth, nil)
	d.rateCache.EXPECT().Get(ctx, "rate:"+btc.ID.String()).Return(nil, nil)
	d.currencyRepo.EXPECT().GetActiveRate(ctx, btc.ID).Return(nil, nil)

	_, err := d.svc.Convert(ctx, "1", btc.ID, eth.ID)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CUR_002", appErr.Code)
}

func TestCurrencyService_Convert_BaseMismatch(t *testing.T) {
	d := setupCurrencyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	btc := activeCurrency("BTC")
	eth := activeCurrency("ETH")

	eur := usdRate(eth.ID, "2800")
	eur.BaseCurrency = "EUR"

	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, btc.ID).Return(btc, nil)
	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, eth.ID).Return(eth, nil)
	d.rateCache.EXPECT().Get(ctx, "rate:"+btc.ID.String()).Return(nil, nil)
	d.currencyRepo.EXPECT().GetActiveRate(ctx, btc.ID).Return(usdRate(btc.ID, "60000"), nil)
	d.rateCache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), rateCacheTTL).Return(nil)
	d.rateCache.EXPECT().Get(ctx, "rate:"+eth.ID.String()).Return(nil, nil)
	d.currencyRepo.EXPECT().GetActiveRate(ctx, eth.ID).Return(eur, nil)
	d.rateCache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), rateCacheTTL).Return(nil)

	_, err := d.svc.Convert(ctx, "1", btc.ID, eth.ID)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CUR_002", appErr.Code)
}

func TestCurrencyService_UpsertRate_Success(t *testing.T) {
	d := setupCurrencyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	btc := activeCurrency("BTC")
	tx := &mockTx{}
	rate := decimal.RequireFromString("61234.5")

	d.currencyRepo.EXPECT().GetCurrencyByID(ctx, btc.ID).Return(btc, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.currencyRepo.EXPECT().DeactivateRates(ctx, tx, btc.ID).Return(nil)
	d.currencyRepo.EXPECT().InsertRate(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ interface{}, r *domain.ExchangeRate) error {
			assert.True(t, r.Rate.Equal(rate))
			assert.Equal(t, "USD", r.BaseCurrency)
			assert.Equal(t, "coingecko", r.Source)
			assert.True(t, r.Active)
			return nil
		})
	d.rateCache.EXPECT().Del(ctx, "rate:"+btc.ID.String()).Return(nil)
	d.auditSvc.EXPECT().Log(ctx, gomock.Any())

	err := d.svc.UpsertRate(ctx, btc.ID, rate, "coingecko")
	require.NoError(t, err)
}

func TestCurrencyService_UpsertRate_NonPositive(t *testing.T) {
	d := setupCurrencyService(t)
	defer d.ctrl.Finish()

	err := d.svc.UpsertRate(context.Background(), uuid.New(), decimal.Zero, "coingecko")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_002", appErr.Code)
}

func TestCurrencyService_FindCurrency_Unsupported(t *testing.T) {
	d := setupCurrencyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.currencyRepo.EXPECT().FindCurrency(ctx, domain.NetworkBitcoin, "XYZ").Return(nil, nil)

	_, err := d.svc.FindCurrency(ctx, domain.NetworkBitcoin, "XYZ")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CUR_001", appErr.Code)
}

func TestCurrencyService_ListNetworks(t *testing.T) {
	d := setupCurrencyService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	networks := []domain.NetworkCurrencies{
		{Network: domain.NetworkInfo{Name: domain.NetworkBitcoin}},
		{Network: domain.NetworkInfo{Name: domain.NetworkEthereum}},
	}
	d.currencyRepo.EXPECT().ListNetworks(ctx).Return(networks, nil)

	got, err := d.svc.ListNetworks(ctx)
	require.NoError(t, err)
	assert.Equal(t, networks, got)
}
