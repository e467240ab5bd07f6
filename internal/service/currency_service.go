package service

import (
	"context"
	"encoding/json"
	"time"

	"crypto-payment-gateway/internal/core/domain"
	"crypto-payment-gateway/internal/core/ports"
	"crypto-payment-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// conversionScale is the number of decimal places kept on a conversion
// result. 18 covers the smallest subunit of every supported chain.
const conversionScale = 18

// rateCacheTTL bounds how stale a cached exchange rate can be.
const rateCacheTTL = 30 * time.Second

// CurrencyServiceImpl implements ports.CurrencyService.
type CurrencyServiceImpl struct {
	currencyRepo ports.CurrencyRepository
	transactor   ports.DBTransactor
	rateCache    ports.RateCache
	auditSvc     ports.AuditService
	baseCurrency string
	log          zerolog.Logger
}

// NewCurrencyService creates a new CurrencyServiceImpl. baseCurrency is the
// fiat anchor all rates are quoted against, typically USD.
func NewCurrencyService(
	currencyRepo ports.CurrencyRepository,
	transactor ports.DBTransactor,
	rateCache ports.RateCache,
	auditSvc ports.AuditService,
	baseCurrency string,
	log zerolog.Logger,
) *CurrencyServiceImpl {
	return &CurrencyServiceImpl{
		currencyRepo: currencyRepo,
		transactor:   transactor,
		rateCache:    rateCache,
		auditSvc:     auditSvc,
		baseCurrency: baseCurrency,
		log:          log,
	}
}

// ListNetworks returns every network with its currencies and latest rates.
func (s *CurrencyServiceImpl) ListNetworks(ctx context.Context) ([]domain.NetworkCurrencies, error) {
	networks, err := s.currencyRepo.ListNetworks(ctx)
	if err != nil {
		return nil, apperror.Unexpected("list networks", err)
	}
	return networks, nil
}

// FindCurrency looks up a currency by network and symbol. Symbol matching is
// case-insensitive.
func (s *CurrencyServiceImpl) FindCurrency(ctx context.Context, network domain.Network, symbol string) (*domain.Currency, error) {
	if !network.Known() {
		return nil, apperror.ErrUnsupportedCurrency(string(network), symbol)
	}
	currency, err := s.currencyRepo.FindCurrency(ctx, network, symbol)
	if err != nil {
		return nil, apperror.Unexpected("find currency", err)
	}
	if currency == nil || !currency.Active {
		return nil, apperror.ErrUnsupportedCurrency(string(network), symbol)
	}
	return currency, nil
}

// Convert translates an amount between two currencies through the common base
// currency. Both legs must have an active rate quoted in the same base.
func (s *CurrencyServiceImpl) Convert(ctx context.Context, amount string, fromCurrencyID, toCurrencyID uuid.UUID) (*domain.Conversion, error) {
	value, ok := domain.ParseAmount(amount)
	if !ok {
		return nil, apperror.ErrInvalidAmount()
	}

	from, err := s.currencyRepo.GetCurrencyByID(ctx, fromCurrencyID)
	if err != nil {
		return nil, apperror.Unexpected("get source currency", err)
	}
	if from == nil || !from.Active {
		return nil, apperror.ErrNotFound("currency")
	}

	to, err := s.currencyRepo.GetCurrencyByID(ctx, toCurrencyID)
	if err != nil {
		return nil, apperror.Unexpected("get target currency", err)
	}
	if to == nil || !to.Active {
		return nil, apperror.ErrNotFound("currency")
	}

	fromRate, err := s.activeRate(ctx, fromCurrencyID)
	if err != nil {
		return nil, err
	}
	if fromRate == nil {
		return nil, apperror.ErrConversion("no active rate for " + from.Symbol)
	}

	toRate, err := s.activeRate(ctx, toCurrencyID)
	if err != nil {
		return nil, err
	}
	if toRate == nil {
		return nil, apperror.ErrConversion("no active rate for " + to.Symbol)
	}

	if fromRate.BaseCurrency != toRate.BaseCurrency {
		return nil, apperror.ErrConversion("rates quoted in different base currencies")
	}
	if toRate.Rate.IsZero() {
		return nil, apperror.ErrConversion("target rate is zero")
	}

	converted := value.Mul(fromRate.Rate).DivRound(toRate.Rate, conversionScale)

	rateTS := fromRate.UpdatedAt
	if toRate.UpdatedAt.Before(rateTS) {
		rateTS = toRate.UpdatedAt
	}

	return &domain.Conversion{
		FromCurrencyID: fromCurrencyID,
		ToCurrencyID:   toCurrencyID,
		Amount:         value,
		Converted:      converted,
		BaseCurrency:   fromRate.BaseCurrency,
		RateTimestamp:  rateTS,
	}, nil
}

// UpsertRate replaces the active rate for a currency. The previous rate rows
// are deactivated rather than deleted so conversions stay auditable.
func (s *CurrencyServiceImpl) UpsertRate(ctx context.Context, currencyID uuid.UUID, rate decimal.Decimal, source string) error {
	if !rate.IsPositive() {
		return apperror.ErrInvalidAmount()
	}

	currency, err := s.currencyRepo.GetCurrencyByID(ctx, currencyID)
	if err != nil {
		return apperror.Unexpected("get currency", err)
	}
	if currency == nil {
		return apperror.ErrNotFound("currency")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.Unexpected("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.currencyRepo.DeactivateRates(ctx, dbTx, currencyID); err != nil {
		return apperror.Unexpected("deactivate rates", err)
	}

	now := time.Now().UTC()
	newRate := &domain.ExchangeRate{
		ID:           uuid.New(),
		CurrencyID:   currencyID,
		Rate:         rate,
		BaseCurrency: s.baseCurrency,
		Source:       source,
		Active:       true,
		UpdatedAt:    now,
	}
	if err := s.currencyRepo.InsertRate(ctx, dbTx, newRate); err != nil {
		return apperror.Unexpected("insert rate", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.Unexpected("commit tx", err)
	}

	// Cache invalidation is best effort. A miss on the next read refills it.
	if s.rateCache != nil {
		if err := s.rateCache.Del(ctx, rateCacheKey(currencyID)); err != nil {
			s.log.Warn().Err(err).Str("currency_id", currencyID.String()).Msg("rate cache invalidation failed")
		}
	}

	if s.auditSvc != nil {
		s.auditSvc.Log(ctx, &domain.AuditLog{
			ID:           uuid.New(),
			Action:       domain.AuditActionRateUpsert,
			ResourceType: "exchange_rate",
			ResourceID:   currencyID.String(),
			Details:      `{"rate":"` + rate.String() + `","source":"` + source + `"}`,
			CreatedAt:    now,
		})
	}

	s.log.Info().
		Str("currency", currency.Symbol).
		Str("rate", rate.String()).
		Str("source", source).
		Msg("exchange rate updated")

	return nil
}

// activeRate fetches the active rate for a currency, consulting the cache
// first. Cache failures degrade to the database instead of failing the call.
func (s *CurrencyServiceImpl) activeRate(ctx context.Context, currencyID uuid.UUID) (*domain.ExchangeRate, error) {
	key := rateCacheKey(currencyID)

	if s.rateCache != nil {
		if cached, err := s.rateCache.Get(ctx, key); err == nil && cached != nil {
			var rate domain.ExchangeRate
			if err := json.Unmarshal(cached, &rate); err == nil {
				return &rate, nil
			}
		}
	}

	rate, err := s.currencyRepo.GetActiveRate(ctx, currencyID)
	if err != nil {
		return nil, apperror.Unexpected("get active rate", err)
	}
	if rate == nil {
		return nil, nil
	}

	if s.rateCache != nil {
		if encoded, err := json.Marshal(rate); err == nil {
			if err := s.rateCache.Set(ctx, key, encoded, rateCacheTTL); err != nil {
				s.log.Warn().Err(err).Str("currency_id", currencyID.String()).Msg("rate cache write failed")
			}
		}
	}

	return rate, nil
}

func rateCacheKey(currencyID uuid.UUID) string {
	return "rate:" + currencyID.String()
}
