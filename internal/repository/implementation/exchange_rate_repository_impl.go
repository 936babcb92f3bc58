package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/pkg/currency"
	"subscription-tracker-be/pkg/kvstore"
)

const (
	ExchangeRatesKey = "exchange_rates"
	ExchangeRatesTTL = 24 * time.Hour
)

type ExchangeRateRepositoryImpl struct {
	store kvstore.Store
}

func NewExchangeRateRepository(store kvstore.Store) contract.ExchangeRateRepository {
	return &ExchangeRateRepositoryImpl{store: store}
}

func (r *ExchangeRateRepositoryImpl) Get(ctx context.Context) (currency.Rates, error) {
	var rates currency.Rates
	err := kvstore.GetJSON(ctx, r.store, ExchangeRatesKey, &rates)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load exchange rates: %w", err)
	}
	return rates, nil
}

func (r *ExchangeRateRepositoryImpl) Save(ctx context.Context, rates currency.Rates) error {
	if err := kvstore.PutJSON(ctx, r.store, ExchangeRatesKey, rates, ExchangeRatesTTL); err != nil {
		return fmt.Errorf("save exchange rates: %w", err)
	}
	return nil
}
