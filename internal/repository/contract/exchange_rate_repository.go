package contract

import (
	"context"

	"subscription-tracker-be/pkg/currency"
)

type ExchangeRateRepository interface {
	// Get returns nil rates when nothing live is cached.
	Get(ctx context.Context) (currency.Rates, error)
	Save(ctx context.Context, rates currency.Rates) error
}
