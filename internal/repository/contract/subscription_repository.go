package contract

import (
	"context"

	"subscription-tracker-be/internal/entity"
)

// SubscriptionRepository reads and writes the whole subscription collection
// as a single document.
type SubscriptionRepository interface {
	FindAll(ctx context.Context) ([]entity.Subscription, error)
	SaveAll(ctx context.Context, subscriptions []entity.Subscription) error
}
