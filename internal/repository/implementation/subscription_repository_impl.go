package implementation

import (
	"context"
	"errors"
	"fmt"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/pkg/kvstore"
)

const SubscriptionsKey = "subscriptions"

type SubscriptionRepositoryImpl struct {
	store kvstore.Store
}

func NewSubscriptionRepository(store kvstore.Store) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{store: store}
}

func (r *SubscriptionRepositoryImpl) FindAll(ctx context.Context) ([]entity.Subscription, error) {
	var subs []entity.Subscription
	err := kvstore.GetJSON(ctx, r.store, SubscriptionsKey, &subs)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []entity.Subscription{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	if subs == nil {
		subs = []entity.Subscription{}
	}
	return subs, nil
}

func (r *SubscriptionRepositoryImpl) SaveAll(ctx context.Context, subscriptions []entity.Subscription) error {
	if subscriptions == nil {
		subscriptions = []entity.Subscription{}
	}
	if err := kvstore.PutJSON(ctx, r.store, SubscriptionsKey, subscriptions, 0); err != nil {
		return fmt.Errorf("save subscriptions: %w", err)
	}
	return nil
}
