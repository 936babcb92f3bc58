package implementation

import (
	"context"
	"fmt"
	"time"

	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/pkg/kvstore"
)

const (
	DedupKeyPrefix = "notify_dedupe:"
	DedupTTL       = 48 * time.Hour
)

type DedupRepositoryImpl struct {
	store kvstore.Store
	ttl   time.Duration
}

func NewDedupRepository(store kvstore.Store) contract.DedupRepository {
	return &DedupRepositoryImpl{store: store, ttl: DedupTTL}
}

func (r *DedupRepositoryImpl) CheckAndMark(ctx context.Context, subscriptionId, bucketKey string) (bool, error) {
	key := fmt.Sprintf("%s%s:%s", DedupKeyPrefix, subscriptionId, bucketKey)
	written, err := r.store.PutIfAbsent(ctx, key, []byte(`"1"`), r.ttl)
	if err != nil {
		return false, fmt.Errorf("dedupe %s: %w", key, err)
	}
	return !written, nil
}
