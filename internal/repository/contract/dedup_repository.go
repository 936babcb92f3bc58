package contract

import "context"

type DedupRepository interface {
	// CheckAndMark reports whether a marker for (subscriptionId, bucketKey)
	// already existed, writing one when it did not.
	CheckAndMark(ctx context.Context, subscriptionId, bucketKey string) (bool, error)
}
