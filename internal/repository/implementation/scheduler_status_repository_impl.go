package implementation

import (
	"context"
	"errors"
	"fmt"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/pkg/kvstore"
)

const (
	SchedulerStatusKey        = "scheduler_status"
	SchedulerStatusHistoryKey = "scheduler_status_history"
)

type SchedulerStatusRepositoryImpl struct {
	store kvstore.Store
	limit int
}

func NewSchedulerStatusRepository(store kvstore.Store) contract.SchedulerStatusRepository {
	return &SchedulerStatusRepositoryImpl{store: store, limit: entity.SchedulerHistoryLimit}
}

func (r *SchedulerStatusRepositoryImpl) Save(ctx context.Context, status *entity.SchedulerRunStatus) error {
	if err := kvstore.PutJSON(ctx, r.store, SchedulerStatusKey, status, 0); err != nil {
		return fmt.Errorf("save scheduler status: %w", err)
	}

	// an unreadable history is replaced rather than blocking the new entry
	history, err := r.History(ctx)
	if err != nil {
		history = nil
	}
	next := make([]entity.SchedulerRunStatus, 0, r.limit)
	next = append(next, *status)
	for _, h := range history {
		if len(next) >= r.limit {
			break
		}
		next = append(next, h)
	}
	if err := kvstore.PutJSON(ctx, r.store, SchedulerStatusHistoryKey, next, 0); err != nil {
		return fmt.Errorf("save scheduler history: %w", err)
	}
	return nil
}

func (r *SchedulerStatusRepositoryImpl) Latest(ctx context.Context) (*entity.SchedulerRunStatus, error) {
	var status entity.SchedulerRunStatus
	err := kvstore.GetJSON(ctx, r.store, SchedulerStatusKey, &status)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load scheduler status: %w", err)
	}
	return &status, nil
}

func (r *SchedulerStatusRepositoryImpl) History(ctx context.Context) ([]entity.SchedulerRunStatus, error) {
	var history []entity.SchedulerRunStatus
	err := kvstore.GetJSON(ctx, r.store, SchedulerStatusHistoryKey, &history)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []entity.SchedulerRunStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load scheduler history: %w", err)
	}
	return history, nil
}
