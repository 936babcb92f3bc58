package contract

import (
	"context"

	"subscription-tracker-be/internal/entity"
)

type SchedulerStatusRepository interface {
	// Save stores status as the latest run and prepends it to the history.
	Save(ctx context.Context, status *entity.SchedulerRunStatus) error
	Latest(ctx context.Context) (*entity.SchedulerRunStatus, error)
	History(ctx context.Context) ([]entity.SchedulerRunStatus, error)
}
