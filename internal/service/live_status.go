package service

import (
	"context"

	"subscription-tracker-be/internal/entity"
)

// SchedulerStatusEvent is the live feed event type for a finished pass.
const SchedulerStatusEvent = "scheduler_status"

// StatusBroadcaster pushes events to connected dashboards.
type StatusBroadcaster interface {
	Broadcast(eventType string, data interface{})
}

type broadcastingScheduler struct {
	ISchedulerService
	broadcaster StatusBroadcaster
}

// WithStatusBroadcast announces every finished pass on broadcaster.
func WithStatusBroadcast(next ISchedulerService, broadcaster StatusBroadcaster) ISchedulerService {
	if broadcaster == nil {
		return next
	}
	return &broadcastingScheduler{ISchedulerService: next, broadcaster: broadcaster}
}

func (s *broadcastingScheduler) RunOnce(ctx context.Context, source string) *entity.SchedulerRunStatus {
	status := s.ISchedulerService.RunOnce(ctx, source)
	if status != nil {
		s.broadcaster.Broadcast(SchedulerStatusEvent, status)
	}
	return status
}
