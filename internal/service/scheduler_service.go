package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/notify"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/pkg/period"
	"subscription-tracker-be/pkg/reminder"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	SourceCron   = "cron"
	SourceManual = "manual"
	SourceTick   = "tick"
)

type ISchedulerService interface {
	// RunOnce executes one evaluation pass. It never fails; the outcome,
	// including any error, is in the returned and persisted status.
	RunOnce(ctx context.Context, source string) *entity.SchedulerRunStatus
	LatestStatus(ctx context.Context) (*entity.SchedulerRunStatus, error)
	History(ctx context.Context) ([]entity.SchedulerRunStatus, error)
}

type schedulerService struct {
	subscriptions contract.SubscriptionRepository
	settings      contract.SettingsRepository
	statuses      contract.SchedulerStatusRepository
	dedup         contract.DedupRepository
	dispatcher    notify.Dispatcher
	logger        logger.ILogger
	now           func() time.Time
}

func NewSchedulerService(
	subscriptions contract.SubscriptionRepository,
	settings contract.SettingsRepository,
	statuses contract.SchedulerStatusRepository,
	dedup contract.DedupRepository,
	dispatcher notify.Dispatcher,
	log logger.ILogger,
	clock func() time.Time,
) ISchedulerService {
	if clock == nil {
		clock = time.Now
	}
	return &schedulerService{
		subscriptions: subscriptions,
		settings:      settings,
		statuses:      statuses,
		dedup:         dedup,
		dispatcher:    dispatcher,
		logger:        log,
		now:           clock,
	}
}

func (s *schedulerService) LatestStatus(ctx context.Context) (*entity.SchedulerRunStatus, error) {
	return s.statuses.Latest(ctx)
}

func (s *schedulerService) History(ctx context.Context) ([]entity.SchedulerRunStatus, error) {
	return s.statuses.History(ctx)
}

func (s *schedulerService) RunOnce(ctx context.Context, source string) (status *entity.SchedulerRunStatus) {
	ctx, span := otel.Tracer("subscription-tracker/scheduler").Start(ctx, "scheduler.run")
	defer span.End()

	now := s.now()
	status = &entity.SchedulerRunStatus{
		LastRunAt:       now,
		Source:          source,
		Timezone:        "UTC",
		ConfiguredHours: []string{},
	}

	fail := func(err error) {
		status.Sent = false
		status.Reason = "Run failed: " + err.Error()
		status.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("SCHEDULER", "Scheduler pass failed", map[string]interface{}{"error": err, "source": source})
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("panic: %v", r))
		}
		status.FinishedAt = s.now()
		span.SetAttributes(
			attribute.String("scheduler.source", source),
			attribute.Int("scheduler.checked", status.CheckedSubscriptions),
			attribute.Int("scheduler.matched", status.ExpiringMatched),
			attribute.Int("scheduler.renewed", status.UpdatedSubscriptions),
			attribute.Int("scheduler.dedupe_skipped", status.DedupeSkipped),
			attribute.Bool("scheduler.sent", status.Sent),
		)
		if err := s.statuses.Save(ctx, status); err != nil {
			s.logger.Error("SCHEDULER", "Failed to save run status", map[string]interface{}{"error": err})
		}
	}()

	if err := s.run(ctx, now, status); err != nil {
		fail(err)
		return status
	}

	s.logger.Info("SCHEDULER", status.Reason, map[string]interface{}{
		"source":  source,
		"checked": status.CheckedSubscriptions,
		"matched": status.ExpiringMatched,
		"renewed": status.UpdatedSubscriptions,
	})
	return status
}

func (s *schedulerService) run(ctx context.Context, now time.Time, status *entity.SchedulerRunStatus) error {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("SCHEDULER", "Settings unreadable, using defaults", map[string]interface{}{"error": err.Error()})
	}
	loc := settings.Location()
	hours := entity.SanitizeNotificationHours(settings.NotificationHours)
	currentHour := fmt.Sprintf("%02d", now.In(loc).Hour())

	status.Timezone = loc.String()
	status.CurrentHour = currentHour
	status.ConfiguredHours = hours
	status.ShouldNotifyThisHour = hourAllowed(hours, currentHour)

	subs, err := s.subscriptions.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load subscriptions: %w", err)
	}
	status.CheckedSubscriptions = len(subs)

	matches := make([]entity.ExpiringSubscription, 0)
	renewed := 0

	for i := range subs {
		sub := subs[i]
		if !sub.IsActive {
			continue
		}
		status.ActiveSubscriptions++

		setting := sub.Reminder()
		daysDiff := period.DaysUntil(sub.ExpiryDate, now, loc)
		hoursDiff := period.HoursUntil(sub.ExpiryDate, now)
		overdue := sub.ExpiryDate.Before(now)

		if overdue && sub.AutoRenew {
			next := sub.Clone()
			added, err := AutoRenew(&next, now, loc, settings.HistoryLimit())
			if err != nil {
				s.logger.Warn("SCHEDULER", "Auto renewal skipped", map[string]interface{}{"id": sub.Id, "error": err.Error()})
			} else if added > 0 {
				subs[i] = next
				renewed++
				s.logger.Info("SCHEDULER", "Subscription auto renewed", map[string]interface{}{
					"id":         next.Id,
					"periods":    added,
					"expiryDate": next.ExpiryDate.Format(time.RFC3339),
				})

				daysDiff = period.DaysUntil(next.ExpiryDate, now, loc)
				hoursDiff = period.HoursUntil(next.ExpiryDate, now)
				if reminder.ShouldTrigger(setting, daysDiff, hoursDiff) {
					matches = append(matches, expiring(next, daysDiff, hoursDiff))
				}
				continue
			}
		}

		// non-renewing subscriptions past their expiry day stay on every reminder
		if (daysDiff < 0 && !sub.AutoRenew) || reminder.ShouldTrigger(setting, daysDiff, hoursDiff) {
			matches = append(matches, expiring(sub, daysDiff, hoursDiff))
		}
	}

	if renewed > 0 {
		if err := s.subscriptions.SaveAll(ctx, subs); err != nil {
			return fmt.Errorf("save renewed subscriptions: %w", err)
		}
	}
	status.UpdatedSubscriptions = renewed
	status.ExpiringMatched = len(matches)

	if len(matches) == 0 {
		status.Reason = "No subscription needs a reminder in this run"
		return nil
	}

	if !status.ShouldNotifyThisHour {
		configured := strings.Join(hours, ",")
		if configured == "" {
			configured = "none"
		}
		status.Reason = fmt.Sprintf("Current hour %s is outside the notification hours (%s)", currentHour, configured)
		return nil
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].DaysRemaining < matches[b].DaysRemaining
	})

	bucket := entity.ReminderBucket(now)
	batch := make([]entity.ExpiringSubscription, 0, len(matches))
	for _, m := range matches {
		seen, err := s.dedup.CheckAndMark(ctx, m.Id, bucket)
		if err != nil {
			return err
		}
		if seen {
			status.DedupeSkipped++
			continue
		}
		batch = append(batch, m)
	}

	if len(batch) == 0 {
		status.Reason = fmt.Sprintf("Matched %d subscription(s) but all were already notified in this window (skipped %d)", len(matches), status.DedupeSkipped)
		return nil
	}

	content := notify.FormatContent(batch, &settings, now)
	tagged := make([]entity.Subscription, len(batch))
	for i := range batch {
		tagged[i] = batch[i].Subscription
	}
	result := s.dispatcher.Send(ctx, notify.ReminderTitle, content, &settings, entity.ExtractTags(tagged...))
	status.Sent = true
	status.SendResult = result
	if result.Attempted > 0 {
		status.Reason = fmt.Sprintf("Attempted %d channel(s), %d succeeded (dedupe skipped %d)", result.Attempted, result.SuccessCount, status.DedupeSkipped)
	} else {
		status.Reason = "No notification channel is enabled"
	}
	return nil
}

// hourAllowed reports whether hour passes the allowlist. An empty list and
// the "*" wildcard allow every hour.
func hourAllowed(hours []string, hour string) bool {
	if len(hours) == 0 {
		return true
	}
	for _, h := range hours {
		if h == "*" || h == hour {
			return true
		}
	}
	return false
}

func expiring(sub entity.Subscription, daysDiff int, hoursDiff float64) entity.ExpiringSubscription {
	return entity.ExpiringSubscription{
		Subscription:   sub,
		DaysRemaining:  daysDiff,
		HoursRemaining: int(math.Round(hoursDiff)),
	}
}
