package scheduler

import (
	"context"
	"fmt"
	"time"

	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/service"

	"github.com/robfig/cron/v3"
)

const purgeSchedule = "@daily"

// ExpiredPurger drops expired documents from stores without native TTL.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Cron publishes a scheduler run request on every tick of the schedule.
type Cron struct {
	cron     *cron.Cron
	trigger  service.ITriggerService
	purger   ExpiredPurger
	schedule string
	logger   logger.ILogger
}

// NewCron builds the cron runner. purger may be nil.
func NewCron(schedule string, trigger service.ITriggerService, purger ExpiredPurger, log logger.ILogger) *Cron {
	cl := cronLogger{log: log}
	return &Cron{
		cron:     cron.New(cron.WithChain(cron.Recover(cl)), cron.WithLogger(cl)),
		trigger:  trigger,
		purger:   purger,
		schedule: schedule,
		logger:   log,
	}
}

// Start registers the jobs and starts the scheduler. An invalid schedule is an error.
func (c *Cron) Start() error {
	if _, err := c.cron.AddFunc(c.schedule, c.runPass); err != nil {
		return fmt.Errorf("schedule scheduler pass %q: %w", c.schedule, err)
	}
	c.logger.Info("CRON", "Scheduled scheduler pass", map[string]interface{}{"schedule": c.schedule})

	if c.purger != nil {
		if _, err := c.cron.AddFunc(purgeSchedule, c.purge); err != nil {
			return fmt.Errorf("schedule purge: %w", err)
		}
		c.logger.Info("CRON", "Scheduled expired document purge", map[string]interface{}{"schedule": purgeSchedule})
	}

	c.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done once running jobs finish.
func (c *Cron) Stop() context.Context {
	return c.cron.Stop()
}

func (c *Cron) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.trigger.Trigger(ctx, service.SourceCron); err != nil {
		c.logger.Error("CRON", "Failed to queue scheduler pass", map[string]interface{}{"error": err})
	}
}

func (c *Cron) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := c.purger.PurgeExpired(ctx)
	if err != nil {
		c.logger.Error("CRON", "Failed to purge expired documents", map[string]interface{}{"error": err})
		return
	}
	c.logger.Info("CRON", "Purged expired documents", map[string]interface{}{"count": n})
}

// cronLogger adapts ILogger to cron.Logger.
type cronLogger struct {
	log logger.ILogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("CRON", msg, fields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	details := fields(keysAndValues)
	details["error"] = err
	l.log.Error("CRON", msg, details)
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return out
}
