// Command tick runs exactly one scheduler pass and prints its outcome.
// It is meant for an external scheduler such as a system crontab.
package main

import (
	"context"
	"os"
	"sort"
	"time"

	"subscription-tracker-be/internal/bootstrap"
	"subscription-tracker-be/internal/config"
	"subscription-tracker-be/internal/service"
	"subscription-tracker-be/internal/tracer"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// the pass is triggered by this process, not by the in-process cron
	cfg.Scheduler.Enabled = false
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		color.Red("Bootstrap failed: %v", err)
		os.Exit(1)
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	color.Cyan("Running scheduler pass...")
	status := container.SchedulerService.RunOnce(ctx, service.SourceTick)

	color.White("Timezone: %s  hour: %s  notify this hour: %t", status.Timezone, status.CurrentHour, status.ShouldNotifyThisHour)
	color.White("Checked %d, active %d, renewed %d, matched %d, dedupe skipped %d",
		status.CheckedSubscriptions, status.ActiveSubscriptions, status.UpdatedSubscriptions,
		status.ExpiringMatched, status.DedupeSkipped)

	if status.SendResult != nil {
		channels := make([]string, 0, len(status.SendResult.ChannelResults))
		for name := range status.SendResult.ChannelResults {
			channels = append(channels, name)
		}
		sort.Strings(channels)
		for _, name := range channels {
			if status.SendResult.ChannelResults[name] {
				color.Green("  %s: sent", name)
			} else {
				color.Red("  %s: failed", name)
			}
		}
	}

	if status.Error != "" {
		color.Red("%s", status.Reason)
		// deferred cleanup does not run after os.Exit
		container.Close()
		os.Exit(1)
	}
	color.Green("%s", status.Reason)
}
