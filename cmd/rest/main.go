package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subscription-tracker-be/internal/bootstrap"
	"subscription-tracker-be/internal/config"
	"subscription-tracker-be/internal/server"
	"subscription-tracker-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	// 4. Start Background Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := container.TriggerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start scheduler queue: %v", err)
	}
	go container.LiveHub.Run(ctx)
	if container.AuditService != nil {
		if err := container.AuditService.Start(ctx); err != nil {
			log.Printf("Background: notification audit disabled: %v", err)
		}
	}
	if container.Cron != nil {
		if err := container.Cron.Start(); err != nil {
			log.Panicf("Unable to start cron: %v", err)
		}
		defer func() { <-container.Cron.Stop().Done() }()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Println("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
