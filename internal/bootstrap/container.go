package bootstrap

import (
	"context"
	"fmt"

	"subscription-tracker-be/internal/config"
	"subscription-tracker-be/internal/controller"
	"subscription-tracker-be/internal/notify"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/pkg/mailer"
	"subscription-tracker-be/internal/pkg/serverutils"
	"subscription-tracker-be/internal/repository/implementation"
	"subscription-tracker-be/internal/scheduler"
	"subscription-tracker-be/internal/service"
	"subscription-tracker-be/internal/websocket"
	"subscription-tracker-be/pkg/currency"
	"subscription-tracker-be/pkg/database"
	"subscription-tracker-be/pkg/kvstore"

	pktNats "subscription-tracker-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "subtracker:"

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	SubscriptionController controller.ISubscriptionController
	ConfigController       controller.IConfigController
	SchedulerController    controller.ISchedulerController
	DashboardController    controller.IDashboardController
	LunarController        controller.ILunarController
	NotifyController       controller.INotifyController
	LiveController         controller.ILiveController
	JwtMiddleware          fiber.Handler

	// Background services, started by main
	SchedulerService service.ISchedulerService
	TriggerService   service.ITriggerService
	AuditService     *service.NotificationAuditService
	Cron             *scheduler.Cron
	LiveHub          *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// NewStore opens the document store selected by cfg. The purger is nil for
// stores that expire keys on their own. An unreachable Redis is logged and
// the store is still returned.
func NewStore(ctx context.Context, cfg config.StoreConfig, log logger.ILogger) (kvstore.Store, scheduler.ExpiredPurger, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return kvstore.NewMemoryStore(), nil, nil
	case config.StorePostgres:
		db, err := database.NewGormDBFromDSN(cfg.Connection)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store, err := kvstore.NewPostgresStore(db)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.StoreRedis, "":
		client, err := kvstore.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("STORE", "Failed to connect to Redis", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return kvstore.NewRedisStore(client, redisKeyPrefix), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Driver)
	}
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	notifyLogger := logger.NewIsolatedLogger(cfg.App.NotifyLogFilePath)

	store, purger, err := NewStore(context.Background(), cfg.Store, sysLogger)
	if err != nil {
		return nil, err
	}
	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = store.Close() })

	subscriptionRepo := implementation.NewSubscriptionRepository(store)
	settingsRepo := implementation.NewSettingsRepository(store)
	statusRepo := implementation.NewSchedulerStatusRepository(store)
	dedupRepo := implementation.NewDedupRepository(store)
	rateRepo := implementation.NewExchangeRateRepository(store)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 16},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var eventPublisher notify.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("NATS", "Failed to connect to NATS Publisher", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("NATS", "Failed to connect to NATS Subscriber", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			c.AuditService = service.NewNotificationAuditService(natsSub, notifyLogger)
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// 3. Notification channels
	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)
	dispatcher := notify.NewDispatcher(notifyLogger,
		notify.NewNotifyXChannel(cfg.Notify.NotifyXBaseURL),
		notify.NewTelegramChannel(cfg.Notify.TelegramBaseURL),
		notify.NewWebhookChannel(),
		notify.NewWechatBotChannel(),
		notify.NewEmailChannel(emailService),
		notify.NewBarkChannel(),
		notify.NewEventChannel(eventPublisher),
	)

	// 4. Services
	jwtSecret := cfg.Auth.JwtSecret
	if jwtSecret == "" {
		sysLogger.Warn("AUTH", "JWT_SECRET is not set, using the built-in default secret", nil)
		jwtSecret = service.DefaultJwtSecret
	}
	authService := service.NewAuthService(settingsRepo, service.AuthConfig{
		JwtSecret:       jwtSecret,
		TokenTTL:        cfg.Auth.TokenTTL,
		DefaultPassword: cfg.Auth.DefaultPassword,
	}, sysLogger)

	subscriptionService := service.NewSubscriptionService(subscriptionRepo, settingsRepo, sysLogger, nil)
	settingsService := service.NewSettingsService(settingsRepo, sysLogger)
	notifyService := service.NewNotifyService(subscriptionRepo, settingsRepo, dispatcher, sysLogger, nil)
	dashboardService := service.NewDashboardService(
		subscriptionRepo,
		settingsRepo,
		statusRepo,
		rateRepo,
		currency.NewClient(cfg.Notify.ExchangeRateBaseURL),
		sysLogger,
		nil,
	)
	lunarService := service.NewLunarService(settingsRepo, sysLogger)

	// Instances sharing a Redis store also share the live feed.
	var liveRedis redis.UniversalClient
	if rs, ok := store.(*kvstore.RedisStore); ok {
		liveRedis = rs.Client()
	}
	c.LiveHub = websocket.NewHub(liveRedis, sysLogger)

	c.SchedulerService = service.WithStatusBroadcast(
		service.NewSchedulerService(subscriptionRepo, settingsRepo, statusRepo, dedupRepo, dispatcher, sysLogger, nil),
		c.LiveHub,
	)
	c.TriggerService = service.NewTriggerService(pubSub, c.SchedulerService, sysLogger)
	if cfg.Scheduler.Enabled {
		c.Cron = scheduler.NewCron(cfg.Scheduler.Cron, c.TriggerService, purger, sysLogger)
	}

	// 5. Controllers
	c.JwtMiddleware = serverutils.JwtMiddleware(jwtSecret)
	c.AuthController = controller.NewAuthController(authService)
	c.SubscriptionController = controller.NewSubscriptionController(subscriptionService, notifyService)
	c.ConfigController = controller.NewConfigController(settingsService)
	c.SchedulerController = controller.NewSchedulerController(c.SchedulerService, c.TriggerService)
	c.DashboardController = controller.NewDashboardController(dashboardService)
	c.LunarController = controller.NewLunarController(lunarService)
	c.NotifyController = controller.NewNotifyController(notifyService)
	c.LiveController = controller.NewLiveController(c.LiveHub)

	return c, nil
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
