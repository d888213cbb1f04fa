package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	server "github.com/abriesk/psychobotV1/internal/adapters/primary/http"
	adminController "github.com/abriesk/psychobotV1/internal/adapters/primary/http/controllers/admin"
	alerterController "github.com/abriesk/psychobotV1/internal/adapters/primary/http/controllers/alerter"
	healthcheckController "github.com/abriesk/psychobotV1/internal/adapters/primary/http/controllers/healthcheck"
	telegramController "github.com/abriesk/psychobotV1/internal/adapters/primary/http/controllers/telegram"
	"github.com/abriesk/psychobotV1/internal/adapters/primary/http/middlewares"
	alerterAdapter "github.com/abriesk/psychobotV1/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/abriesk/psychobotV1/internal/adapters/secondary/kafka"
	"github.com/abriesk/psychobotV1/internal/adapters/secondary/storage/inmemory"
	"github.com/abriesk/psychobotV1/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/abriesk/psychobotV1/internal/adapters/secondary/storage/redis"
	tgAdapter "github.com/abriesk/psychobotV1/internal/adapters/secondary/telegram"
	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/cache"
	kafkaPort "github.com/abriesk/psychobotV1/internal/ports/kafka"
	"github.com/abriesk/psychobotV1/internal/ports/repository"
	"github.com/abriesk/psychobotV1/internal/ports/service"
	bookingRepo "github.com/abriesk/psychobotV1/internal/repository/booking"
	negotiationRepo "github.com/abriesk/psychobotV1/internal/repository/negotiation"
	notificationRepo "github.com/abriesk/psychobotV1/internal/repository/notification"
	settingsRepo "github.com/abriesk/psychobotV1/internal/repository/settings"
	userRepo "github.com/abriesk/psychobotV1/internal/repository/user"
	waitlistRepo "github.com/abriesk/psychobotV1/internal/repository/waitlist"
	alerterService "github.com/abriesk/psychobotV1/internal/services/alerter"
	jobScheduler "github.com/abriesk/psychobotV1/internal/services/jobs"
	telegramService "github.com/abriesk/psychobotV1/internal/services/telegram"
	negotiationUsecase "github.com/abriesk/psychobotV1/internal/usecases/negotiation"
	"github.com/jmoiron/sqlx"
)

type Dependencies struct {
	DB              *sqlx.DB
	HTTPServer      *http.Server
	TelegramClient  *tgAdapter.Client
	TelegramService *telegramService.Service
	TelegramPoller  *tgAdapter.Poller
	KafkaProducer   kafkaPort.Producer
	Cache           cache.Cache
	JobScheduler    *jobScheduler.Scheduler
}

// initDependencies инициализирует все зависимости приложения
func (a *App) initDependencies(ctx context.Context) (*Dependencies, error) {
	db, err := a.initPostgres()
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	repos := a.initRepositories(db)
	cacheClient := a.initCache()
	alerter := a.initAlerter()
	producer, err := a.initKafkaProducer()
	if err != nil {
		return nil, fmt.Errorf("failed to init kafka producer: %w", err)
	}

	engine := negotiationUsecase.New(
		repos.Booking,
		repos.Negotiation,
		repos.Waitlist,
		repos.Settings,
		repos.User,
		repos.Notification,
		cacheClient,
		a.Cfg.Bot.ProviderID,
		a.Cfg.Bot.DefaultLanguage,
		a.Log,
	)

	tgClient := tgAdapter.NewClient(a.Cfg.Telegram.BotToken, a.Log)
	tgService := telegramService.New(
		tgClient,
		engine,
		cacheClient,
		a.Cfg.Bot.ProviderID,
		a.Cfg.Bot.AdminIDs,
		a.Cfg.Bot.ClinicInfo,
		a.Log,
	)

	httpServer := a.initHTTP(db, engine, tgService, alerter)

	poller, err := a.initTelegramMode(ctx, tgClient, tgService)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram mode: %w", err)
	}

	scheduler := a.initJobScheduler(alerter, engine, repos, tgClient, producer)

	return &Dependencies{
		DB:              db,
		HTTPServer:      httpServer,
		TelegramClient:  tgClient,
		TelegramService: tgService,
		TelegramPoller:  poller,
		KafkaProducer:   producer,
		Cache:           cacheClient,
		JobScheduler:    scheduler,
	}, nil
}

// repositories содержит инициализированные репозитории
type repositories struct {
	Booking      repository.IBookingRepo
	Negotiation  repository.INegotiationRepo
	Waitlist     repository.IWaitlistRepo
	Settings     repository.ISettingsRepo
	User         repository.IUserRepo
	Notification repository.INotificationRepo
}

// initRepositories инициализирует репозитории для работы с БД
func (a *App) initRepositories(db *sqlx.DB) *repositories {
	persistenceLayer := pg.NewDB(db)
	return &repositories{
		Booking:      bookingRepo.New(persistenceLayer, a.Log),
		Negotiation:  negotiationRepo.New(persistenceLayer, a.Log),
		Waitlist:     waitlistRepo.New(persistenceLayer, a.Log),
		Settings:     settingsRepo.New(persistenceLayer, a.Log),
		User:         userRepo.New(persistenceLayer, a.Log),
		Notification: notificationRepo.New(persistenceLayer, a.Log),
	}
}

// initCache Redis при включённом конфиге, иначе in-memory фолбэк
func (a *App) initCache() cache.Cache {
	if a.Cfg.Redis != nil && a.Cfg.Redis.Enabled {
		client, err := a.Cfg.Redis.NewConnection()
		if err != nil {
			a.Log.Warn("redis unavailable, falling back to in-memory cache", "error", err)
			return inmemory.NewCache()
		}
		a.Log.Info("redis cache connected")
		return redisAdapter.NewClient(client)
	}

	a.Log.Info("using in-memory cache")
	return inmemory.NewCache()
}

// initAlerter опциональный клиент алертов
func (a *App) initAlerter() service.IAlerterService {
	client := alerterAdapter.NewClient(a.Cfg.Alerter, a.Log)
	if client == nil {
		a.Log.Info("alerter is not configured")
		return nil
	}
	return alerterService.New(client)
}

// initKafkaProducer опциональный поток событий переговоров
func (a *App) initKafkaProducer() (kafkaPort.Producer, error) {
	if a.Cfg.Kafka == nil || !a.Cfg.Kafka.Enabled() {
		a.Log.Info("kafka producer is not configured")
		return nil, nil
	}

	producer, err := kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
	if err != nil {
		return nil, err
	}
	return producer, nil
}

// initHTTP собирает HTTP сервер со всеми контроллерами
func (a *App) initHTTP(
	db *sqlx.DB,
	engine service.INegotiationService,
	tgService *telegramService.Service,
	alerter service.IAlerterService,
) *http.Server {
	controllers := []server.Controller{
		healthcheckController.New(db, a.Log),
		telegramController.New(tgService, a.Cfg.Bot.WebhookSecret, a.Log),
		adminController.New(engine, a.Cfg.Admin.Token, a.Log),
		alerterController.New(alerter, a.Log),
	}

	var mws []server.Middleware
	mws = append(mws, middlewares.RecoveryLogger(a.Log))
	if a.Cfg.Server.EnableLoggingMiddleware {
		mws = append(mws, middlewares.RequestLogger(a.Log))
	}

	return server.NewHTTPServer(a.Cfg.Server, a.Log, mws, controllers...)
}

// initTelegramMode webhook (prod) или long polling (локальная разработка)
func (a *App) initTelegramMode(
	ctx context.Context,
	tgClient *tgAdapter.Client,
	tgService *telegramService.Service,
) (*tgAdapter.Poller, error) {
	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := tgClient.SetMyCommands(setupCtx, []tgAdapter.BotCommand{
		{Command: "book", Description: "Записаться на консультацию"},
		{Command: "language", Description: "Сменить язык / Change language"},
		{Command: "cancel", Description: "Прервать анкету"},
		{Command: "help", Description: "Справка"},
	}); err != nil {
		a.Log.Warn("failed to set bot commands", "error", err)
	}

	if a.Cfg.Telegram.IsWebhookEnabled() {
		if err := tgClient.SetWebhook(setupCtx, a.Cfg.Telegram.WebhookURL); err != nil {
			return nil, fmt.Errorf("failed to set webhook: %w", err)
		}
		a.Log.Info("webhook registered", "webhook_url", a.Cfg.Telegram.WebhookURL)
		return nil, nil
	}

	handler := func(ctx context.Context, update *domain.Update) error {
		return tgService.HandleUpdate(ctx, update)
	}
	return tgAdapter.NewPoller(tgClient, a.Cfg.Telegram, handler, a.Log), nil
}

// initJobScheduler регистрирует фоновые джобы
func (a *App) initJobScheduler(
	alerter service.IAlerterService,
	engine service.INegotiationService,
	repos *repositories,
	tgClient *tgAdapter.Client,
	producer kafkaPort.Producer,
) *jobScheduler.Scheduler {
	scheduler := jobScheduler.NewScheduler(a.Log, alerter)

	scheduler.Register(jobScheduler.NewRequestExpirer(
		repos.Booking,
		repos.Settings,
		engine,
		a.Cfg.Jobs.ExpirerInterval,
		a.Log,
	))

	scheduler.Register(jobScheduler.NewNotificationPump(
		repos.Notification,
		repos.Booking,
		repos.User,
		tgClient,
		producer,
		a.Cfg.Bot.ProviderID,
		a.Cfg.Jobs.PumpInterval,
		a.Log,
	))

	return scheduler
}
