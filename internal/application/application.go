package application

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"dealradar/internal/config"
	"dealradar/internal/domain/service/discovery"
	"dealradar/internal/domain/service/estimate"
	"dealradar/internal/domain/service/quota"
	"dealradar/internal/infrastructure/estimator"
	"dealradar/internal/infrastructure/kv"
	"dealradar/internal/infrastructure/notifier"
	"dealradar/internal/infrastructure/persistence"
	"dealradar/internal/infrastructure/preprocessor"
	"dealradar/internal/infrastructure/scanner"
	"dealradar/internal/server"
	"dealradar/internal/transport/bot"
	"dealradar/internal/transport/bot/handler"
	"dealradar/internal/transport/tasks"
	"dealradar/internal/worker"
	"dealradar/pkg/application/connectors"
	"dealradar/pkg/application/modules"
	"dealradar/pkg/contextx"
	"dealradar/pkg/logx"
	"dealradar/pkg/middlewarex"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	appName        = "dealradar"
	appVersion     = "dev"
	logFieldMaxLen = 4096

	httpReadHeaderTimeout = 5 * time.Second
)

func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	components, err := Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build components: %w", err)
	}
	defer components.Close(ctx)

	g, ctx := errgroup.WithContext(ctx)

	runHTTPServer(ctx, g, cfg, components)

	modules.MetricServer{ListenAddress: cfg.HTTP.MetricAddress}.Run(ctx, g)
	modules.ProbeServer{
		Name:          appName,
		Version:       appVersion,
		ListenAddress: cfg.HTTP.ProbeAddress,
	}.Run(ctx, g)

	runTaskQueue(ctx, g, cfg, components.Discovery)

	if cfg.Bot.Enabled {
		commandHandler := handler.New(components.Discovery, components.Limiter, components.MemoryRepo)

		adminBot, err := bot.New(cfg.Bot.Token, cfg.Bot.AdminID, commandHandler)
		if err != nil {
			return fmt.Errorf("bot.New: %w", err)
		}

		g.Go(func() error {
			return adminBot.Run(ctx)
		})
	}

	logger(ctx).Info("application started")

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	logger(ctx).Info("application stopped")

	return nil
}

// Components — собранный доменный стек, общий для сервиса и one-shot CLI.
type Components struct {
	Discovery  *discovery.Service
	Limiter    *quota.Limiter
	MemoryRepo *persistence.MemoryRepository

	closeStore func(context.Context)
}

func (c Components) Close(ctx context.Context) {
	c.closeStore(ctx)
}

func Build(ctx context.Context, cfg config.Config) (Components, error) {
	location, err := time.LoadLocation(cfg.Quota.Timezone)
	if err != nil {
		return Components{}, fmt.Errorf("load quota timezone: %w", err)
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return Components{}, fmt.Errorf("create store: %w", err)
	}

	limiter := quota.NewLimiter(store, cfg.Quota.DailyLimit, location)
	memoryRepo := persistence.NewMemoryRepository(store)

	dealScanner := scanner.NewClient(
		cfg.Scanner.BaseURL,
		cfg.Scanner.APIToken,
		cfg.Scanner.Timeout,
		cfg.Scanner.MaxDeals,
	)

	ensemble := estimate.NewEnsemble(
		estimator.NewSpecialist(cfg.Estimator.SpecialistURL, cfg.Estimator.Timeout),
		estimator.NewNeural(cfg.Estimator.NeuralURL, cfg.Estimator.Timeout),
	)

	alerts, err := newNotifier(ctx, cfg.Notifier)
	if err != nil {
		closeStore(ctx)
		return Components{}, fmt.Errorf("create notifier: %w", err)
	}

	discoveryService := discovery.NewService(
		limiter,
		dealScanner,
		newPreprocessor(cfg.Estimator),
		ensemble,
		alerts,
		memoryRepo,
	).
		WithThreshold(cfg.Discovery.Threshold).
		WithFanOutWidth(cfg.Discovery.FanOutWidth).
		WithCallTimeout(cfg.Discovery.CallTimeout)

	return Components{
		Discovery:  discoveryService,
		Limiter:    limiter,
		MemoryRepo: memoryRepo,
		closeStore: closeStore,
	}, nil
}

// newStore собирает key-value хранилище по выбранному бэкенду.
func newStore(ctx context.Context, cfg config.Config) (kv.Store, func(context.Context), error) {
	noop := func(context.Context) {}

	switch cfg.Storage.Backend {
	case config.StorageFile:
		store, err := kv.NewFileStore(cfg.Storage.FileDir)
		if err != nil {
			return nil, noop, fmt.Errorf("kv.NewFileStore: %w", err)
		}
		return store, noop, nil

	case config.StorageRedis:
		redisConnector := &connectors.Redis{
			Address:            cfg.Redis.Address,
			Username:           cfg.Redis.Username,
			Password:           cfg.Redis.Password,
			DatabaseNumber:     cfg.Redis.DatabaseNumber,
			PoolSize:           cfg.Redis.PoolSize,
			MinIdleConnections: cfg.Redis.MinIdleConnections,
			MaxIdleConnections: cfg.Redis.MaxIdleConnections,
		}

		return kv.NewRedisStore(redisConnector.Client(ctx), appName), redisConnector.Close, nil

	case config.StoragePostgres:
		pgConnector := &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}

		return kv.NewPostgresStore(pgConnector.Client(ctx)), pgConnector.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func newPreprocessor(cfg config.Estimator) discovery.Preprocessor {
	if cfg.PreprocessorURL != "" {
		return preprocessor.NewRemote(cfg.PreprocessorURL, cfg.Timeout)
	}

	return preprocessor.NewLocal()
}

func newNotifier(ctx context.Context, cfg config.Notifier) (*notifier.Multi, error) {
	multi := notifier.NewMulti()

	if cfg.TelegramEnabled() {
		alertBot, err := notifier.NewTelegramBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		multi.Register("telegram", alertBot)
		logger(ctx).Info("telegram notifications enabled")
	}

	if cfg.EmailEnabled() {
		multi.Register("email", notifier.NewEmailSender(
			cfg.MailjetAPIKey,
			cfg.MailjetAPISecret,
			cfg.EmailFrom,
			cfg.EmailTo,
		))
		logger(ctx).Info("email notifications enabled")
	}

	return multi, nil
}

func runHTTPServer(
	ctx context.Context,
	g *errgroup.Group,
	cfg config.Config,
	components Components,
) {
	masker := logx.NewSensitiveDataMasker()

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
	)

	server.NewServer(
		server.NewDiscoveryServer(components.Discovery, components.Limiter, components.MemoryRepo),
	).RegisterRoutes(router)

	httpServer := &http.Server{ //nolint:exhaustruct
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: httpReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, httpServer)
}

func runTaskQueue(
	ctx context.Context,
	g *errgroup.Group,
	cfg config.Config,
	discoveryService *discovery.Service,
) {
	if cfg.Storage.Backend != config.StorageRedis && !cfg.Discovery.ScheduleEnabled {
		return
	}

	taskHandler := tasks.NewHandler(discoveryService)

	modules.AsynqServer{
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisAddress:  cfg.Redis.Address,
		RedisDB:       cfg.Redis.DatabaseNumber,
	}.Run(ctx, g,
		modules.AsynqQueues{tasks.QueueDefault: 1},
		modules.AsynqHandler{
			Pattern: tasks.TypeDiscoveryCycle,
			Handle:  taskHandler.HandleDiscoveryCycle,
		},
	)

	if !cfg.Discovery.ScheduleEnabled {
		return
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{ //nolint:exhaustruct
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseNumber,
	})

	scheduler := worker.NewCycleScheduler(asynqClient).
		WithInterval(cfg.Discovery.ScheduleInterval)

	g.Go(func() error {
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("scheduler.Start: %w", err)
		}

		<-ctx.Done()
		scheduler.Stop()

		if err := asynqClient.Close(); err != nil {
			logger(ctx).Error("asynqClient.Close", logx.Error(err))
		}

		return nil
	})
}
