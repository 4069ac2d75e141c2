package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	logger_adapter "github.com/ferone/Germany-real-sate/internal/adapters/logger"
	"github.com/ferone/Germany-real-sate/internal/adapters/memory"
	"github.com/ferone/Germany-real-sate/internal/adapters/metrics"
	postgres_adapter "github.com/ferone/Germany-real-sate/internal/adapters/postgres"
	rabbitmq_adapter "github.com/ferone/Germany-real-sate/internal/adapters/rabbitmq"
	redis_adapter "github.com/ferone/Germany-real-sate/internal/adapters/redis"
	"github.com/ferone/Germany-real-sate/internal/adapters/rest"
	"github.com/ferone/Germany-real-sate/internal/configs"
	"github.com/ferone/Germany-real-sate/internal/contracts"
	"github.com/ferone/Germany-real-sate/internal/core/port"
	"github.com/ferone/Germany-real-sate/internal/core/usecase"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Имена для RabbitMQ
const (
	ListingsExchange         = "listings_exchange"
	RoutingKeyListingScraped = "listing.scraped"
)

const shutdownTimeout = 10 * time.Second

// partitionBackend - хранилище, которое умеет и читать партиции, и сохранять объявления
type partitionBackend interface {
	port.PartitionStorePort
	port.ListingSinkPort
}

// App - структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	cache        *redis_adapter.Cache
	apiServer    *rest.Server
	fluentClient *fluent.Fluent
	connManager  *rabbitmq_adapter.ConnectionManager
	logger       port.LoggerPort

	listingEventsListener port.EventListenerPort
}

// NewApp создает новый экземпляр приложения.
// Здесь все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: !appConfig.StdoutLogger.IsJSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = logger_adapter.NewFluentClient(logger_adapter.FluentConfig{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	application := &App{
		config:       appConfig,
		fluentClient: fluentClient,
		logger:       appLogger,
	}
	// при ошибке ниже закрываем все, что успели открыть
	fail := func(msg string, err error) (*App, error) {
		appLogger.Error(msg, err, nil)
		application.closeResources()
		return nil, fmt.Errorf("%s: %w", strings.ToLower(msg), err)
	}

	appMetrics := metrics.New()

	// --- 2. ХРАНИЛИЩЕ ПАРТИЦИЙ ---
	var store partitionBackend
	switch appConfig.StoreBackend {
	case configs.StoreBackendPostgres:
		if appConfig.Database.Migrate {
			if err := postgres_adapter.RunMigrations(appConfig.Database.URL); err != nil {
				return fail("Failed to run migrations", err)
			}
			appLogger.Info("Database migrations applied.", nil)
		}

		dbPool, err := postgres_adapter.NewClient(context.Background(), postgres_adapter.Config{
			DatabaseURL: appConfig.Database.URL,
			MaxConns:    appConfig.Database.MaxConns,
		})
		if err != nil {
			return fail("Failed to connect to PostgreSQL", err)
		}
		application.dbPool = dbPool
		appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

		pgStore, err := postgres_adapter.NewPartitionStore(dbPool)
		if err != nil {
			return fail("Failed to create postgres partition store", err)
		}
		store = pgStore
	default:
		appLogger.Warn("Using in-memory partition store, data is not persisted", nil)
		store = memory.NewPartitionStore()
	}

	// --- 3. КЭШ АГРЕГАТОВ ---
	var resultCache *usecase.ResultCache
	if appConfig.Cache.Enabled {
		redisClient := redis_adapter.NewClient(redis_adapter.Config{
			Addr:     appConfig.Cache.Addr,
			Password: appConfig.Cache.Password,
			DB:       appConfig.Cache.DB,
		})
		cache, err := redis_adapter.NewCache(redisClient, appMetrics)
		if err != nil {
			redisClient.Close()
			return fail("Failed to create redis cache", err)
		}
		application.cache = cache

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = cache.Ping(pingCtx)
		cancel()
		if err != nil {
			return fail("Failed to connect to Redis", err)
		}
		resultCache = usecase.NewResultCache(cache, appConfig.Cache.TTL)
		appLogger.Info("Redis result cache initialized.", port.Fields{"ttl": appConfig.Cache.TTL.String()})
	}

	// --- 4. USE CASES ---
	executor := usecase.NewFanOutExecutor(usecase.FanOutConfig{
		PartitionTimeout: appConfig.Engine.PartitionTimeout,
		MaxParallel:      appConfig.Engine.MaxParallel,
	}, appMetrics)

	getStatsUseCase := usecase.NewGetStatsUseCase(store, executor, resultCache, appConfig.Engine.WeightedAverages)
	getPriceTrendUseCase := usecase.NewGetPriceTrendUseCase(store, executor, resultCache, appConfig.Engine.TrendMonths)
	getCityDistributionUseCase := usecase.NewGetCityDistributionUseCase(store, executor, resultCache)
	getTypeDistributionUseCase := usecase.NewGetTypeDistributionUseCase(store, executor, resultCache)
	getAvgPriceByTypeUseCase := usecase.NewGetAvgPriceByTypeUseCase(store, executor, resultCache)
	searchListingsUseCase := usecase.NewSearchListingsUseCase(store, executor, appMetrics)
	getListingUseCase := usecase.NewGetListingUseCase(store)
	saveListingUseCase := usecase.NewSaveListingUseCase(store)

	appLogger.Info("All use cases initialized.", nil)

	// --- 5. ВХОДЯЩИЕ АДАПТЕРЫ ---
	if appConfig.RabbitMQ.Enabled {
		connManager, err := rabbitmq_adapter.NewConnectionManager(
			appConfig.RabbitMQ.URL,
			baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}),
		)
		if err != nil {
			return fail("Failed to create connection manager", err)
		}
		application.connManager = connManager
		appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

		schemaRegistry, err := contracts.NewRegistry()
		if err != nil {
			return fail("Failed to compile event schemas", err)
		}

		consumerCfg := rabbitmq_adapter.ConsumerConfig{
			QueueName:     appConfig.RabbitMQ.IngestQueue,
			DurableQueue:  true,
			ExchangeName:  ListingsExchange,
			ExchangeType:  "direct",
			RoutingKey:    RoutingKeyListingScraped,
			PrefetchCount: 10,
			ConsumerTag:   appConfig.AppName + "-listing-ingest",
		}
		listener, err := rabbitmq_adapter.NewListingConsumerAdapter(
			consumerCfg, saveListingUseCase, schemaRegistry, appMetrics, baseLogger, connManager,
		)
		if err != nil {
			return fail("Failed to create listing events listener", err)
		}
		application.listingEventsListener = listener
		appLogger.Info("Listing Events Listener initialized.", nil)
	}

	analyticsHandlers := rest.NewAnalyticsHandler(
		getStatsUseCase, getPriceTrendUseCase, getCityDistributionUseCase,
		getTypeDistributionUseCase, getAvgPriceByTypeUseCase,
	)
	listingHandlers := rest.NewListingHandler(searchListingsUseCase, getListingUseCase)
	router := rest.NewRouter(analyticsHandlers, listingHandlers, appMetrics.Handler(), appMetrics, appConfig.Rest.CORSOrigins, baseLogger)

	application.apiServer = rest.NewServer(appConfig.Rest.PORT, router, baseLogger.WithFields(port.Fields{"component": "rest"}))
	appLogger.Info("REST API server configured.", nil)

	return application, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	// единый контекст для graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		a.closeResources()
		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// fluent уже может быть недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 2)

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	if a.listingEventsListener != nil {
		wg.Add(1)
		go startListener("Listing Events Listener", a.listingEventsListener)
	}

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	cancelApp()
	return runErr
}

// closeResources закрывает внешние ресурсы. Порядок: слушатель, соединение с брокером, кэш, пул.
func (a *App) closeResources() {
	if a.listingEventsListener != nil {
		if err := a.listingEventsListener.Close(); err != nil {
			a.logger.Error("Error closing listing events listener", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("Error closing redis client", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
