package parishcalendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/parish-calendar/internal/cache"
	"github.com/magabrotheeeer/parish-calendar/internal/config"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/jwt"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/migrations"
	"github.com/magabrotheeeer/parish-calendar/internal/services/auth"
	"github.com/magabrotheeeer/parish-calendar/internal/services/events"
	"github.com/magabrotheeeer/parish-calendar/internal/services/profiles"
	"github.com/magabrotheeeer/parish-calendar/internal/storage/repository"
)

// App: HTTP-сервер календаря со всеми зависимостями.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	publisher *rabbitmq.Publisher
}

// New подключает хранилища, создаёт сервисы и маршруты.
//
// Локальный кэш обязателен. Удалённое хранилище и брокер необязательны:
// без них календарь работает на локальной копии и без уведомлений.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "parishcalendar.New"

	db := &repository.Storage{}
	if cfg.RemoteConfigured() {
		var err error
		db, err = repository.Open(cfg.StorageConnectionString)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		prepareRemote(ctx, db, cfg.MigrationsPath, logger)
	} else {
		logger.Warn("remote storage is not configured, events stay local")
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	storeOpts := []events.Option{events.WithRemoteTimeout(cfg.RemoteTimeout)}
	publisher := connectBroker(cfg.RabbitMQ, logger)
	if publisher != nil {
		storeOpts = append(storeOpts, events.WithNotifier(events.NewBrokerNotifier(publisher)))
	}
	store := events.NewStore(db, cache.NewEventCache(cacheRedis, cfg.LocalCacheKey, logger), logger, storeOpts...)

	authService := auth.NewAuthService(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), logger)
	if _, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		if !errors.Is(err, auth.ErrUnavailable) {
			_ = cacheRedis.Close()
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Warn("initial administrator not created", sl.Err(err))
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, Services{
		Events:   store,
		Auth:     authService,
		Profiles: profiles.NewService(db, logger),
		Local:    cacheRedis,
		Remote:   db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		cache:     cacheRedis,
		publisher: publisher,
	}, nil
}

// prepareRemote накатывает миграции и проверяет схему.
// Ошибки только логируются: недоступное хранилище обрабатывается при каждой операции.
func prepareRemote(ctx context.Context, db *repository.Storage, migrationsPath string, logger *slog.Logger) {
	if err := migrations.Run(db.DB, migrationsPath); err != nil {
		logger.Error("failed to apply migrations", sl.Err(err))
		return
	}
	if err := repository.CheckDatabaseReady(ctx, db); err != nil {
		logger.Error("remote storage is not ready", sl.Err(err))
	}
}

// connectBroker возвращает публикатора уведомлений или nil, если брокер не настроен или недоступен.
func connectBroker(cfg config.RabbitMQ, logger *slog.Logger) *rabbitmq.Publisher {
	if cfg.URL == "" {
		return nil
	}
	conn, err := rabbitmq.Connect(cfg.URL, cfg.ConnectRetries, cfg.RetryDelay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, change notifications disabled", sl.Err(err))
		return nil
	}
	publisher, err := rabbitmq.NewPublisher(conn, cfg.Exchange)
	if err != nil {
		_ = conn.Close()
		logger.Warn("failed to set up exchange, change notifications disabled", sl.Err(err))
		return nil
	}
	return publisher
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.Close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.Close()
		return err
	}
}

// Close освобождает соединения с хранилищами и брокером.
func (a *App) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq publisher", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
