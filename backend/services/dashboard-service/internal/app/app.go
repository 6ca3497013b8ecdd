package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	libredis "brewdash/backend/libs/redis"
	"brewdash/backend/services/dashboard-service/internal/clients"
	"brewdash/backend/services/dashboard-service/internal/config"
	httpserver "brewdash/backend/services/dashboard-service/internal/http"
	"brewdash/backend/services/dashboard-service/internal/http/handlers"
	"brewdash/backend/services/dashboard-service/internal/http/middleware"
	"brewdash/backend/services/dashboard-service/internal/loader"
	"brewdash/backend/services/dashboard-service/internal/proxy"
	"brewdash/backend/services/dashboard-service/internal/session"
	"brewdash/backend/services/dashboard-service/internal/snapshot"
)

// App wires dashboard dependencies.
type App struct {
	server      *httpserver.Server
	sessions    *session.Manager
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph. Redis is only dialed when configured.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	rapt := clients.NewRaptClient(clients.RaptClientConfig{
		IdentityURL: cfg.Rapt.IdentityURL,
		APIURL:      cfg.Rapt.APIURL,
		Timeout:     cfg.Rapt.Timeout,
	})

	seedLoader := loader.New(rapt, clients.Credentials{
		ClientID: cfg.Rapt.ClientID,
		Username: cfg.Rapt.Username,
		Password: cfg.Rapt.Password,
	}, logger)

	var (
		store       snapshot.Store
		redisClient *redis.Client
	)
	if cfg.UseRedis() {
		client, err := libredis.NewRedisClient(ctx, libredis.Options{
			Addr:     cfg.Snapshot.RedisAddr,
			Password: cfg.Snapshot.RedisPassword,
			DB:       cfg.Snapshot.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		redisClient = client
		store = snapshot.NewRedisStore(client, cfg.Snapshot.RedisKey, cfg.Snapshot.TTL)
		logger.Info("snapshot cache in redis", zap.String("addr", cfg.Snapshot.RedisAddr))
	} else {
		store = snapshot.NewMemoryStore()
	}

	provider := snapshot.NewProvider(seedLoader, store, cfg.Snapshot.Interval, logger)
	relay := proxy.NewRelay(rapt, logger)
	sessions := session.NewManager(cfg.WS.PingInterval, logger)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		PageHandler:     handlers.NewPageHandler(provider, logger),
		ProxyHandler:    handlers.NewProxyHandler(relay, logger),
		SnapshotHandler: handlers.NewSnapshotHandler(provider, logger),
		WSHandler: handlers.NewWSHandler(provider, session.NewRelayFetcher(relay), sessions, handlers.WSOptions{
			PingInterval: cfg.WS.PingInterval,
			WriteTimeout: cfg.WS.WriteTimeout,
		}, logger),
		HealthHandler:  handlers.NewHealthHandler(sessions),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	return &App{
		server:      server,
		sessions:    sessions,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run serves HTTP and keeps sessions alive until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Run(ctx)
	})
	g.Go(func() error {
		return a.sessions.Start(ctx)
	})
	return g.Wait()
}

// Close releases resources.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
