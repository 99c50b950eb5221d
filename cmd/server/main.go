// Command server runs the orderdesk HTTP API.
//
// @title                       Orderdesk API
// @version                     1.0
// @description                 Users and ticket-numbered orders over MongoDB.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/orderdesk/internal/api"
	"github.com/99minutos/orderdesk/internal/core/ports"
	"github.com/99minutos/orderdesk/internal/core/service"
	"github.com/99minutos/orderdesk/internal/infrastructure/config"
	"github.com/99minutos/orderdesk/internal/infrastructure/db/memory"
	"github.com/99minutos/orderdesk/internal/infrastructure/db/mongo"
	"github.com/99minutos/orderdesk/internal/infrastructure/db/redis"
	"github.com/99minutos/orderdesk/internal/infrastructure/http/handlers"
	"github.com/99minutos/orderdesk/pkg/logger"
)

type stores struct {
	users   ports.UserRepository
	orders  ports.OrderRepository
	tickets ports.SequenceAllocator
	db      *mongodriver.Database
	close   func(context.Context)
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "orderdesk",
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("store unavailable")
	}
	defer st.close(context.Background())

	var claims ports.RequestClaimer
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	switch {
	case errors.Is(err, redis.ErrDisabled):
		log.Info().Msg("redis disabled, idempotency keys ignored")
	case err != nil:
		log.Fatal().Err(err).Msg("redis unavailable")
	default:
		defer func() { _ = rdb.Close() }()
		claims = redis.NewRequestClaims(rdb, "orders", cfg.Orders.IdempotencyTTL)
	}

	users := service.NewUserService(st.users, st.orders, log)
	orders := service.NewOrderService(st.orders, st.users, st.tickets, claims, log)

	deps := api.Dependencies{
		Users:     users,
		Orders:    orders,
		Readiness: handlers.NewHealthDependenciesHandler(st.db, rdb),
		Logger:    log,
	}
	if cfg.AuthEnabled() {
		deps.Auth = service.NewAuthService(st.users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}
	if cfg.Auth.AdminUsername != "" && cfg.Auth.AdminPassword != "" {
		created, err := users.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("admin bootstrap failed")
		}
		if created {
			log.Info().Str("username", cfg.Auth.AdminUsername).Msg("admin user created")
		}
	}

	e := api.NewRouter(api.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		BodyLimit:      cfg.HTTP.BodyLimit,
	}, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("env", cfg.Env).
		Str("store", cfg.Store).
		Bool("auth", cfg.AuthEnabled()).
		Bool("idempotency", claims != nil).
		Msg("server listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		mem := memory.NewStore(cfg.Orders.TicketStart)
		return &stores{
			users:   mem.Users(),
			orders:  mem.Orders(),
			tickets: mem.Counters(),
			close:   func(context.Context) {},
		}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, err
	}

	userRepo := mongo.NewUserRepository(db)
	orderRepo := mongo.NewOrderRepository(db)
	if err := mongo.EnsureIndexes(ctx, userRepo, orderRepo); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	return &stores{
		users:   userRepo,
		orders:  orderRepo,
		tickets: mongo.NewCounterRepository(db, cfg.Orders.TicketStart),
		db:      db,
		close: func(ctx context.Context) {
			_ = client.Disconnect(ctx)
		},
	}, nil
}
