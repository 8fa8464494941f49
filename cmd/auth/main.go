package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/config"
	httptransport "github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/http"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/http/handler"
	httpmiddleware "github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/http/middleware"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/lockout"
	apimiddleware "github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/middleware"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/pin"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/repository"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/server"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/service"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/telemetry"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/token"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newPGXPool,
			newStaffRepository,
			newPinHasher,
			newTokenIssuer,
			newLockoutPolicy,
			newAuthService,
			newRateLimiter,
			handler.NewAuthHandler,
			newAuthMiddleware,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newStaffRepository(pool *pgxpool.Pool) repository.StaffRepository {
	return repository.NewPostgresStaffRepo(pool)
}

func newPinHasher() *pin.Hasher {
	return pin.NewHasher(pin.DefaultParams)
}

func newTokenIssuer(cfg config.Config) (*token.Issuer, error) {
	return token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
}

func newLockoutPolicy(cfg config.Config) lockout.Policy {
	return lockout.NewPolicy(cfg.LockoutThreshold, cfg.LockoutDuration)
}

func newAuthService(
	staff repository.StaffRepository,
	hasher *pin.Hasher,
	tokens *token.Issuer,
	policy lockout.Policy,
	logger *zap.Logger,
) *service.AuthService {
	return service.NewAuthService(staff, hasher, tokens, policy, logger)
}

func newRateLimiter(lc fx.Lifecycle, cfg config.Config) *apimiddleware.RateLimiter {
	rl := apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			rl.Stop()
			return nil
		},
	})
	return rl
}

func newAuthMiddleware(authService *service.AuthService) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{AuthService: authService}
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
