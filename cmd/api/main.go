package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/redmonkez12/taskdesk/docs" // Swagger docs (generated)
	"github.com/redmonkez12/taskdesk/internal/auth"
	"github.com/redmonkez12/taskdesk/internal/config"
	"github.com/redmonkez12/taskdesk/internal/database"
	"github.com/redmonkez12/taskdesk/internal/email"
	httpServer "github.com/redmonkez12/taskdesk/internal/http"
	"github.com/redmonkez12/taskdesk/internal/logging"
	"github.com/redmonkez12/taskdesk/internal/profile"
	"github.com/redmonkez12/taskdesk/internal/ratelimit"
	"github.com/redmonkez12/taskdesk/internal/task"
	"github.com/redmonkez12/taskdesk/internal/user"
)

// @title           Taskdesk API
// @version         1.0
// @description     Personal task manager with bearer-token accounts.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"token_format", cfg.Auth.TokenFormat,
	)

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := openStores(startupCtx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer stores.close()
	logger.Info("database connected", "driver", cfg.Database.Driver)

	redisClient, err := initRedis(startupCtx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	rateLimiter := ratelimit.NewLimiter(redisClient)
	passwordResetRepo := auth.NewPasswordResetRepository(redisClient)

	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(auth.DefaultArgon2Params)
	if err != nil {
		return fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	emailService := email.NewService(cfg.Email, logger)

	authService := auth.NewService(
		stores.users,
		tokenService,
		hasher,
		passwordResetRepo,
		emailService,
		logger,
		cfg.Auth.TokenDuration,
	)

	exposeInternal := cfg.Server.IsDevelopment()
	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Auth:           auth.NewHandler(authService, rateLimiter, exposeInternal),
		AuthMiddleware: auth.NewMiddleware(tokenService, stores.users, exposeInternal),
		Tasks:          task.NewHandler(task.NewService(stores.tasks), exposeInternal),
		Profile:        profile.NewHandler(profile.NewService(stores.users, authService), exposeInternal),
		Database:       stores.users,
	}, rateLimiter, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

type storage struct {
	users user.Repository
	tasks task.Repository
	close func()
}

// openStores connects the configured backend and prepares its schema or indexes.
func openStores(ctx context.Context, cfg config.DatabaseConfig) (*storage, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &storage{
			users: user.NewMongoRepository(db),
			tasks: task.NewMongoRepository(db),
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverPostgres, config.DriverSQLite:
		var (
			db  *bun.DB
			err error
		)
		if cfg.Driver == config.DriverPostgres {
			db, err = database.OpenPostgres(ctx, cfg)
		} else {
			db, err = database.OpenSQLite(ctx, cfg.SQLitePath)
		}
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &storage{
			users: user.NewBunRepository(db),
			tasks: task.NewBunRepository(db),
			close: func() { _ = db.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
