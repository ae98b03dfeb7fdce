package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"osint-challenge-service/internal/app"
	"osint-challenge-service/internal/config"
	"osint-challenge-service/internal/infra/memory"
	"osint-challenge-service/internal/infra/postgres"
	infraredis "osint-challenge-service/internal/infra/redis"
	"osint-challenge-service/internal/logger"
	transport "osint-challenge-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the challenge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// catalogLoader is what both the YAML and Postgres catalogs provide.
type catalogLoader interface {
	memory.ChallengeLoader
	app.ChallengeLister
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	attemptTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var opts []app.Option
	var loader catalogLoader
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = postgres.NewChallengeLoader(pool)

		db := openBunDB(cfg.Postgres.URL)
		defer db.Close()
		archive := postgres.NewCertificateStore(db)
		opts = append(opts, app.WithCertificateSinks(archive), app.WithCertificateArchive(archive))
	} else {
		static, err := memory.LoadCatalogFile(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		loader = static
	}
	opts = append(opts, app.WithChallengeLister(loader), app.WithLogger(log))

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var challenges app.ChallengeRepository
	var store app.AttemptRepository
	if redisClient != nil {
		challenges = infraredis.NewChallengeRepository(redisClient, loader, catalogTTL)
		store = infraredis.NewAttemptStore(redisClient, attemptTTL)
		opts = append(opts, app.WithCertificateSinks(infraredis.NewCertificatePublisher(redisClient, cfg.Redis.Channel)))
	} else {
		challenges = memory.NewChallengeRepository(loader, catalogTTL)
		store = memory.NewAttemptStore()
	}

	service := app.NewChallengeService(store, challenges, opts...)
	router := transport.NewRouter(service, transport.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Identity:       transport.NewIdentity(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Logger:         log,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting challenge service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
