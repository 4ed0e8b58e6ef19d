package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shield-quiz-service/internal/app"
	"shield-quiz-service/internal/config"
	"shield-quiz-service/internal/infra/jsonfile"
	"shield-quiz-service/internal/infra/memory"
	"shield-quiz-service/internal/infra/postgres"
	redislock "shield-quiz-service/internal/infra/redis"
	"shield-quiz-service/internal/logger"
	transport "shield-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type backends struct {
	source   memory.CatalogSource
	attempts app.AttemptRepository
	audit    interface {
		app.AuditRepository
		app.ArticleRepository
	}
	locker  app.AttemptLocker
	closers []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	policy, err := app.ParsePolicy(cfg.Engine.QuestionOwnership, cfg.Engine.AfterCompletion)
	if err != nil {
		return err
	}

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	catalog := memory.NewCatalog(b.source, log)
	if _, err := catalog.Reload(ctx); err != nil {
		return err
	}

	engine := app.NewAttemptEngine(catalog, b.attempts, b.locker, app.WithPolicy(policy))
	handler := transport.NewHandler(
		engine,
		app.NewCatalogService(catalog),
		app.NewAccountService(b.audit, app.BcryptHasher),
		app.NewNewsService(b.audit),
		log,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	router := transport.NewRouter(handler, transport.RouterOptions{
		Logger:      log,
		Metrics:     transport.NewMetrics(registry),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	for {
		select {
		case <-reload:
			if n, err := catalog.Reload(ctx); err != nil {
				log.Error("catalog reload failed", zap.Error(err))
			} else {
				log.Info("catalog reloaded", zap.Int("quizzes", n))
			}
			continue
		case err := <-serveErr:
			log.Error("server failed", zap.Error(err))
			return fmt.Errorf("serve %s: %w", server.Addr, err)
		case <-stop:
			log.Info("shutting down server")
		case <-ctx.Done():
			log.Info("context canceled, shutting down server")
		}
		break
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openBackends picks Postgres and Redis when configured and in-memory stores otherwise.
func openBackends(ctx context.Context, cfg config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{}

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return nil, err
		}
		db := postgres.Open(cfg.Postgres.URL)
		b.closers = append(b.closers, func() { _ = db.Close() })

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)

		b.source = postgres.NewCatalogLoader(pool)
		b.attempts = postgres.NewAttemptStore(db)
		b.audit = postgres.NewAuditStore(db)
	} else {
		if _, err := os.Stat(cfg.Catalog.File); err == nil {
			b.source = jsonfile.NewCatalogSource(cfg.Catalog.File)
		} else {
			log.Warn("no catalog file and no postgres configured; serving an empty catalog",
				zap.String("file", cfg.Catalog.File))
			b.source = memory.NewStaticCatalogSource()
		}
		b.attempts = memory.NewAttemptStore()
		b.audit = memory.NewAuditStore()
		log.Info("using in-memory attempt and audit stores")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.locker = redislock.NewAttemptLocker(client,
			config.Duration(cfg.Redis.LockTTL, 5*time.Second),
			config.Duration(cfg.Redis.LockWait, 2*time.Second))
	} else {
		b.locker = memory.NewAttemptLocker()
	}
	return b, nil
}
