package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"reading-hero-service/internal/app"
	"reading-hero-service/internal/config"
	"reading-hero-service/internal/domain"
	"reading-hero-service/internal/generator"
	"reading-hero-service/internal/infra/memory"
	pgprogress "reading-hero-service/internal/infra/postgres"
	redisprogress "reading-hero-service/internal/infra/redis"
	"reading-hero-service/internal/infra/sqlite"
	"reading-hero-service/internal/progress"
	transport "reading-hero-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the reading quiz server",
		Example: "  reading-hero start --backend sqlite\n  PROGRESS_BACKEND=redis reading-hero start --port 9090",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, backend)
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "", "progress backend override: memory, redis, postgres or sqlite")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag, backendFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if backendFlag != "" {
		cfg.Progress.Backend = backendFlag
	}
	logFile := setupLogging(cfg)
	defer logFile.Close()
	printBanner()

	if cfg.Progress.Backend == "postgres" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	profiles := progress.NewRegistry(backend, cfg.Progress.Key)
	wsHandler := transport.NewWSHandler(profiles, newGenerator(cfg))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/api/catalog", transport.ServeCatalog)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting reading hero on :%s (progress backend %s)", finalPort, cfg.Progress.Backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openBackend connects the configured progress backend.
func openBackend(ctx context.Context, cfg config.Config) (progress.Backend, func(), error) {
	switch cfg.Progress.Backend {
	case "memory":
		return memory.NewProgressStore(), func() {}, nil
	case "redis":
		if cfg.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("redis backend selected but redis.addr is empty")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redisprogress.NewProgressStore(client, cfg.Redis.Prefix, config.TTLDuration(cfg.Redis.TTL, 0))
		if err := store.Ping(ctx); err != nil {
			// Stores stay unloaded and hold changes in memory until a load succeeds.
			log.Printf("redis unreachable at %s: %v", cfg.Redis.Addr, err)
		}
		return store, func() { _ = client.Close() }, nil
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("postgres backend selected but postgres.url is empty")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return pgprogress.NewProgressStore(pool), pool.Close, nil
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown progress backend %q", cfg.Progress.Backend)
	}
}

// newGenerator picks Gemini when an API key is configured and the built-in
// story otherwise, behind the shared rate limit.
func newGenerator(cfg config.Config) app.Generator {
	var source generator.Source
	if cfg.UseGemini() {
		source = generator.NewGemini(generator.GeminiConfig{
			URL:     cfg.Generator.URL,
			Model:   cfg.Generator.Model,
			APIKey:  cfg.Generator.APIKey,
			Timeout: config.TTLDuration(cfg.Generator.Timeout, 60*time.Second),
		})
		log.Printf("quiz generator: gemini")
	} else {
		source = generator.NewStatic(domain.QuizDocument{})
		log.Printf("quiz generator: built-in story (no API key configured)")
	}
	return generator.NewThrottled(source, cfg.Generator.RatePerMinute, cfg.Generator.Burst)
}
