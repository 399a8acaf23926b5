// Command todolist serves the todo/tag REST API and provides admin
// subcommands for maintenance.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	cfhttp "github.com/Strob0t/todolist/internal/adapter/http"
	cfmcp "github.com/Strob0t/todolist/internal/adapter/mcp"
	cfnats "github.com/Strob0t/todolist/internal/adapter/nats"
	"github.com/Strob0t/todolist/internal/adapter/natskv"
	cfotel "github.com/Strob0t/todolist/internal/adapter/otel"
	"github.com/Strob0t/todolist/internal/adapter/ristretto"
	"github.com/Strob0t/todolist/internal/adapter/tiered"
	"github.com/Strob0t/todolist/internal/adapter/ws"
	"github.com/Strob0t/todolist/internal/config"
	"github.com/Strob0t/todolist/internal/logger"
	"github.com/Strob0t/todolist/internal/middleware"
	"github.com/Strob0t/todolist/internal/port/cache"
	"github.com/Strob0t/todolist/internal/port/messagequeue"
	"github.com/Strob0t/todolist/internal/resilience"
	"github.com/Strob0t/todolist/internal/service"
)

var version = "dev"

// idempotencyL1Expire bounds how long a replayed response lives in the local
// L1 when NATS KV is the shared L2.
const idempotencyL1Expire = 5 * time.Minute

func main() {
	var err error
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		err = runAdmin(os.Args[2:])
	} else {
		err = run(os.Args[1:])
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return err
	}
	cfg, cfgPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"file", cfgPath,
		"app_env", cfg.AppEnv,
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"log_level", cfg.Logging.Level,
		"nats", cfg.NATS.URL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---
	shutdownOTel, err := cfotel.Setup(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := cfotel.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---
	db, err := openBackend(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer db.close()

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer l1.Close()
	var idemCache cache.Cache = l1

	var queue messagequeue.Queue
	var health cfhttp.HealthDeps
	if cfg.NATS.URL != "" {
		q, err := cfnats.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = q.Close() }()
		queue = q
		health.Queue = q

		kv, err := q.KeyValue(ctx, cfg.Idempotency.Bucket, cfg.Idempotency.TTL)
		if err != nil {
			return fmt.Errorf("idempotency store: %w", err)
		}
		idemCache = tiered.New(l1, natskv.New(kv), idempotencyL1Expire)
	} else {
		slog.Info("nats disabled, change events go to websocket clients only")
	}

	breaker := resilience.NewBreaker("nats-publish", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	hub := ws.NewHub(strings.Split(cfg.Server.CORSOrigin, ","), 0)
	defer hub.Close()

	// --- Services ---
	notifier := service.NewNotifier(hub, queue, breaker, metrics)
	todoSvc := service.NewTodoService(db.store, notifier, metrics)
	tagSvc := service.NewTagService(db.store, notifier, metrics)
	adminSvc := service.NewAdminService(db.store, notifier, metrics)

	health.Store = db.store
	health.Hub = hub
	health.Breaker = breaker

	// --- HTTP ---
	r := chi.NewRouter()

	r.Use(cfhttp.SecurityHeaders)
	r.Use(cfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cfotel.HTTPMiddleware(cfg.OTel.ServiceName))
	r.Use(cfhttp.Logger)

	// Long-lived; kept outside the request timeout.
	r.Get("/ws", hub.HandleWS)

	r.Group(func(api chi.Router) {
		api.Use(chimw.Timeout(cfg.Server.RequestTimeout))

		api.Get("/health", cfhttp.HealthHandler(health))

		if cfg.MCP.Enabled {
			mcpSrv := cfmcp.NewServer(cfmcp.ServerConfig{
				Name:    "todolist",
				Version: version,
				Path:    cfg.MCP.Path,
			}, cfmcp.ServerDeps{Todos: todoSvc, Tags: tagSvc})
			api.Handle(mcpSrv.Path(), mcpSrv.Handler())
			slog.Info("mcp server mounted", "path", mcpSrv.Path())
		}

		api.Group(func(rest chi.Router) {
			rest.Use(middleware.Idempotency(idemCache, cfg.Idempotency.TTL))
			cfhttp.MountRoutes(rest, &cfhttp.Handlers{
				Todos: todoSvc,
				Tags:  tagSvc,
				Admin: adminSvc,
			}, cfhttp.RouteOptions{ClearAllEnabled: cfg.ClearAllAllowed()})
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
