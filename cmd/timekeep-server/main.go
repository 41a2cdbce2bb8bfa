package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/yndnr/timekeep-go/internal/core/domain"
	"github.com/yndnr/timekeep-go/internal/core/service"
	"github.com/yndnr/timekeep-go/internal/infra/buildinfo"
	"github.com/yndnr/timekeep-go/internal/infra/confloader"
	"github.com/yndnr/timekeep-go/internal/infra/shutdown"
	"github.com/yndnr/timekeep-go/internal/server/config"
	"github.com/yndnr/timekeep-go/internal/server/httpserver"
	"github.com/yndnr/timekeep-go/internal/server/httpserver/handler"
	"github.com/yndnr/timekeep-go/internal/storage"
	"github.com/yndnr/timekeep-go/internal/storage/kv"
	"github.com/yndnr/timekeep-go/internal/storage/redisstore"
	"github.com/yndnr/timekeep-go/internal/telemetry/logger"
	"github.com/yndnr/timekeep-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("timekeep-server " + buildinfo.String())
		return nil
	}

	// Load configuration
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger
	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting timekeep-server",
		"version", info.Version,
		"commit", info.Commit,
		"config_file", *configFile,
		"config", config.Sanitize(cfg))

	ctx := context.Background()
	registry := metric.NewRegistry()

	// Initialize storage engine
	engine, err := initStorage(ctx, cfg, log, registry)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize services
	authSvc, timerSvc, err := initServices(cfg, engine, registry)
	if err != nil {
		engine.Close()
		return fmt.Errorf("init services: %w", err)
	}

	// Create HTTP server
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler:        handler.New(authSvc, timerSvc, engine, log.Slog()),
		Resolver:       authSvc,
		Logger:         log,
		Metrics:        registry,
		MetricsHandler: metricsHandler(cfg, registry),
	})
	httpServer, err := httpserver.New(&httpserver.Config{
		Addr:         cfg.Server.HTTP.Addr,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		TLSCertFile:  cfg.Server.HTTP.TLSCertFile,
		TLSKeyFile:   cfg.Server.HTTP.TLSKeyFile,
		Logger:       log.Slog(),
	}, router)
	if err != nil {
		engine.Close()
		return fmt.Errorf("init http server: %w", err)
	}

	// Setup graceful shutdown; hooks run in reverse order of registration
	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout, log.Slog())
	shutdownHandler.OnShutdown("storage", func(context.Context) error {
		return engine.Close()
	})
	shutdownHandler.OnShutdown("http", httpServer.Shutdown)

	// Background watchers stop with the server
	watchCtx, stopWatchers := context.WithCancel(ctx)
	shutdownHandler.OnShutdown("watchers", func(context.Context) error {
		stopWatchers()
		return nil
	})
	if httpServer.TLSEnabled() {
		go func() {
			if err := httpServer.WatchCertificates(watchCtx); err != nil {
				log.Error("certificate watcher stopped", "error", err)
			}
		}()
	}
	if *configFile != "" {
		stop, err := watchConfig(*configFile, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return stop()
			})
		}
	}

	// Start HTTP server
	serveErr := serveHTTP(httpServer, shutdownHandler.Trigger, log)

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	if err := serveError(serveErr); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

type listenServer interface {
	ListenAndServe() error
}

// serveHTTP runs srv in the background. A serve failure triggers shutdown
// and is delivered on the returned channel before the trigger fires.
func serveHTTP(srv listenServer, trigger func(reason string), log logger.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			errCh <- err
			trigger("http server failed")
		}
	}()
	return errCh
}

// serveError returns the serve failure, if any, without blocking.
func serveError(errCh <-chan error) error {
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// loadConfig loads configuration from defaults, file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stdout,
		Service: "timekeep-server",
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// initStorage opens the configured storage engine and registers its
// metrics.
func initStorage(ctx context.Context, cfg *config.ServerConfig, log logger.Logger, registry *metric.Registry) (*storage.Engine, error) {
	storageCfg := storage.DefaultConfig(cfg.Storage.DataDir)
	storageCfg.Backend = cfg.Storage.Engine
	storageCfg.DSN = cfg.Storage.DSN
	storageCfg.CleanupInterval = cfg.Storage.CleanupInterval
	storageCfg.Badger = kv.Config{
		GCInterval:  cfg.Storage.Badger.GCInterval,
		GCThreshold: cfg.Storage.Badger.GCThreshold,
		SyncWrites:  cfg.Storage.Badger.SyncWrites,
	}
	storageCfg.SessionStore = cfg.Sessions.Store
	storageCfg.Redis = redisstore.Config{
		Addr:      cfg.Sessions.Redis.Addr,
		Password:  cfg.Sessions.Redis.Password,
		DB:        cfg.Sessions.Redis.DB,
		KeyPrefix: cfg.Sessions.Redis.KeyPrefix,
	}
	storageCfg.Logger = log.Slog()
	storageCfg.Registry = registry.Registerer()

	engine, err := storage.Open(ctx, storageCfg)
	if err != nil {
		return nil, err
	}

	if err := registry.Registerer().Register(metric.NewStorageCollector(engine, engine.Backend())); err != nil {
		engine.Close()
		return nil, fmt.Errorf("register storage collector: %w", err)
	}
	return engine, nil
}

// initServices builds the domain services on top of the engine.
func initServices(cfg *config.ServerConfig, engine *storage.Engine, observer service.Observer) (*service.AuthService, *service.TimerService, error) {
	digester, err := domain.NewDigester(cfg.Security.PasswordDigest)
	if err != nil {
		return nil, nil, err
	}

	authSvc := service.NewAuthService(engine.Users(), engine.Sessions(), &service.AuthServiceConfig{
		SessionTTL: cfg.Sessions.TTL,
		Digester:   digester,
		Observer:   observer,
	})
	timerSvc := service.NewTimerService(engine.Timers(), &service.TimerServiceConfig{
		EnforceOwnership: cfg.Timers.EnforceOwnership,
		Observer:         observer,
	})

	logger.Info("services initialized",
		"password_digest", digester.Algorithm(),
		"session_ttl", cfg.Sessions.TTL,
		"enforce_ownership", cfg.Timers.EnforceOwnership)
	return authSvc, timerSvc, nil
}

func metricsHandler(cfg *config.ServerConfig, registry *metric.Registry) http.Handler {
	if !cfg.Server.Metrics.Enabled {
		return nil
	}
	return registry.Handler()
}

// watchConfig re-reads the config file on change and applies the new log
// level. Other settings need a restart.
func watchConfig(path string, log logger.Logger) (stop func() error, err error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w.Stop, nil
}
