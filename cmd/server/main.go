// Command server runs the form fields HTTP API
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ericfitz/formfields/api"
	"github.com/ericfitz/formfields/internal/config"
	"github.com/ericfitz/formfields/internal/dbconn"
	"github.com/ericfitz/formfields/internal/slogging"
	"github.com/ericfitz/formfields/internal/telemetry"
	"github.com/ericfitz/formfields/internal/uuidgen"
	"github.com/gin-gonic/gin"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	shutdownTimeout     = 10 * time.Second
	databasePingTimeout = 5 * time.Second
)

func main() {
	configFile, generateConfig, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}
	if generateConfig {
		if err := config.GenerateExampleConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := slogging.Initialize(slogging.Config{
		Level:            cfg.GetLogLevel(),
		IsDev:            cfg.Logging.IsDev,
		LogDir:           cfg.Logging.LogDir,
		MaxAgeDays:       cfg.Logging.MaxAgeDays,
		MaxSizeMB:        cfg.Logging.MaxSizeMB,
		MaxBackups:       cfg.Logging.MaxBackups,
		AlsoLogToConsole: cfg.Logging.AlsoLogToConsole,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger := slogging.Get()
	defer func() { _ = logger.Close() }()

	if err := run(cfg); err != nil {
		logger.Error("Server exited with error: %v", err)
		_ = logger.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := slogging.Get()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := dbconn.NewGormDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := gdb.Close(); err != nil {
			logger.Error("Error closing database: %v", err)
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(ctx, databasePingTimeout)
	err = gdb.Ping(pingCtx)
	cancelPing()
	if err != nil {
		return fmt.Errorf("database is not reachable: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := gdb.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	tel, err := telemetry.NewService(telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		MetricsEnabled: cfg.Telemetry.MetricsEnabled,
	})
	if err != nil {
		return err
	}

	var fieldStore api.FieldStore = api.NewGormFieldStore(gdb.DB())
	if cfg.CacheEnabled() {
		client, err := dbconn.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		if err := tel.InstrumentRedis(client); err != nil {
			return err
		}
		fieldStore = api.NewCachedFieldStore(fieldStore, client, cfg.Redis.CacheTTL)
		logger.Info("Field definition cache enabled (ttl=%s)", cfg.Redis.CacheTTL)
	}

	ids, err := uuidgen.NewGenerator(cfg.Forms.FormIDStrategy)
	if err != nil {
		return err
	}

	fieldService := api.NewFieldService(fieldStore, tel.Forms())
	formService := api.NewFormService(fieldStore, api.NewGormFormStore(gdb.DB()), ids, tel.Forms())

	if cfg.Logging.IsDev {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(slogging.LoggerMiddleware())
	r.Use(slogging.Recoverer())
	r.Use(tel.HTTP().Middleware())

	server := api.NewServer(fieldService, formService, api.ServerConfig{
		MaxBodyBytes:   cfg.Forms.MaxBodyBytes,
		MetricsHandler: tel.Handler(),
	})
	server.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.ListenAddress(),
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting formfields %s on %s (database=%s)", version, srv.Addr, gdb.DatabaseType())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down telemetry: %v", err)
	}

	logger.Info("Server gracefully stopped")
	return nil
}
