package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/farmconnect/internal/config"
	"github.com/Skotchmaster/farmconnect/internal/httpserver"
	"github.com/Skotchmaster/farmconnect/internal/imagestore"
	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/metrics"
	loggingmw "github.com/Skotchmaster/farmconnect/internal/middleware/logging"
	"github.com/Skotchmaster/farmconnect/internal/ministry"
	"github.com/Skotchmaster/farmconnect/internal/mykafka"
	"github.com/Skotchmaster/farmconnect/internal/persist"
	"github.com/Skotchmaster/farmconnect/internal/recipe"
	"github.com/Skotchmaster/farmconnect/internal/service"
	"github.com/Skotchmaster/farmconnect/internal/store"
)

func serveCmd() *cobra.Command {
	var port int
	var async bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port > 0 {
				cfg.ServerPort = port
			}
			return runServe(cfg, async)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides SERVER_PORT)")
	cmd.Flags().BoolVar(&async, "async-hydrate", false, "serve before the persisted cart has been loaded")

	return cmd
}

func runServe(cfg config.Config, asyncHydrate bool) error {
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	openCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	storage, err := persist.Open(openCtx, cfg.StorageDSN)
	cancel()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Error("storage_close_error", "error", err)
		}
	}()

	bg, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	s := store.New(store.WithLogger(logger))

	adapter := persist.NewAdapter(storage, cfg.StorageKey, logger)
	var ready atomic.Bool
	if asyncHydrate {
		done := adapter.HydrateAsync(bg, s)
		go func() {
			if err := <-done; err == nil {
				ready.Store(true)
			}
		}()
	} else {
		if err := adapter.Hydrate(bg, s); err != nil {
			return fmt.Errorf("hydrate: %w", err)
		}
		ready.Store(true)
	}
	adapter.Attach(s)
	adapter.Start(bg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(reg)
	collector.Attach(s)

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 0, logger)
		producer.Start(bg)
		mykafka.Attach(s, producer, logger)
	}

	svc := &service.FarmService{
		Store:    s,
		Recipes:  recipe.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, logger),
		Ministry: ministry.NewPlaceholder(logger, uint64(time.Now().UnixNano())),
	}
	images, err := imagestore.Open(bg, cfg.ImageBucketURL, logger)
	if err != nil {
		logger.Warn("image_store_unavailable", "url", cfg.ImageBucketURL, "error", err)
	} else {
		svc.Images = images
		defer images.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		Handler:  &httpserver.FarmHTTP{Svc: svc, Store: s, Metrics: collector},
		Gatherer: reg,
		Ready:    ready.Load,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-sigCtx.Done():
		logger.Info("shutting_down")
	case err := <-errCh:
		serveErr = fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	stopBackground()
	adapter.WaitClosed()
	if producer != nil {
		producer.WaitClosed()
	}

	logger.Info("shutdown_complete")
	return serveErr
}
