package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweater-ventures/courier/api"
	"github.com/sweater-ventures/courier/app"
	"github.com/sweater-ventures/courier/config"
	"github.com/sweater-ventures/courier/middleware"
)

func main() {
	config.InitLogging()
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Unable to load configuration!!!", err)
	}

	if appConfig == nil {
		log.Fatal("Nil AppConfig, WTF")
	}

	application, err := app.NewApp(appConfig)
	if err != nil {
		log.Fatal("Unable to initialize application", err)
	}
	defer application.Close()

	slog.Debug("Configuration",
		"DevMode", appConfig.DevMode,
		"LogLevel", appConfig.LogLevel,
		"DeliveryWorkers", appConfig.DeliveryWorkers,
	)

	router := http.NewServeMux()
	api.AddApis(application, router)

	// Start the delivery pipeline: worker pool first, then the retry
	// scheduler that feeds it. The scheduler's startup sweep resumes any
	// deliveries a previous process left behind.
	dispatcher := app.StartDispatcher(application)
	stopScheduler := app.StartRetryScheduler(application, dispatcher)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", appConfig.Port),
		Handler: middleware.AllStandardMiddleware(middleware.BearerAuthMiddleware(application)(router)),
	}

	// Listen for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Starting Courier", "port", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-sigChan
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Stop the scheduler before the dispatcher so nothing submits work to a
	// closing pool. application.Close() then runs via defer:
	// 1. Closes DeliveryChan (dispatcher stops accepting)
	// 2. Workers drain in-flight deliveries within the grace period
	// 3. DB pool closes
	stopScheduler()
	slog.Info("Shutdown complete")
}
