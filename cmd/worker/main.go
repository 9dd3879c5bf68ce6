package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/BenAnderson8181/BusApp/internal/infra"
	"github.com/BenAnderson8181/BusApp/internal/metrics"
	"github.com/BenAnderson8181/BusApp/internal/notify"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// worker delivers the transactional mails queued by the console.
func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	sender := notify.NewReliableSender(
		notify.NewResendClient(cfg.Mail.BaseURL, cfg.Mail.APIKey, cfg.Mail.Timeout),
		notify.ReliabilityOptions{
			RatePerSecond: cfg.Mail.RatePerSecond,
			CallTimeout:   cfg.Mail.Timeout,
			CBMaxRequests: cfg.Mail.CBMaxRequests,
			CBInterval:    cfg.Mail.CBInterval,
			CBTimeout:     cfg.Mail.CBTimeout,
		}, m)

	mux := asynq.NewServeMux()
	mux.Handle(notify.TypeWelcomeEmail, notify.NewWelcomeHandler(sender, cfg.Mail.From, cfg.Mail.AppURL, m, logger))

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues:      map[string]int{cfg.Worker.Queue: 1},
		},
	)
	if err := srv.Start(mux); err != nil {
		logger.Fatal("worker start", zap.Error(err))
	}
	logger.Info("worker started", zap.String("queue", cfg.Worker.Queue))

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("worker stopping")
	srv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	logger.Info("worker exited properly")
}
