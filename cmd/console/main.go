package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/BenAnderson8181/BusApp/internal/audit"
	"github.com/BenAnderson8181/BusApp/internal/console/handler"
	"github.com/BenAnderson8181/BusApp/internal/console/server"
	"github.com/BenAnderson8181/BusApp/internal/console/service"
	"github.com/BenAnderson8181/BusApp/internal/gate"
	"github.com/BenAnderson8181/BusApp/internal/infra"
	"github.com/BenAnderson8181/BusApp/internal/infra/auth"
	"github.com/BenAnderson8181/BusApp/internal/metrics"
	"github.com/BenAnderson8181/BusApp/internal/notify"
	"github.com/BenAnderson8181/BusApp/internal/policy"
	"github.com/BenAnderson8181/BusApp/internal/repository/postgres"
	"github.com/BenAnderson8181/BusApp/internal/storage"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

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

	if err := run(cfg, logger); err != nil {
		logger.Fatal("console stopped", zap.Error(err))
	}
}

func run(cfg *infra.Config, logger *zap.Logger) error {
	// Cancelled on SIGINT/SIGTERM; stops the catalog listener and triggers shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Resources
	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	repo := postgres.NewRepo(pool)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	pubKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		return fmt.Errorf("identity provider key: %w", err)
	}
	validator := auth.NewBaseValidator(pubKey, cfg.Auth.Issuer, cfg.Auth.Audience)

	// 2. Policy catalog: cold load, then follow refresh broadcasts
	catalog := policy.NewCatalog(repo, rdb, logger)
	if err := catalog.Refresh(ctx); err != nil {
		return fmt.Errorf("policy catalog: %w", err)
	}
	go catalog.StartListener(ctx)

	// 3. Async side effects
	queueClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer queueClient.Close()
	mailQueue := notify.NewQueue(queueClient, cfg.Worker.Queue, logger)

	consentLog := audit.NewConsentLog(repo, audit.Options{
		BufferSize:    cfg.Audit.BufferSize,
		BatchSize:     cfg.Audit.BatchSize,
		FlushInterval: cfg.Audit.FlushInterval,
	}, m, logger)
	consentLog.Start()
	defer consentLog.Stop()

	uploads, err := storage.NewS3Store(ctx, storage.Options{
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PresignTTL:      cfg.Storage.PresignTTL,
	})
	if err != nil {
		return err
	}

	// 4. Services
	accounts := service.NewAccountService(repo, mailQueue, logger)
	companies := service.NewCompanyService(repo, accounts, logger)
	ledger := service.NewLedgerService(repo, repo, catalog, consentLog, m, logger)
	documents := service.NewDocumentService(repo, uploads, accounts, logger)
	fleet := service.NewFleetService(repo, accounts, logger)
	policies := service.NewPolicyService(catalog, repo, logger)
	audits := service.NewAuditService(repo)
	evaluator := gate.NewEvaluator(accounts, catalog, repo, m, logger)

	// 5. HTTP
	api := server.NewConsoleServer(logger, validator, accounts, reg, m, server.Handlers{
		Gate:     handler.NewGateHandler(evaluator, accounts, logger),
		Account:  handler.NewAccountHandler(accounts, logger),
		Company:  handler.NewCompanyHandler(companies, logger),
		Policy:   handler.NewPolicyHandler(policies, logger),
		Ledger:   handler.NewLedgerHandler(ledger, evaluator, logger),
		Document: handler.NewDocumentHandler(documents, logger),
		Fleet:    handler.NewFleetHandler(fleet, logger),
		Audit:    handler.NewAuditHandler(audits, logger),
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 6. gRPC health for orchestrators
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("console api started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("grpc health started", zap.Int("port", cfg.GRPC.Port))
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	// 7. Graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
	}
	logger.Info("console stopping")
	healthSrv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()
	logger.Info("console exited properly")
	return nil
}
