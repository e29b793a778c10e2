package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creditedge/backend/internal/config"
	"github.com/creditedge/backend/internal/db"
	accountdomain "github.com/creditedge/backend/internal/domain/account"
	applicationdomain "github.com/creditedge/backend/internal/domain/application"
	"github.com/creditedge/backend/internal/jobs"
	"github.com/creditedge/backend/internal/ledger"
	"github.com/creditedge/backend/internal/observability"
	postgresrepo "github.com/creditedge/backend/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	writer, err := ledger.NewWriterFromConfig(cfg)
	if err != nil {
		logger.Error("failed to build ledger writer", "err", err)
		os.Exit(1)
	}

	worker := jobs.NewWorker(postgresrepo.NewOutboxRepository(pool), writer)

	policy, err := accountdomain.ParseOverpaymentPolicy(cfg.OverpaymentPolicy)
	if err != nil {
		logger.Error("invalid overpayment policy", "err", err)
		os.Exit(1)
	}

	clientRepo := postgresrepo.NewClientRepository(pool)
	productRepo := postgresrepo.NewProductRepository(pool)
	applicationRepo := postgresrepo.NewApplicationRepository(pool)
	accountRepo := postgresrepo.NewAccountRepository(pool)
	outboxRepo := postgresrepo.NewOutboxRepository(pool)

	applicationService := applicationdomain.NewService(applicationRepo, clientRepo, productRepo)
	accountService := accountdomain.NewService(accountRepo, applicationService, productRepo, outboxRepo, policy, cfg.OverdueLateFeeBPS, cfg.CurrencyCode)

	interval := cfg.WorkerPollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweep := jobs.NewOverdueSweep(accountService, logger, cfg.SweepInterval, cfg.SweepBatchSize)
	go sweep.Run(sigCtx)

	logger.Info("worker started", "interval", interval.String(), "batch_size", cfg.WorkerBatchSize)
	for {
		select {
		case <-sigCtx.Done():
			logger.Info("worker stopped")
			return
		case <-ticker.C:
			runCtx, runCancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := worker.RunOnce(runCtx, cfg.WorkerBatchSize)
			runCancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker run failed", "err", err)
			}
		}
	}
}
