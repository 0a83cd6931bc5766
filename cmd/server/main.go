package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/auth"
	"github.com/milkbook/milkbook/internal/config"
	"github.com/milkbook/milkbook/internal/repository"
	"github.com/milkbook/milkbook/internal/repository/sheets"
	"github.com/milkbook/milkbook/internal/scheduler"
	"github.com/milkbook/milkbook/internal/server/handlers"
	"github.com/milkbook/milkbook/internal/server/router"
	dairysvc "github.com/milkbook/milkbook/internal/service/dairy"
	identitysvc "github.com/milkbook/milkbook/internal/service/identity"
	reportingsvc "github.com/milkbook/milkbook/internal/service/reporting"
	smsclient "github.com/milkbook/milkbook/pkg/clients/sms"
	"github.com/milkbook/milkbook/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := repository.Open(context.Background(), cfg.Storage, baseLogger.Named("repo"))
	if err != nil {
		baseLogger.Fatal("failed to init storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	loc := cfg.Location()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL)
	identitySvc := identitysvc.NewService(store, tokens, baseLogger.Named("svc.identity"))
	dairySvc := dairysvc.NewService(store, cfg.Pricing.DefaultPricePerLiter, loc, baseLogger.Named("svc.dairy"))
	reportingSvc := reportingsvc.NewService(dairySvc, loc, baseLogger.Named("svc.reporting"))

	var gateway smsclient.Client
	if cfg.SMS.Enabled() {
		gateway = smsclient.NewClient(cfg.SMS)
		baseLogger.Info("sms gateway enabled")
	} else {
		baseLogger.Warn("sms gateway not configured, outbound dispatch disabled")
	}

	var exporter sheets.Exporter
	if cfg.Sheets.Enabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("sheets export enabled")
	}

	engine := router.New(router.Handlers{
		Auth:     handlers.NewAuthHandler(identitySvc, baseLogger.Named("handlers.auth")),
		Customer: handlers.NewCustomerHandler(dairySvc, baseLogger.Named("handlers.customer")),
		Record:   handlers.NewRecordHandler(dairySvc, baseLogger.Named("handlers.record")),
		Report:   handlers.NewReportHandler(reportingSvc, gateway, loc, cfg.Reporting.PDFRecordTable, baseLogger.Named("handlers.report")),
	}, identitySvc, baseLogger.Named("router"))

	sched := scheduler.New(*cfg, identitySvc, reportingSvc, gateway, exporter, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
