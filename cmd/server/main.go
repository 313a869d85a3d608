package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/fund-sentry/internal/clients/eastmoney"
	"github.com/aristath/fund-sentry/internal/config"
	"github.com/aristath/fund-sentry/internal/database"
	"github.com/aristath/fund-sentry/internal/events"
	"github.com/aristath/fund-sentry/internal/modules/analysis"
	"github.com/aristath/fund-sentry/internal/modules/holdings"
	"github.com/aristath/fund-sentry/internal/modules/notify"
	"github.com/aristath/fund-sentry/internal/modules/reports"
	"github.com/aristath/fund-sentry/internal/scheduler"
	"github.com/aristath/fund-sentry/internal/server"
	"github.com/aristath/fund-sentry/pkg/logger"
)

func main() {
	// Load configuration first so the log level is honored from the start
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Fund Sentry")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	eventManager := events.NewManager(log)

	// Upstream NAV data client
	fetcher := eastmoney.New(eastmoney.Config{
		HistoryBaseURL:  cfg.HistoryBaseURL,
		EstimateBaseURL: cfg.EstimateBaseURL,
		MirrorBaseURL:   cfg.MirrorBaseURL,
		FlowBaseURL:     cfg.FlowBaseURL,
		FundPageBaseURL: cfg.FundPageBaseURL,
		Timeout:         cfg.ClientTimeout,
		RateLimit:       cfg.RateLimit,
		Log:             log,
	})

	// Core services
	holdingsRepo := holdings.NewRepository(db.Conn(), log)
	analysisService := analysis.NewService(fetcher, eventManager, cfg.LookbackDays, cfg.PredictHorizon, log)

	sender := notify.NewSender(notify.Config{
		PushBaseURL:     cfg.PushBaseURL,
		PushKey:         cfg.PushKey,
		CorpChatWebhook: cfg.CorpChatWebhook,
		DingTalkWebhook: cfg.DingTalkWebhook,
		Log:             log,
	})

	reportService := reports.NewService(analysisService, holdingsRepo, eventManager, cfg.PacingDelay, log)
	formatter := reports.NewFormatter()
	renderer := reports.NewRenderer(cfg.ReportDir, log)

	// Scheduler and the daily report job
	sched := scheduler.New(log)
	reportJob := reports.NewDailyReportJob(reportService, formatter, renderer, sender, eventManager, log)
	if err := sched.AddJob(cfg.ReportSchedule, reportJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register report job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Config:    cfg,
		DevMode:   cfg.DevMode,
		Scheduler: sched,
		Holdings:  holdings.NewHandler(holdingsRepo, log),
		Analysis:  analysis.NewHandler(analysisService, holdingsRepo, log),
		Reports:   reports.NewHandler(reportService, formatter, renderer, log),
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
