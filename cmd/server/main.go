package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/discovery/internal/config"
	"github.com/Simplici0/discovery/internal/db"
	"github.com/Simplici0/discovery/internal/logging"
	"github.com/Simplici0/discovery/internal/migrations"
	"github.com/Simplici0/discovery/internal/narrative"
	"github.com/Simplici0/discovery/internal/pricing"
	"github.com/Simplici0/discovery/internal/seed"
	"github.com/Simplici0/discovery/internal/session"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDev(),
	})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tariff, err := pricing.LoadTariff(cfg.TariffPath)
	if err != nil {
		return err
	}
	engine, err := pricing.NewEngine(tariff)
	if err != nil {
		return err
	}
	logger.Info("tariff loaded",
		zap.String("version", tariff.Version),
		zap.String("currency", tariff.Currency),
		zap.Int("modules", len(tariff.Modules)),
	)

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migrations.Up(database, logger.Named("migrations")); err != nil {
		return err
	}
	version, err := migrations.Version(database)
	if err != nil {
		return err
	}
	logger.Info("database ready", zap.String("path", cfg.DBPath), zap.Int64("schema_version", version))

	if cfg.SeedDemo {
		stats, err := seed.Run(ctx, database, seed.Config{DemoDraft: true, DemoSession: true, Engine: engine})
		if err != nil {
			return err
		}
		logger.Info("demo data seeded", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))
	}

	var gen narrative.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := narrative.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		logger.Info("narrative generation enabled", zap.String("model", g.Model()))
		gen = g
	}
	composer := narrative.NewComposer(gen, logger.Named("narrative"),
		narrative.WithTimeout(cfg.NarrativeTimeout),
		narrative.WithCurrency(tariff.Currency),
	)

	srv := newServer(engine, session.NewStore(database), composer, logger)
	srv.ping = database.PingContext

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
