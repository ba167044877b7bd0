package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"devis/internal/commons"
	"devis/internal/config"
	"devis/internal/infrastructure/logger"
	"devis/internal/infrastructure/mysql"
	"devis/internal/pricing"
	"devis/internal/quote"
	"devis/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := commons.LoadCatalog(cfg.Pricing.CatalogPath)
	if err != nil {
		zapLogger.Fatal("loading pricing catalog", zap.Error(err))
	}
	engine, err := pricing.NewEngine(catalog)
	if err != nil {
		zapLogger.Fatal("building pricing engine", zap.Error(err))
	}

	if cfg.ActionLink.Secret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			zapLogger.Fatal("generating action token secret", zap.Error(err))
		}
		cfg.ActionLink.Secret = hex.EncodeToString(secret)
		zapLogger.Warn("ACTION_TOKEN_SECRET not set, action links will not survive a restart")
	}

	var db *sql.DB
	if cfg.Store.Driver == config.StoreDriverMySQL {
		db, err = mysql.NewConnection(ctx, cfg.Database)
		if err != nil {
			zapLogger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		if err := mysql.EnsureSchema(ctx, db); err != nil {
			zapLogger.Fatal("creating schema", zap.Error(err))
		}
		zapLogger.Info("database connected")
	} else {
		zapLogger.Info("using file store", zap.String("path", cfg.Store.FilePath))
	}

	module, err := quote.NewModule(ctx, db, engine, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("wiring devis module", zap.Error(err))
	}

	proxies, err := server.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		zapLogger.Fatal("parsing TRUSTED_PROXIES", zap.Error(err))
	}

	limiter := server.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Sweep(10 * time.Minute)
			}
		}
	}()

	router := server.NewRouter(module, server.RouterConfig{
		AdminAPIKey:    cfg.Admin.APIKey,
		RateLimiter:    limiter,
		TrustedProxies: proxies,
	}, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
