package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"rolegate/internal/auth"
	"rolegate/internal/config"
	"rolegate/internal/httpserver"
	"rolegate/internal/logger"
	"rolegate/internal/metrics"
	"rolegate/internal/rbac"
	"rolegate/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	st := store.NewGorm(db)
	if err := st.AutoMigrate(); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	if err := rbac.Seed(st.DB()); err != nil {
		lg.Fatalw("seed failed", "error", err)
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	svc := auth.NewService(st, hasher, codec, cfg.RequireVerifiedEmail, lg)
	engine := rbac.NewEngine(st)

	metrics.Init()
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: httpserver.NewRouter(svc, engine, st, lg),
	}

	go func() {
		lg.Infow("listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Warnw("shutdown", "error", err)
	}
	lg.Infow("stopped")
}
