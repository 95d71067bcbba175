package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"account/config"
	"account/internal/api"
	"account/internal/auth"
	"account/internal/banned"
	"account/internal/cache"
	"account/internal/database"
	"account/internal/email"
	"account/internal/sessions"
	"account/internal/user"
	"account/internal/verification"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(cfg.Postgres)
	if err != nil {
		return err
	}
	if err := db.Migrate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	filter := banned.New(cfg.Banned.Username, cfg.Banned.Nickname)
	codes := verification.NewCodeStore(redisClient, cfg.CodeTTL.Std())
	mailer := email.NewSendVerificationCodeUseCase(email.NewSender(cfg.SMTP))
	hasher := auth.NewHasher()

	users := user.NewRepository(db.DB)
	tokens := sessions.NewManager(sessions.NewRepository(db.DB), cfg.TokenTTL.Std(), cfg.LongTokenTTL.Std())

	registration := user.NewService(users, codes, filter, hasher, logger)
	authService, err := auth.NewService(users, tokens, hasher, logger)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, registration, authService, codes, tokens, mailer, logger)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
