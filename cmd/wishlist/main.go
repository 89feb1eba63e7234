package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/wishlist/internal/account"
	"github.com/dukerupert/wishlist/internal/config"
	"github.com/dukerupert/wishlist/internal/database"
	"github.com/dukerupert/wishlist/internal/email"
	"github.com/dukerupert/wishlist/internal/logging"
	"github.com/dukerupert/wishlist/internal/metrics"
	"github.com/dukerupert/wishlist/internal/server"
	"github.com/dukerupert/wishlist/internal/store"
	"github.com/dukerupert/wishlist/internal/wishlist"
)

func main() {
	configPath := flag.String("config", os.Getenv("WISHLIST_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	stores := store.New(db)
	m := metrics.New()
	mailer := email.NewMailer(newSender(cfg.Mail, logger), cfg.FrontEndURL)

	accounts := account.NewService(stores, account.Config{
		AccessSecret:  []byte(cfg.Tokens.AccessSecret),
		RefreshSecret: []byte(cfg.Tokens.RefreshSecret),
		EmailSecret:   []byte(cfg.Tokens.EmailSecret),
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshTTL:    cfg.Tokens.RefreshTTL,
		EmailTTL:      cfg.Tokens.EmailTTL,
	}, mailer, m, logger)

	wishlists := wishlist.NewService(stores, wishlist.Config{
		EmailSecret: []byte(cfg.Tokens.EmailSecret),
		EmailTTL:    cfg.Tokens.EmailTTL,
	}, mailer, m, logger)

	srv := server.New(accounts, wishlists, m, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := accounts.SweepRefreshTokens(); err != nil {
					logger.Error("cleanup expired refresh tokens", "error", err)
				} else if n > 0 {
					logger.Info("cleaned up expired refresh tokens", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("wishlist service starting", "addr", ":"+cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// newSender picks the mail transport: SMTP when a host is configured, then
// Postmark, otherwise mail is only logged.
func newSender(cfg config.MailConfig, logger *slog.Logger) email.Sender {
	switch {
	case cfg.SMTPHost != "":
		logger.Info("mail via smtp", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From)
	case cfg.PostmarkToken != "":
		logger.Info("mail via postmark")
		return email.NewPostmarkClient(cfg.PostmarkToken, cfg.From)
	default:
		logger.Warn("no mail transport configured, emails will be logged")
		return email.NewLogSender(logger.With("component", "email"))
	}
}
