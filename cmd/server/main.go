package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"valentine/config"
	authadapter "valentine/internal/adapters/auth"
	"valentine/internal/adapters/captcha"
	emailadapter "valentine/internal/adapters/email"
	httpdelivery "valentine/internal/delivery/http"
	"valentine/internal/delivery/http/controllers"
	"valentine/internal/delivery/http/middleware"
	"valentine/internal/repository/postgres"
	"valentine/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	rateLimitRepo := postgres.NewRateLimitRepository(db)
	whitelistRepo := postgres.NewAdminWhitelistRepository(db)

	// Adapters
	provider := authadapter.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	tokens := authadapter.NewJWTCodec(cfg.JWTSecret)
	passwords := authadapter.NewAdminPasswordVerifier(cfg.AdminPassword, cfg.AdminPasswordHash)
	turnstile := captcha.NewTurnstileVerifier(&http.Client{Timeout: 10 * time.Second}, cfg.TurnstileSecretKey, logger)
	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: emailadapter.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	// Services
	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	validator := services.NewEmailValidator(nil)
	limiter := services.NewRateLimiter(rateLimitRepo, cfg.RateLimitMaxPerDay, time.Duration(cfg.RateLimitWindowHrs)*time.Hour, logger)
	messageService := services.NewMessageService(messageRepo, userRepo, validator, turnstile, limiter, emailService, cfg.BaseURL, logger)
	authService := services.NewAuthService(provider, userRepo, tokens, cfg.TokenExpiry, logger)
	adminService := services.NewAdminService(whitelistRepo, passwords, cfg.AdminEmailWhitelist, tokens, cfg.AdminTokenExpiry, logger)

	// HTTP
	authController := controllers.NewAuthController(logger, authService)
	messageController := controllers.NewMessageController(logger, messageService)
	adminController := controllers.NewAdminController(logger, adminService, messageService)
	mux := httpdelivery.NewRouter(authController, messageController, adminController, tokens, logger)

	handler := middleware.LoggingMiddleware(logger, mux)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
}
