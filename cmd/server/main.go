package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coachhub/internal/api"
	"coachhub/internal/config"
	"coachhub/internal/logger"
	"coachhub/internal/repository"
	"coachhub/internal/service"

	"github.com/gorilla/handlers"
	_ "github.com/lib/pq"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return err
	}

	stripe.Key = cfg.StripeSecretKey
	if cfg.StripeSecretKey == "" {
		zl.Warn("STRIPE_SECRET_KEY not set, checkout will fail")
	}

	availabilityRepo := repository.NewAvailabilityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	stripeRepo := repository.NewStripeRepository(db)
	jobRepo := repository.NewJobRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	durations := repository.NewCachedServiceDurations(availabilityRepo, cfg.ServiceCacheSize, cfg.ServiceCacheTTL, zl)

	mailer := service.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, zl)
	sms := service.NewTwilioSMS(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, zl)
	sender := service.NewSenderService(mailer, sms, cfg.Location, zl)
	stripeService := service.NewStripeService(cfg.Currency, cfg.FrontendURL, cfg.PendingTTL)

	availabilityService := service.NewAvailabilityService(availabilityRepo, durations, cfg.Location, time.Now, zl)
	membershipService := service.NewMembershipService(membershipRepo)
	bookingService := service.NewBookingService(bookingRepo, stripeRepo, stripeService, availabilityService, membershipService, sender, zl,
		service.WithBookingLocation(cfg.Location),
		service.WithCancellationWindow(cfg.CancellationWindow),
	)
	progressService := service.NewProgressService(progressRepo, nil)
	adminService := service.NewAdminService(adminRepo, bookingRepo, bookingRepo, durations, sender, cfg.Location, zl)
	adminAuthService := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret, zl)
	jobService := service.NewJobService(jobRepo, sender, cfg.PendingTTL, cfg.Location, time.Now, zl)

	router := api.NewRouter(api.Handlers{
		User:      api.NewUserHandler(availabilityService, availabilityRepo, bookingService, progressService, zl),
		Admin:     api.NewAdminHandler(adminService, membershipService, zl),
		AdminAuth: api.NewAdminAuthHandler(adminAuthService, zl),
		Stripe:    api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, bookingService, zl),
	}, cfg.JWTSecret)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(zl)), handlers.PrintRecoveryStack(!cfg.IsProduction()))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.LoggingHandler(os.Stdout, recovery(cors(router))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler, err := jobService.Schedule()
	if err != nil {
		return err
	}
	scheduler.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		<-scheduler.Stop().Done()
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)

	// Running jobs can still queue notifications, so stop them before draining.
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
	}
	return errors.Join(shutdownErr, sender.Drain(shutdownCtx))
}
