package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"varto-api/config"
	"varto-api/handlers"
	"varto-api/jobs"
	"varto-api/metrics"
	"varto-api/middleware"
	"varto-api/notify"
	"varto-api/push"
	"varto-api/realtime"
	"varto-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := cfg.NewLogger()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load catalog")
	}

	db, err := config.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	logger.WithField("driver", cfg.DBDriver).Info("Database connected and migrated")

	if err := handlers.EnsureAdmin(db, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		logger.WithError(err).Fatal("Failed to seed admin user")
	}

	var sender push.Sender
	if cfg.PushEnabled {
		sender = push.NewExpoClient(cfg.ExpoPushURL, cfg.ExpoAccessToken, cfg.PushTimeout, logger)
	} else {
		logger.Warn("Push delivery disabled; notifications are stored only")
	}
	notifier := notify.New(db, sender, catalog.OrderMessages, cfg.PushTimeout, logger)

	hub := realtime.NewHub(logger)
	go hub.Run()

	auth := middleware.NewAuth(cfg.JWTSecret, cfg.AdminTokenTTL, cfg.CustomerTokenTTL)
	otpLimiter := middleware.NewPerMinuteLimiter(cfg.OTPRatePerMinute, logger)

	h := handlers.New(handlers.Options{
		DB:         db,
		Auth:       auth,
		Notifier:   notifier,
		Feed:       hub,
		Catalog:    catalog,
		Logger:     logger,
		OTPCode:    cfg.OTPSeedCode,
		ListingTTL: cfg.ListingTTL,
	})

	scheduler := jobs.NewScheduler(logger)
	expiry := jobs.NewListingExpiry(db, logger)
	if err := scheduler.Add("listing_expiry", cfg.ListingExpirySchedule, expiry.Job); err != nil {
		logger.WithError(err).Fatal("Invalid LISTING_EXPIRY_SCHEDULE")
	}
	if err := scheduler.Add("otp_limiter_cleanup", "@every 10m", func(context.Context) {
		otpLimiter.Cleanup(10 * time.Minute)
	}); err != nil {
		logger.WithError(err).Fatal("Failed to schedule limiter cleanup")
	}
	scheduler.Start()

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.RequestLogger(logger), metrics.Middleware(), middleware.CORS())
	routes.SetupRoutes(r, h, auth, otpLimiter, hub)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	scheduler.Stop(ctx)
	notifier.Wait()
	hub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("Server exited")
}
