package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"pawsclinic/cmd/internal/config"
	"pawsclinic/cmd/internal/domain/sqlite"
	"pawsclinic/cmd/internal/domain/sqlite/repository"
	snsclient "pawsclinic/cmd/internal/integration/aws/sns"
	"pawsclinic/cmd/internal/integration/messaging"
	twilioclient "pawsclinic/cmd/internal/integration/twilio"
	"pawsclinic/cmd/internal/router"
	"pawsclinic/cmd/internal/service"
	"pawsclinic/cmd/internal/telemetry"
	"pawsclinic/cmd/internal/utils/validators"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	log.SetLevel(logLevel(cfg.App.LogLevel))
	log.SetHeader("${time_rfc3339} ${level} ${short_file}:${line}")

	shutdownTracing := telemetry.Setup("pawsclinic", cfg.Telemetry.Endpoint, cfg.Telemetry.Insecure)

	validate := validator.New()
	validators.Register(validate)

	// Init SQLite
	db, err := sqlite.Init(cfg.Database.Path)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}
	log.Infof("[DB] using %s", cfg.Database.Path)

	sender := initSender(cfg)
	identity := cfg.SMSSender()

	// Getting repositories
	apptRepo := repository.NewAppointmentRepository(db, cfg.Database.Path)

	// Getting services
	notifier := service.NewNotificationService(sender, service.NotificationConfig{
		WhatsAppEnabled: cfg.Messaging.WhatsAppEnabled,
		WhatsAppFrom:    cfg.Messaging.WhatsAppFrom,
		Destination:     cfg.Messaging.ClinicTo,
		SMSFromNumber:   identity.FromNumber,
		SMSSenderID:     identity.SenderID,
	})
	apptService := service.NewAppointmentService(apptRepo, notifier, validate)
	adminService := service.NewAdminService(apptRepo)
	gate := service.NewAdminGate(cfg.Admin.Secret)
	if !gate.Configured() {
		log.Warn("[WARN] ADMIN_SECRET is not set; admin endpoints will refuse every request")
	}

	e := router.New(router.Options{
		Appointments: apptService,
		Admin:        adminService,
		Gate:         gate,
		RateLimit:    cfg.HTTP.RateLimit,
		BodyLimit:    cfg.HTTP.BodyLimit,
		AllowOrigins: cfg.HTTP.AllowOrigins,
		Development:  cfg.IsDevelopment(),
		WebDir:       cfg.App.WebDir,
		PagesURL:     cfg.App.PagesURL,
	})
	e.Logger.SetLevel(logLevel(cfg.App.LogLevel))
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 60 * time.Second

	go func() {
		log.Infof("server listening on port %s (%s)", cfg.App.Port, cfg.App.Env)
		if err := e.Start(":" + cfg.App.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Errorf("tracing shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// initSender builds the configured provider client. The server still starts
// without one; submissions are then accepted without sending anything.
func initSender(cfg *config.Config) messaging.Sender {
	switch cfg.Messaging.Provider {
	case config.ProviderSNS:
		client, err := snsclient.InitSNSClient(context.Background(), cfg.SNS.Region)
		if err != nil {
			log.Warnf("[WARN] sns client not initialized: %v", err)
			return nil
		}
		return client
	default:
		client, err := twilioclient.InitTwilioClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken)
		if err != nil {
			log.Warnf("[WARN] twilio client not initialized: %v", err)
			return nil
		}
		return client
	}
}

func logLevel(name string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
