package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/categorize"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/config"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/database"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/evaluator"
	httpapi "github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/http"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/logger"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/metrics"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/mqtt"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/notify"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/otp"
	rediscommon "github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/redis"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/repository"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/service"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/store"

	"go.uber.org/zap"
)

func main() {
	// 1. config and logger
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "sentinelph")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	if cfg.Webhook.Secret == "" {
		log.Warn("WEBHOOK_SECRET is empty, every observation webhook will be rejected")
	}
	if cfg.JWT.Secret == "" {
		log.Warn("JWT_SECRET is empty, admin API will reject every token")
	}

	m := metrics.New()

	// 2. repositories: PostgreSQL when reachable, in-memory otherwise
	var (
		db           *sql.DB
		observations repository.ObservationsRepository = repository.NewMemoryObservationsRepo()
		alerts       repository.AlertsRepository       = repository.NewMemoryAlertsRepo()
		users        repository.UsersRepository        = repository.NewMemoryUsersRepo()
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			observations = repository.NewPostgresObservationsRepository(db, log)
			alerts = repository.NewPostgresAlertsRepository(db, log)
			users = repository.NewPostgresUsersRepository(db, log)
			log.Info("DB enabled for sentinelph")
		} else {
			log.Warn("DB enabled but connection failed, falling back to in-memory repositories", zap.Error(err))
		}
	}

	// 3. OTP store and alert stream: Redis when reachable
	var (
		redisClient *rediscommon.Client
		kv          store.KV = store.NewMemoryKV()
	)
	if cfg.RedisEnabled {
		c := rediscommon.NewRedisClient(&cfg.Redis)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rediscommon.Ping(pingCtx, c)
		pingCancel()
		if err == nil {
			redisClient = c
			kv = store.NewRedisKV(c)
			log.Info("Redis enabled for sentinelph", zap.String("addr", cfg.Redis.Addr))
		} else {
			_ = rediscommon.Close(c)
			log.Warn("Redis enabled but unreachable, OTP records kept in memory", zap.Error(err))
		}
	}

	// 4. alert broadcast over MQTT
	var publisher notify.Publisher
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		if c, err := mqtt.NewClient(&cfg.MQTT, log); err == nil {
			mqttClient = c
			publisher = c
		} else {
			log.Warn("MQTT enabled but connection failed, alerts will not be published", zap.Error(err))
		}
	}

	// 5. outbound channels
	var emailSender notify.EmailSender = notify.NewLogEmailSender(log)
	if cfg.SMTP.Host != "" {
		emailSender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log)
	} else {
		log.Warn("SMTP_HOST not set, emails are logged instead of sent")
	}

	var smsSender notify.SMSSender = notify.NewLogSMSSender(log)
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" {
		smsSender = notify.NewTwilioSender(notify.TwilioConfig{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			From:       cfg.Twilio.From,
			BaseURL:    cfg.Twilio.BaseURL,
		}, log)
	}
	mailer := notify.NewMailer(emailSender, cfg.AppName)

	var categorizer categorize.Categorizer = categorize.Noop{}
	if cfg.OpenAI.Enabled && cfg.OpenAI.APIKey != "" {
		categorizer = categorize.NewOpenAI(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, log)
	}

	// 6. core services
	otpManager := otp.NewManager(otp.NewKVStore(kv), mailer, cfg.OTP.TTL, cfg.OTP.Retention, log)

	dispatcher := notify.NewDispatcher(emailSender, smsSender, cfg.AppName, cfg.Alert.Window, log)
	broadcaster := notify.NewBroadcaster(publisher, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS, redisClient, cfg.Alert.StreamName, log)
	eval := evaluator.NewEvaluator(observations, alerts, users, dispatcher, broadcaster, evaluator.Options{
		Window:       cfg.Alert.Window,
		MinSentinels: cfg.Alert.MinSentinels,
	}, log).WithMetrics(m)

	registration := service.NewRegistrationService(otpManager, users, mailer, m, log)
	intake := service.NewObservationService(observations, users, categorizer, eval, m, log)
	review := service.NewReviewService(observations, users, alerts, log)

	// 7. HTTP
	router := httpapi.NewRouter(m, log)
	router.RegisterOpsRoutes()
	router.RegisterWebhookRoutes(httpapi.NewWebhookHandler(registration, intake, cfg.Webhook.Secret, log))
	router.RegisterAdminRoutes(httpapi.NewAdminHandler(review, log), httpapi.NewAuthenticator(cfg.JWT.Secret, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = rediscommon.Close(redisClient)
	}
	_ = database.Close(db)

	log.Info("sentinelph stopped")
}
