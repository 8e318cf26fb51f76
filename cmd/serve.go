package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmehdipour/paynotify/internal/checkout"
	"github.com/jmehdipour/paynotify/internal/config"
	"github.com/jmehdipour/paynotify/internal/db"
	httpSrv "github.com/jmehdipour/paynotify/internal/http"
	"github.com/jmehdipour/paynotify/internal/http/middleware"
	"github.com/jmehdipour/paynotify/internal/kafka"
	"github.com/jmehdipour/paynotify/internal/logger"
	"github.com/jmehdipour/paynotify/internal/repository"
	"github.com/jmehdipour/paynotify/internal/service/queue"
	"github.com/jmehdipour/paynotify/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server (Stripe webhook, checkout, reports)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log, err := logger.Init(cfg.Log.Level, cfg.Log.Encoding)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		if cfg.Stripe.WebhookSecret == "" {
			log.Warn("stripe webhook secret is empty; every delivery will be rejected")
		}

		pub, closePub, err := newPublisher(cfg)
		if err != nil {
			return err
		}
		defer closePub()

		redisClient, err := db.NewRedis(cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		if redisClient != nil {
			defer func() { _ = redisClient.Close() }()
		}

		deps := httpSrv.Deps{
			Webhook:   webhook.NewService(cfg.Stripe.WebhookSecret, webhook.Verifier{Tolerance: cfg.Stripe.SignatureTolerance}),
			Publisher: pub,
			Checkout:  checkout.NewService(cfg.Stripe.APIKey),
			Limiter:   middleware.NewLimiter(redisClient, cfg.RateLimit.RPM),
			Logger:    log,
		}

		if cfg.ClickHouse.DSN != "" {
			chDB, err := db.NewClickHouse(cfg.ClickHouse)
			if err != nil {
				return fmt.Errorf("clickhouse connect: %w", err)
			}
			defer func() { _ = chDB.Close() }()
			deps.Reports = repository.NewCHNotificationsRepository(chDB)
		}

		server := httpSrv.NewServer(cfg, deps)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil {
				log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}

// newPublisher returns the transport selected by queue.mode and its closer.
func newPublisher(cfg config.Config) (queue.Publisher, func(), error) {
	switch cfg.Queue.Mode {
	case config.QueueModeOutbox:
		mysqlDB, err := db.NewMySQL(cfg.MySQL)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		pub := queue.NewOutboxPublisher(repository.NewOutboxRepository(mysqlDB), cfg.Queue.Topic)
		return pub, func() { _ = mysqlDB.Close() }, nil

	case config.QueueModeKafka, "":
		p := kafka.NewProducer(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Queue.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		return p, closer(p), nil

	default:
		return nil, nil, fmt.Errorf("unknown queue mode %q", cfg.Queue.Mode)
	}
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}
