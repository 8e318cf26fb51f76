package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmehdipour/paynotify/internal/channel"
	"github.com/jmehdipour/paynotify/internal/config"
	"github.com/jmehdipour/paynotify/internal/db"
	httpSrv "github.com/jmehdipour/paynotify/internal/http"
	"github.com/jmehdipour/paynotify/internal/kafka"
	"github.com/jmehdipour/paynotify/internal/logger"
	"github.com/jmehdipour/paynotify/internal/metrics"
	"github.com/jmehdipour/paynotify/internal/notification"
	"github.com/jmehdipour/paynotify/internal/provider"
	"github.com/jmehdipour/paynotify/internal/repository"
	"github.com/jmehdipour/paynotify/internal/worker"
)

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Consume Stripe events and send payment notifications (email + SMS)",
	RunE:  runNotifier,
}

func runNotifier(cmd *cobra.Command, _ []string) error {
	// 1) config + logger
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// 2) senders; a channel without credentials is disabled, not an error
	email := provider.EmailSender(cfg)
	sms := provider.SMSSender(cfg)
	if !channel.IsEnabled(email) && !channel.IsEnabled(sms) {
		log.Warn("no notification channel configured; events will be consumed without sending")
	}
	svc := notification.NewService(email, sms, log)

	// 3) audit store (optional)
	var records repository.NotificationsRepository
	if cfg.MySQL.DSN != "" {
		dbx, err := db.NewMySQL(cfg.MySQL)
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer dbx.Close()
		records = repository.NewNotificationsRepository(dbx)
	}

	// 4) kafka consumer
	consumer := kafka.NewConsumer(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Queue.Topic,
		GroupID:        cfg.Kafka.GroupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer consumer.Close()

	w := worker.NewNotifier(consumer, svc, records, log)
	if cfg.Notifier.WorkerCount > 0 {
		w.Workers = cfg.Notifier.WorkerCount
	}
	if cfg.Notifier.BatchSize > 0 {
		w.BatchSize = cfg.Notifier.BatchSize
	}
	if cfg.Notifier.BatchWait > 0 {
		w.BatchWait = cfg.Notifier.BatchWait
	}

	// 5) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6) metrics listener
	if addr := cfg.Notifier.MetricsAddr; addr != "" {
		ms := httpSrv.NewMetricsServer(log)
		go func() {
			if err := ms.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics listener exited", zap.Error(err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = ms.Shutdown(sctx)
		}()
	}

	log.Info("notifier started",
		zap.String("topic", cfg.Queue.Topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Bool("email", channel.IsEnabled(email)),
		zap.Bool("sms", channel.IsEnabled(sms)),
		zap.Int("workers", w.Workers),
		zap.Int("batch_size", w.BatchSize),
		zap.Duration("batch_wait", w.BatchWait),
		zap.String("metrics_addr", cfg.Notifier.MetricsAddr),
	)

	return w.Run(ctx)
}
