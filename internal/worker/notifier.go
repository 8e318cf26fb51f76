package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jmehdipour/paynotify/internal/kafka"
	"github.com/jmehdipour/paynotify/internal/metrics"
	"github.com/jmehdipour/paynotify/internal/model"
	"github.com/jmehdipour/paynotify/internal/notification"
	"github.com/jmehdipour/paynotify/internal/repository"
	"github.com/jmehdipour/paynotify/internal/util"
)

// Source is the queue the notifier consumes.
type Source interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// Handler turns one queue message into notifications.
type Handler interface {
	Handle(ctx context.Context, queueMessage string) notification.Outcome
}

// Notifier:
// - fetches queue messages from Kafka,
// - sends payment notifications through the handler,
// - batches audit rows into MySQL.
type Notifier struct {
	Source  Source
	Handler Handler
	Records repository.NotificationsRepository // nil disables persistence
	Log     *zap.Logger

	Workers   int
	BatchSize int
	BatchWait time.Duration

	now func() time.Time
}

func NewNotifier(src Source, h Handler, records repository.NotificationsRepository, log *zap.Logger) *Notifier {
	return &Notifier{
		Source:    src,
		Handler:   h,
		Records:   records,
		Log:       log,
		Workers:   16,
		BatchSize: 200,
		BatchWait: 300 * time.Millisecond,
		now:       time.Now,
	}
}

// Run starts the worker and blocks until ctx is cancelled and pending rows are flushed.
func (w *Notifier) Run(ctx context.Context) error {
	if w.Workers <= 0 {
		w.Workers = 16
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 200
	}
	if w.BatchWait <= 0 {
		w.BatchWait = 300 * time.Millisecond
	}
	if w.Log == nil {
		w.Log = zap.NewNop()
	}
	if w.now == nil {
		w.now = time.Now
	}

	records := make(chan model.NotificationRecord, w.BatchSize*2)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		w.runBatchWriter(records)
	}()

	msgCh := make(chan kafka.Message, w.Workers*2)
	go w.fetch(ctx, msgCh)

	var wg sync.WaitGroup
	for i := 0; i < w.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range msgCh {
				// uncommitted messages are redelivered after restart
				if ctx.Err() != nil {
					continue
				}
				w.processOne(ctx, m, records)
			}
		}()
	}

	wg.Wait()
	close(records)
	<-writerDone
	return nil
}

func (w *Notifier) fetch(ctx context.Context, out chan<- kafka.Message) {
	defer close(out)
	for {
		m, err := w.Source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.Log.Warn("kafka fetch", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
			continue
		}
		select {
		case out <- m:
		case <-ctx.Done():
			return
		}
	}
}

func (w *Notifier) processOne(ctx context.Context, m kafka.Message, out chan<- model.NotificationRecord) {
	o := w.Handler.Handle(ctx, string(m.Value))
	res := o.Result

	if res.Success {
		if res.EmailStatus != "" {
			w.Log.Info("Email sent, status: "+res.EmailStatus, zap.String("event_id", res.EventID))
		}
		if res.SMSStatus != "" {
			w.Log.Info("SMS sent, sid: "+res.SMSStatus, zap.String("event_id", res.EventID))
		}
	} else {
		w.Log.Error("Payment notification failed: "+res.Error,
			zap.String("event_id", res.EventID),
			zap.Int64("offset", m.Offset),
		)
	}

	status := model.StatusOf(res)
	metrics.MessagesProcessedTotal.WithLabelValues(status.String()).Inc()

	if res.EventID != "" {
		out <- w.record(o, status)
	}

	// Always commit; a redelivered event is deduplicated by event_id in the store.
	if err := w.Source.Commit(ctx, m); err != nil {
		w.Log.Warn("kafka commit", zap.Error(err))
	}
}

func (w *Notifier) record(o notification.Outcome, status model.NotificationStatus) model.NotificationRecord {
	return model.NotificationRecord{
		ID:          util.NewID(),
		EventID:     o.Result.EventID,
		EventType:   o.Result.EventType,
		Email:       o.Contact.Email,
		Phone:       o.Contact.Phone,
		AmountMinor: o.Contact.AmountMinor,
		Currency:    o.Contact.Currency,
		EmailStatus: o.Result.EmailStatus,
		SMSStatus:   o.Result.SMSStatus,
		Status:      status,
		Error:       o.Result.Error,
		CreatedAt:   w.now().UTC(),
	}
}

// runBatchWriter does size/time-based flushes of audit rows until in is closed.
func (w *Notifier) runBatchWriter(in <-chan model.NotificationRecord) {
	tick := time.NewTicker(w.BatchWait)
	defer tick.Stop()

	batch := make([]model.NotificationRecord, 0, w.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if w.Records != nil {
			// The final flush runs after the run context is cancelled.
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := w.Records.BatchInsert(ctx, nil, batch)
			cancel()
			if err != nil {
				w.Log.Error("flush notifications", zap.Int("rows", len(batch)), zap.Error(err))
			} else {
				w.Log.Debug("flushed notifications", zap.Int("rows", len(batch)))
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case r, ok := <-in:
			if !ok {
				flush()
				return
			}
			batch = append(batch, r)
			if len(batch) >= w.BatchSize {
				flush()
			}
		case <-tick.C:
			flush()
		}
	}
}
