package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jmehdipour/paynotify/internal/model"
)

// NotificationsRepository persists one audit row per processed Stripe event.
type NotificationsRepository interface {
	BatchInsert(ctx context.Context, tx *sqlx.Tx, rows []model.NotificationRecord) error
}

type NotificationsRepositoryImpl struct {
	db *sqlx.DB
}

func NewNotificationsRepository(db *sqlx.DB) *NotificationsRepositoryImpl {
	return &NotificationsRepositoryImpl{db: db}
}

func (r *NotificationsRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}
	return t.Commit()
}

// BatchInsert writes rows in one statement. event_id is unique, so a redelivered
// event keeps the row of its first processing.
func (r *NotificationsRepositoryImpl) BatchInsert(ctx context.Context, tx *sqlx.Tx, rows []model.NotificationRecord) error {
	if len(rows) == 0 {
		return nil
	}
	q, args := notificationsInsert(rows)

	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, args...)
		return err
	})
}

const notificationColumns = 12

func notificationsInsert(rows []model.NotificationRecord) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(rows)*notificationColumns)

	sb.WriteString(`INSERT INTO notifications
		(id, event_id, event_type, email, phone, amount_minor, currency,
		 email_status, sms_status, status, error, created_at) VALUES `)
	for i, rw := range rows {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			rw.ID, rw.EventID, rw.EventType, rw.Email, rw.Phone, rw.AmountMinor, rw.Currency,
			rw.EmailStatus, rw.SMSStatus, rw.Status.String(), rw.Error, rw.CreatedAt,
		)
	}
	sb.WriteString(` ON DUPLICATE KEY UPDATE id = id`)

	return sb.String(), args
}
