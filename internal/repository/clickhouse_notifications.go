package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jmehdipour/paynotify/internal/model"
)

// NotificationFilter narrows a report. Zero values match everything.
type NotificationFilter struct {
	Status model.NotificationStatus
	Email  string
	Since  time.Time
	Limit  int
	Offset int
}

// CHNotificationsRepository lists notifications from ClickHouse (latest view).
type CHNotificationsRepository interface {
	List(ctx context.Context, f NotificationFilter) ([]model.NotificationRecord, error)
}

type chNotificationsRepository struct {
	ch *sqlx.DB
}

func NewCHNotificationsRepository(ch *sqlx.DB) CHNotificationsRepository {
	return &chNotificationsRepository{ch: ch}
}

func (r *chNotificationsRepository) List(ctx context.Context, f NotificationFilter) ([]model.NotificationRecord, error) {
	q, args := listNotificationsQuery(f)

	var rows []model.NotificationRecord
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func listNotificationsQuery(f NotificationFilter) (string, []any) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := `
		SELECT id, event_id, event_type, email, phone, amount_minor, currency,
		       email_status, sms_status, status, error, created_at
		FROM paynotify.notifications_latest
		WHERE 1 = 1
	`
	var args []any

	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, f.Status.String())
	}
	if f.Email != "" {
		q += " AND email = ?"
		args = append(args, f.Email)
	}
	if !f.Since.IsZero() {
		q += " AND created_at >= ?"
		args = append(args, f.Since)
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	return q, args
}
