package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jmehdipour/paynotify/internal/model"
)

// OutboxRepository persists queue messages for a CDC connector to relay.
type OutboxRepository interface {
	// Insert writes one event. A nil tx runs in its own transaction.
	// Rows are unique per (aggregate, aggregate_id), so Stripe redeliveries are dropped.
	Insert(ctx context.Context, tx *sqlx.Tx, evt model.OutboxEvent) (bool, error)
}

type OutboxRepositoryImpl struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) *OutboxRepositoryImpl {
	return &OutboxRepositoryImpl{db: db}
}

func (r *OutboxRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
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

// Insert reports whether a new row was written.
func (r *OutboxRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, evt model.OutboxEvent) (bool, error) {
	const q = `
		INSERT IGNORE INTO outbox (aggregate, aggregate_id, topic, payload, created_at)
		VALUES (:aggregate, :aggregate_id, :topic, :payload, NOW(6))
	`
	var inserted bool
	err := r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, q, evt)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		inserted = n > 0
		return err
	})
	return inserted, err
}
