package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"pos-terminal/internal/model"

	"github.com/rs/zerolog"
)

// orderQueue implements OrderQueue on the embedded database.
type orderQueue struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewOrderQueue creates the durable offline-order queue.
func NewOrderQueue(db *sql.DB, logger zerolog.Logger) OrderQueue {
	return &orderQueue{
		db:     db,
		logger: logger.With().Str("component", "order-queue").Logger(),
	}
}

// Add persists a payload under its offline UUID.
func (q *orderQueue) Add(ctx context.Context, payload *model.OrderPayload) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode order payload: %w", err)
	}

	query := `
		INSERT INTO offline_orders (offline_uuid, payload, created_at)
		VALUES (?, ?, ?)
	`

	_, err = q.db.ExecContext(ctx, query, payload.OfflineUUID, string(encoded), time.Now().Unix())
	if err != nil {
		q.logger.Error().
			Err(err).
			Str("offline_uuid", payload.OfflineUUID).
			Msg("failed to enqueue order")
		return fmt.Errorf("failed to enqueue order: %w", err)
	}

	q.logger.Info().
		Str("offline_uuid", payload.OfflineUUID).
		Msg("order enqueued for later sync")

	return nil
}

// GetAll returns queued entries in insertion order.
func (q *orderQueue) GetAll(ctx context.Context) ([]model.QueueEntry, error) {
	query := `
		SELECT offline_uuid, payload, created_at
		FROM offline_orders
		ORDER BY ordinal
	`

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		q.logger.Error().Err(err).Msg("failed to query queue")
		return nil, fmt.Errorf("failed to query queue: %w", err)
	}
	defer rows.Close()

	var entries []model.QueueEntry
	for rows.Next() {
		var (
			entry     model.QueueEntry
			raw       string
			createdAt int64
		)
		if err := rows.Scan(&entry.OfflineUUID, &raw, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &entry.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode queued payload %s: %w", entry.OfflineUUID, err)
		}
		entry.EnqueuedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating queue entries: %w", err)
	}

	return entries, nil
}

// Remove deletes an entry by offline UUID. Absent UUIDs are a no-op.
func (q *orderQueue) Remove(ctx context.Context, offlineUUID string) error {
	query := `DELETE FROM offline_orders WHERE offline_uuid = ?`

	res, err := q.db.ExecContext(ctx, query, offlineUUID)
	if err != nil {
		q.logger.Error().
			Err(err).
			Str("offline_uuid", offlineUUID).
			Msg("failed to remove queue entry")
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		q.logger.Debug().Str("offline_uuid", offlineUUID).Msg("queue entry removed")
	}

	return nil
}

// Count returns the durable queue depth.
func (q *orderQueue) Count(ctx context.Context) (int, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offline_orders`).Scan(&count)
	if err != nil {
		q.logger.Error().Err(err).Msg("failed to count queue entries")
		return 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return count, nil
}

// Reject moves an entry into the rejected log and out of the queue.
func (q *orderQueue) Reject(ctx context.Context, entry model.QueueEntry, reason string) error {
	encoded, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode rejected payload: %w", err)
	}

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO rejected_orders (offline_uuid, payload, reason, rejected_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insert, entry.OfflineUUID, string(encoded), reason, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to record rejected order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM offline_orders WHERE offline_uuid = ?`, entry.OfflineUUID); err != nil {
		return fmt.Errorf("failed to dequeue rejected order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rejection: %w", err)
	}

	q.logger.Warn().
		Str("offline_uuid", entry.OfflineUUID).
		Str("reason", reason).
		Msg("order moved to rejected log")

	return nil
}

// Rejected returns the rejected-order log, newest first.
func (q *orderQueue) Rejected(ctx context.Context) ([]model.RejectedOrder, error) {
	query := `
		SELECT offline_uuid, payload, reason, rejected_at
		FROM rejected_orders
		ORDER BY rejected_at DESC, offline_uuid
	`

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejected orders: %w", err)
	}
	defer rows.Close()

	var rejected []model.RejectedOrder
	for rows.Next() {
		var (
			ro         model.RejectedOrder
			raw        string
			rejectedAt int64
		)
		if err := rows.Scan(&ro.OfflineUUID, &raw, &ro.Reason, &rejectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rejected order: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &ro.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode rejected payload %s: %w", ro.OfflineUUID, err)
		}
		ro.RejectedAt = time.Unix(rejectedAt, 0).UTC()
		rejected = append(rejected, ro)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rejected orders: %w", err)
	}

	return rejected, nil
}
