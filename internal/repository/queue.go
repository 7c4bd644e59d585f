package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

// QueueRepository keeps each offline queue as one JSON array row. It
// satisfies offline.ListStore.
type QueueRepository interface {
	LoadAttempts(ctx context.Context, queue string) ([]model.QueuedAttempt, error)
	ReplaceAttempts(ctx context.Context, queue string, attempts []model.QueuedAttempt) error
}

type queueRepository struct {
	db *sqlx.DB
}

func NewQueueRepository(db *sqlx.DB) QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) LoadAttempts(ctx context.Context, queue string) ([]model.QueuedAttempt, error) {
	var items string
	query := `SELECT items FROM offline_queues WHERE name = $1`

	err := r.db.GetContext(ctx, &items, query, queue)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var attempts []model.QueuedAttempt
	err = json.Unmarshal([]byte(items), &attempts)
	if err != nil {
		return nil, fmt.Errorf("failed to decode queue %s: %w", queue, err)
	}

	return attempts, nil
}

func (r *queueRepository) ReplaceAttempts(ctx context.Context, queue string, attempts []model.QueuedAttempt) error {
	if attempts == nil {
		attempts = []model.QueuedAttempt{}
	}

	items, err := json.Marshal(attempts)
	if err != nil {
		return fmt.Errorf("failed to encode queue %s: %w", queue, err)
	}

	query := `INSERT INTO offline_queues (name, items, updated_at) VALUES ($1, $2, $3)
	          ON CONFLICT (name) DO UPDATE SET items = excluded.items, updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, query, queue, string(items), time.Now().UTC())
	return err
}
