package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

var (
	ErrVerificationNotFound = errors.New("verification record not found")
)

// VerificationRepository stores immutable verification records. Range
// queries are half-open: [from, to).
type VerificationRepository interface {
	Create(ctx context.Context, record *model.VerificationRecord) error
	CreateBatch(ctx context.Context, records []*model.VerificationRecord) error
	ByID(ctx context.Context, goalID, id string) (*model.VerificationRecord, error)
	ByGoal(ctx context.Context, goalID string, limit int) ([]*model.VerificationRecord, error)
	ByGoalBetween(ctx context.Context, goalID string, from, to time.Time) ([]*model.VerificationRecord, error)
	HasPassBetween(ctx context.Context, goalID string, from, to time.Time) (bool, error)
	DeleteBatch(ctx context.Context, ids []string) (int64, error)
}

type verificationRepository struct {
	db *sqlx.DB
}

func NewVerificationRepository(db *sqlx.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

const insertVerification = `INSERT INTO verification_records (id, goal_id, user_id, created_at, signals, auto_pass, final_pass, is_duplicate, details)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func insertArgs(record *model.VerificationRecord) []any {
	return []any{
		record.ID,
		record.GoalID,
		record.UserID,
		record.CreatedAt.UTC(),
		record.Signals,
		record.AutoPass,
		record.FinalPass,
		record.IsDuplicate,
		record.Details,
	}
}

func (r *verificationRepository) Create(ctx context.Context, record *model.VerificationRecord) error {
	_, err := r.db.ExecContext(ctx, insertVerification, insertArgs(record)...)
	return err
}

// CreateBatch writes all records or none.
func (r *verificationRepository) CreateBatch(ctx context.Context, records []*model.VerificationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, insertVerification)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx, insertArgs(record)...)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", record.ID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *verificationRepository) ByID(ctx context.Context, goalID, id string) (*model.VerificationRecord, error) {
	record := &model.VerificationRecord{}
	query := `SELECT * FROM verification_records WHERE id = $1 AND goal_id = $2`

	err := r.db.GetContext(ctx, record, query, id, goalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVerificationNotFound
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

// ByGoal returns the newest records first. A non-positive limit returns all.
func (r *verificationRepository) ByGoal(ctx context.Context, goalID string, limit int) ([]*model.VerificationRecord, error) {
	var records []*model.VerificationRecord

	query := `SELECT * FROM verification_records WHERE goal_id = $1 ORDER BY created_at DESC`
	args := []any{goalID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	err := r.db.SelectContext(ctx, &records, query, args...)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *verificationRepository) ByGoalBetween(ctx context.Context, goalID string, from, to time.Time) ([]*model.VerificationRecord, error) {
	var records []*model.VerificationRecord
	query := `SELECT * FROM verification_records
	          WHERE goal_id = $1 AND created_at >= $2 AND created_at < $3
	          ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &records, query, goalID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}

	return records, nil
}

// HasPassBetween reports whether a counted pass exists in [from, to).
func (r *verificationRepository) HasPassBetween(ctx context.Context, goalID string, from, to time.Time) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM verification_records
	          WHERE goal_id = $1 AND final_pass = $2 AND created_at >= $3 AND created_at < $4`

	err := r.db.GetContext(ctx, &count, query, goalID, true, from.UTC(), to.UTC())
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// DeleteBatch removes the given records in one statement and reports how
// many existed.
func (r *verificationRepository) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`DELETE FROM verification_records WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
