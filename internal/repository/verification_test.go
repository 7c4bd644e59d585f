package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

func testRecord(id string, at time.Time, pass bool) *model.VerificationRecord {
	return &model.VerificationRecord{
		ID:        id,
		GoalID:    "g1",
		UserID:    "u1",
		CreatedAt: at,
		Signals: model.Signals{
			Manual: &model.ManualSignal{Present: true, Pass: true},
		},
		AutoPass:  pass,
		FinalPass: pass,
		Details:   model.Details{"goal_type": "schedule"},
	}
}

func newVerificationFixture(t *testing.T) (VerificationRepository, context.Context) {
	t.Helper()
	d := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewGoalRepository(d).Create(ctx, testGoal("g1", "u1")))
	return NewVerificationRepository(d), ctx
}

func TestVerificationRepository_CreateAndRead(t *testing.T) {
	repo, ctx := newVerificationFixture(t)

	at := time.Date(2025, 8, 5, 0, 30, 0, 0, time.UTC)
	rec := testRecord("v1", at, true)
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.ByID(ctx, "g1", "v1")
	require.NoError(t, err)
	assert.True(t, got.FinalPass)
	assert.False(t, got.IsDuplicate)
	assert.True(t, got.CreatedAt.Equal(at))
	require.NotNil(t, got.Signals.Manual)
	assert.True(t, got.Signals.Manual.Pass)
	assert.Nil(t, got.Signals.Photo)
	assert.Equal(t, "schedule", got.Details["goal_type"])

	_, err = repo.ByID(ctx, "other-goal", "v1")
	assert.ErrorIs(t, err, ErrVerificationNotFound)
}

func TestVerificationRepository_RangeQueries(t *testing.T) {
	repo, ctx := newVerificationFixture(t)

	day := time.Date(2025, 8, 4, 15, 0, 0, 0, time.UTC) // 2025-08-05 00:00 in Seoul
	next := day.Add(24 * time.Hour)

	require.NoError(t, repo.CreateBatch(ctx, []*model.VerificationRecord{
		testRecord("before", day.Add(-time.Second), true),
		testRecord("fail", day.Add(time.Hour), false),
		testRecord("pass", day.Add(2*time.Hour), true),
		testRecord("boundary", next, true),
	}))

	records, err := repo.ByGoalBetween(ctx, "g1", day, next)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fail", records[0].ID)
	assert.Equal(t, "pass", records[1].ID)

	has, err := repo.HasPassBetween(ctx, "g1", day, next)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasPassBetween(ctx, "g1", day, day.Add(90*time.Minute))
	require.NoError(t, err)
	assert.False(t, has, "a failed attempt is not a pass")

	latest, err := repo.ByGoal(ctx, "g1", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "boundary", latest[0].ID)

	all, err := repo.ByGoal(ctx, "g1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestVerificationRepository_CreateBatchIsAtomic(t *testing.T) {
	repo, ctx := newVerificationFixture(t)

	at := time.Date(2025, 8, 5, 1, 0, 0, 0, time.UTC)
	err := repo.CreateBatch(ctx, []*model.VerificationRecord{
		testRecord("v1", at, true),
		testRecord("v1", at, true),
	})
	require.Error(t, err)

	all, err := repo.ByGoal(ctx, "g1", 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestVerificationRepository_DeleteBatch(t *testing.T) {
	repo, ctx := newVerificationFixture(t)

	at := time.Date(2025, 8, 5, 1, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateBatch(ctx, []*model.VerificationRecord{
		testRecord("v1", at, true),
		testRecord("v2", at.Add(time.Minute), false),
		testRecord("v3", at.Add(2*time.Minute), false),
	}))

	n, err := repo.DeleteBatch(ctx, []string{"v1", "v3", "missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeleteBatch(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	all, err := repo.ByGoal(ctx, "g1", 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "v2", all[0].ID)
}

func TestVerificationRepository_GoalDeleteCascades(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	goals := NewGoalRepository(d)
	repo := NewVerificationRepository(d)

	require.NoError(t, goals.Create(ctx, testGoal("g1", "u1")))
	require.NoError(t, repo.Create(ctx, testRecord("v1", time.Now().UTC(), true)))
	require.NoError(t, goals.Delete(ctx, "u1", "g1"))

	all, err := repo.ByGoal(ctx, "g1", 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestVerificationRepository_HasPassBetweenQuery(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewVerificationRepository(sqlx.NewDb(mockDB, "pgx"))
	from := time.Date(2025, 8, 4, 15, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	query := regexp.QuoteMeta(`SELECT COUNT(*) FROM verification_records`)

	mock.ExpectQuery(query).
		WithArgs("g1", true, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	has, err := repo.HasPassBetween(context.Background(), "g1", from, to)
	require.NoError(t, err)
	assert.True(t, has)

	mock.ExpectQuery(query).
		WithArgs("g1", true, from, to).
		WillReturnError(errors.New("connection refused"))

	_, err = repo.HasPassBetween(context.Background(), "g1", from, to)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_CreateBatchRollsBack(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewVerificationRepository(sqlx.NewDb(mockDB, "pgx"))
	at := time.Date(2025, 8, 5, 1, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO verification_records`))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = repo.CreateBatch(context.Background(), []*model.VerificationRecord{
		testRecord("v1", at, true),
		testRecord("v2", at, true),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v2")
	assert.NoError(t, mock.ExpectationsWereMet())
}
