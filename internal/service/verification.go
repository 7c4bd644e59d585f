package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
	"github.com/SNU-Hackathon/Doany-sub000/internal/schedule"
	"github.com/SNU-Hackathon/Doany-sub000/internal/telemetry"
	"github.com/SNU-Hackathon/Doany-sub000/internal/verification"
)

const (
	DefaultHistoryLimit = 50

	// DefaultReplayHorizon bounds how long before it was queued a replayed
	// attempt may claim to have been made.
	DefaultReplayHorizon = 7 * 24 * time.Hour

	// clockSkew is how far past its enqueue time a replayed attempt may be.
	clockSkew = 5 * time.Minute
)

type VerificationService struct {
	goals         repository.GoalRepository
	verifications repository.VerificationRepository
	guard         *DuplicateGuard
	photoRules    verification.PhotoRules
	metrics       *telemetry.Metrics
	now           func() time.Time

	// ReplayHorizon overrides DefaultReplayHorizon when positive.
	ReplayHorizon time.Duration
}

func NewVerificationService(
	goals repository.GoalRepository,
	verifications repository.VerificationRepository,
	guard *DuplicateGuard,
	photoRules verification.PhotoRules,
	metrics *telemetry.Metrics,
) *VerificationService {
	return &VerificationService{
		goals:         goals,
		verifications: verifications,
		guard:         guard,
		photoRules:    photoRules,
		metrics:       metrics,
		now:           time.Now,
	}
}

// SetClock replaces the service clock.
func (s *VerificationService) SetClock(now func() time.Time) {
	s.now = now
}

// Submit evaluates one attempt made now and records the verdict. A failing
// verdict is still recorded and is not an error. A second pass on the same
// local day is recorded with FinalPass=false and IsDuplicate=true.
//
// in.AttemptedAt is ignored: a live attempt is dated, and its photo judged
// fresh or stale, by the server clock.
func (s *VerificationService) Submit(ctx context.Context, in model.AttemptPayload) (*model.VerificationRecord, error) {
	return s.submit(ctx, in, s.now())
}

// submit records in as made at at.
func (s *VerificationService) submit(ctx context.Context, in model.AttemptPayload, at time.Time) (*model.VerificationRecord, error) {
	goal, err := s.goals.ByID(ctx, in.UserID, in.GoalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, apperr.StoreUnavailable("goals.by_id", err)
	}

	loc, err := schedule.LoadLocation(goal.Timezone)
	if err != nil {
		return nil, err
	}

	at = at.UTC()

	signals := in.Signals
	s.validatePhoto(&signals, at)

	result := verification.Evaluate(goal.Type, signals)

	record := &model.VerificationRecord{
		ID:        uuid.New().String(),
		GoalID:    goal.ID,
		UserID:    in.UserID,
		CreatedAt: at,
		Signals:   signals,
		AutoPass:  result.Pass,
		FinalPass: result.Pass,
		Details:   result.Details,
	}

	if result.Pass && s.guard.IsDuplicate(ctx, goal.ID, loc, at) {
		record.FinalPass = false
		record.IsDuplicate = true
	}

	err = s.verifications.Create(ctx, record)
	if err != nil {
		return nil, apperr.StoreUnavailable("verifications.create", err)
	}

	outcome := telemetry.OutcomeFail
	switch {
	case record.IsDuplicate:
		outcome = telemetry.OutcomeDuplicate
	case record.FinalPass:
		outcome = telemetry.OutcomePass
	}
	s.metrics.RecordSubmission(ctx, string(goal.Type), outcome)

	slog.Info("verification recorded",
		"goal_id", goal.ID,
		"verification_id", record.ID,
		"day", schedule.DayKey(at, loc),
		"outcome", outcome,
	)
	return record, nil
}

// validatePhoto recomputes photo sub-checks from EXIF data against the
// attempt's time window and reported location. Client supplied flags are
// discarded.
func (s *VerificationService) validatePhoto(signals *model.Signals, at time.Time) {
	if signals.Photo == nil {
		return
	}

	pc := verification.PhotoContext{Now: at}
	if signals.Time != nil {
		pc.WindowStart = signals.Time.WindowStart
		pc.WindowEnd = signals.Time.WindowEnd
	}
	if signals.Location != nil {
		pc.Target = signals.Location.Point
	}

	photo := *signals.Photo
	verification.ValidatePhoto(&photo, pc, s.photoRules)
	signals.Photo = &photo
}

// ProcessAttempt replays a queued attempt. It satisfies offline.Processor.
//
// The record is dated at the payload's AttemptedAt so a replayed attempt
// lands on the day it was made. That time is trusted only inside a window
// anchored at the server's enqueue time; a zero AttemptedAt means the
// enqueue time itself.
func (s *VerificationService) ProcessAttempt(ctx context.Context, attempt model.QueuedAttempt) error {
	var payload model.AttemptPayload
	err := json.Unmarshal(attempt.Payload, &payload)
	if err != nil {
		return fmt.Errorf("failed to decode attempt %s: %w", attempt.ID, err)
	}

	at, err := s.replayTime(payload.AttemptedAt, attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to replay attempt %s: %w", attempt.ID, err)
	}

	_, err = s.submit(ctx, payload, at)
	if err != nil {
		return fmt.Errorf("failed to replay attempt %s: %w", attempt.ID, err)
	}
	return nil
}

// replayTime checks a claimed attempt time against the time the attempt
// was queued.
func (s *VerificationService) replayTime(attemptedAt, queuedAt time.Time) (time.Time, error) {
	if queuedAt.IsZero() {
		queuedAt = s.now()
	}
	if attemptedAt.IsZero() {
		return queuedAt, nil
	}

	horizon := s.ReplayHorizon
	if horizon <= 0 {
		horizon = DefaultReplayHorizon
	}
	if attemptedAt.After(queuedAt.Add(clockSkew)) {
		return time.Time{}, apperr.Validation("attemptedAt", "attemptedAt %s is after the attempt was queued", attemptedAt.UTC().Format(time.RFC3339))
	}
	if attemptedAt.Before(queuedAt.Add(-horizon)) {
		return time.Time{}, apperr.Validation("attemptedAt", "attemptedAt %s is older than %s before queueing", attemptedAt.UTC().Format(time.RFC3339), horizon)
	}
	return attemptedAt, nil
}

// History lists the newest records of a goal the user owns.
func (s *VerificationService) History(ctx context.Context, userID, goalID string, limit int) ([]*model.VerificationRecord, error) {
	_, err := s.goals.ByID(ctx, userID, goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, apperr.StoreUnavailable("goals.by_id", err)
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	records, err := s.verifications.ByGoal(ctx, goalID, limit)
	if err != nil {
		return nil, apperr.StoreUnavailable("verifications.by_goal", err)
	}
	return records, nil
}

// Record returns one record of a goal the user owns.
func (s *VerificationService) Record(ctx context.Context, userID, goalID, id string) (*model.VerificationRecord, error) {
	_, err := s.goals.ByID(ctx, userID, goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, apperr.StoreUnavailable("goals.by_id", err)
	}

	record, err := s.verifications.ByID(ctx, goalID, id)
	if errors.Is(err, repository.ErrVerificationNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, apperr.StoreUnavailable("verifications.by_id", err)
	}
	return record, nil
}
