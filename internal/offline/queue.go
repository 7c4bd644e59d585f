// Package offline buffers verification attempts that could not reach the
// store and replays them when connectivity returns.
//
// The queue persists its whole list through a ListStore and replays items
// one at a time. Sequential replay is part of the contract: processing two
// attempts for the same goal and day concurrently would let both pass the
// duplicate guard before either is written.
package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

var ErrFlushInProgress = errors.New("offline queue flush already in progress")

// ListStore is durable whole-list storage keyed by queue name. It is not
// meant for large lists.
type ListStore interface {
	LoadAttempts(ctx context.Context, queue string) ([]model.QueuedAttempt, error)
	ReplaceAttempts(ctx context.Context, queue string, attempts []model.QueuedAttempt) error
}

// Processor replays one attempt. A nil error means success.
type Processor interface {
	Process(ctx context.Context, attempt model.QueuedAttempt) error
}

type ProcessorFunc func(ctx context.Context, attempt model.QueuedAttempt) error

func (f ProcessorFunc) Process(ctx context.Context, attempt model.QueuedAttempt) error {
	return f(ctx, attempt)
}

type Options struct {
	MaxRetries int // model.DefaultMaxRetries when zero
	Observer   Observer
	Now        func() time.Time
	NewID      func() string
}

// FlushReport summarizes one flush pass.
type FlushReport struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Retried   int `json:"retried"`
	Dropped   int `json:"dropped"`
	Remaining int `json:"remaining"`
}

type Queue struct {
	store      ListStore
	name       string
	maxRetries int
	observer   Observer
	now        func() time.Time
	newID      func() string

	listMu   sync.Mutex // serializes read-modify-write of the stored list
	flushMu  sync.Mutex
	flushing bool
}

func NewQueue(store ListStore, name string, opts Options) *Queue {
	q := &Queue{
		store:      store,
		name:       name,
		maxRetries: opts.MaxRetries,
		observer:   opts.Observer,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if q.maxRetries <= 0 {
		q.maxRetries = model.DefaultMaxRetries
	}
	if q.now == nil {
		q.now = time.Now
	}
	if q.newID == nil {
		q.newID = func() string { return uuid.New().String() }
	}
	return q
}

func (q *Queue) Name() string {
	return q.name
}

// Enqueue appends payload as a new pending attempt. It either persists the
// attempt or returns an error.
func (q *Queue) Enqueue(ctx context.Context, payload any) (*model.QueuedAttempt, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attempt payload: %w", err)
	}

	attempt := model.QueuedAttempt{
		ID:         q.newID(),
		Payload:    raw,
		CreatedAt:  q.now().UTC(),
		RetryCount: 0,
		MaxRetries: q.maxRetries,
	}

	q.listMu.Lock()
	defer q.listMu.Unlock()

	attempts, err := q.store.LoadAttempts(ctx, q.name)
	if err != nil {
		return nil, apperr.StoreUnavailable("offline.load", err)
	}
	attempts = append(attempts, attempt)
	err = q.store.ReplaceAttempts(ctx, q.name, attempts)
	if err != nil {
		return nil, apperr.StoreUnavailable("offline.replace", err)
	}

	slog.Debug("attempt queued", "queue", q.name, "attempt_id", attempt.ID, "pending", len(attempts))
	return &attempt, nil
}

// Pending returns the stored attempts in FIFO order.
func (q *Queue) Pending(ctx context.Context) ([]model.QueuedAttempt, error) {
	attempts, err := q.store.LoadAttempts(ctx, q.name)
	if err != nil {
		return nil, apperr.StoreUnavailable("offline.load", err)
	}
	return attempts, nil
}

func (q *Queue) Len(ctx context.Context) (int, error) {
	attempts, err := q.Pending(ctx)
	if err != nil {
		return 0, err
	}
	return len(attempts), nil
}

// Discard removes every pending attempt for which match returns true and
// reports how many were removed. A flush running concurrently will not
// write them back.
func (q *Queue) Discard(ctx context.Context, match func(model.QueuedAttempt) bool) (int, error) {
	q.listMu.Lock()
	defer q.listMu.Unlock()

	attempts, err := q.store.LoadAttempts(ctx, q.name)
	if err != nil {
		return 0, apperr.StoreUnavailable("offline.load", err)
	}

	kept := make([]model.QueuedAttempt, 0, len(attempts))
	for _, a := range attempts {
		if !match(a) {
			kept = append(kept, a)
		}
	}
	removed := len(attempts) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	err = q.store.ReplaceAttempts(ctx, q.name, kept)
	if err != nil {
		return 0, apperr.StoreUnavailable("offline.replace", err)
	}
	slog.Info("offline attempts discarded", "queue", q.name, "removed", removed, "pending", len(kept))
	return removed, nil
}

// Flush replays every stored attempt through p, one at a time, in FIFO
// order. Succeeded and exhausted attempts are removed; failed ones keep
// their relative order with an incremented retry count. Attempts enqueued
// while the flush runs are kept behind them.
//
// Cancelling ctx does not stop the pass. The processor and the final write
// both run under a context detached from ctx's cancellation, so a caller
// going away cannot turn healthy replays into retries.
//
// Retried attempts are written back only if they are still stored when the
// pass ends; an attempt discarded mid-pass stays discarded.
func (q *Queue) Flush(ctx context.Context, p Processor) (FlushReport, error) {
	q.flushMu.Lock()
	if q.flushing {
		q.flushMu.Unlock()
		return FlushReport{}, ErrFlushInProgress
	}
	q.flushing = true
	q.flushMu.Unlock()

	defer func() {
		q.flushMu.Lock()
		q.flushing = false
		q.flushMu.Unlock()
	}()

	storeCtx := context.WithoutCancel(ctx)

	snapshot, err := q.store.LoadAttempts(storeCtx, q.name)
	if err != nil {
		return FlushReport{}, apperr.StoreUnavailable("offline.load", err)
	}

	var report FlushReport
	seen := make(map[string]bool, len(snapshot))
	retried := make([]model.QueuedAttempt, 0, len(snapshot))

	for _, attempt := range snapshot {
		seen[attempt.ID] = true

		next, state := q.process(storeCtx, p, attempt)
		report.Processed++
		switch state {
		case StateSuccess:
			report.Succeeded++
		case StateDropped:
			report.Dropped++
		default:
			report.Retried++
			retried = append(retried, next)
		}
	}

	q.listMu.Lock()
	defer q.listMu.Unlock()

	current, err := q.store.LoadAttempts(storeCtx, q.name)
	if err != nil {
		return report, apperr.StoreUnavailable("offline.load", err)
	}
	stored := make(map[string]bool, len(current))
	for _, attempt := range current {
		stored[attempt.ID] = true
	}

	remaining := make([]model.QueuedAttempt, 0, len(current))
	for _, attempt := range retried {
		if stored[attempt.ID] {
			remaining = append(remaining, attempt)
		}
	}
	for _, attempt := range current {
		if !seen[attempt.ID] {
			remaining = append(remaining, attempt)
		}
	}

	err = q.store.ReplaceAttempts(storeCtx, q.name, remaining)
	if err != nil {
		return report, apperr.StoreUnavailable("offline.replace", err)
	}
	report.Remaining = len(remaining)

	slog.Info("offline queue flushed",
		"queue", q.name,
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"retried", report.Retried,
		"dropped", report.Dropped,
		"remaining", report.Remaining,
	)
	return report, nil
}

// process drives one attempt through Pending -> Processing -> Success |
// Retrying -> Pending | Dropped.
func (q *Queue) process(ctx context.Context, p Processor, attempt model.QueuedAttempt) (model.QueuedAttempt, State) {
	maxRetries := attempt.MaxRetries
	if maxRetries <= 0 {
		maxRetries = q.maxRetries
	}

	q.emit(Transition{AttemptID: attempt.ID, From: StatePending, To: StateProcessing, RetryCount: attempt.RetryCount})

	err := p.Process(ctx, attempt)
	if err == nil {
		q.emit(Transition{AttemptID: attempt.ID, From: StateProcessing, To: StateSuccess, RetryCount: attempt.RetryCount})
		return attempt, StateSuccess
	}

	attempt.RetryCount++
	if attempt.RetryCount >= maxRetries {
		slog.Warn("offline attempt dropped after max retries",
			"queue", q.name,
			"attempt_id", attempt.ID,
			"retry_count", attempt.RetryCount,
			"max_retries", maxRetries,
			"error", err,
		)
		q.emit(Transition{AttemptID: attempt.ID, From: StateProcessing, To: StateDropped, RetryCount: attempt.RetryCount, Err: err})
		return attempt, StateDropped
	}

	slog.Debug("offline attempt failed, will retry",
		"queue", q.name,
		"attempt_id", attempt.ID,
		"retry_count", attempt.RetryCount,
		"error", err,
	)
	q.emit(Transition{AttemptID: attempt.ID, From: StateProcessing, To: StateRetrying, RetryCount: attempt.RetryCount, Err: err})
	q.emit(Transition{AttemptID: attempt.ID, From: StateRetrying, To: StatePending, RetryCount: attempt.RetryCount})
	return attempt, StatePending
}

func (q *Queue) emit(t Transition) {
	if q.observer != nil {
		q.observer(t)
	}
}
