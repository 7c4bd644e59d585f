package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/SNU-Hackathon/Doany-sub000/internal/ctxkeys"
	"github.com/SNU-Hackathon/Doany-sub000/internal/db"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/offline"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
	"github.com/SNU-Hackathon/Doany-sub000/internal/service"
	"github.com/SNU-Hackathon/Doany-sub000/internal/verification"
)

// memList is an in-memory offline.ListStore.
type memList struct {
	mu    sync.Mutex
	items map[string][]model.QueuedAttempt
}

func newMemList() *memList {
	return &memList{items: make(map[string][]model.QueuedAttempt)}
}

func (m *memList) LoadAttempts(_ context.Context, queue string) ([]model.QueuedAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.QueuedAttempt(nil), m.items[queue]...), nil
}

func (m *memList) ReplaceAttempts(_ context.Context, queue string, attempts []model.QueuedAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[queue] = append([]model.QueuedAttempt(nil), attempts...)
	return nil
}

// flakyGoals fails every lookup while down is set.
type flakyGoals struct {
	repository.GoalRepository
	mu   sync.Mutex
	down bool
}

func (f *flakyGoals) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *flakyGoals) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	f.mu.Lock()
	down := f.down
	f.mu.Unlock()
	if down {
		return nil, errors.New("connection refused")
	}
	return f.GoalRepository.ByID(ctx, userID, goalID)
}

type testServer struct {
	db      *sqlx.DB
	goals   *flakyGoals
	queue   *offline.Queue
	coord   *offline.Coordinator
	handler http.Handler

	// now is the server clock seen by the verification service and the queue.
	now time.Time
}

// setNow moves the server clock to the RFC 3339 time value.
func (s *testServer) setNow(t *testing.T, value string) {
	t.Helper()
	at, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	s.now = at
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	d, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(d) })

	goals := &flakyGoals{GoalRepository: repository.NewGoalRepository(d)}
	verRepo := repository.NewVerificationRepository(d)

	goalService := service.NewGoalService(goals, "Asia/Seoul")
	s := &testServer{db: d, goals: goals, now: time.Now()}
	clock := func() time.Time { return s.now }

	verificationService := service.NewVerificationService(goals, verRepo, service.NewDuplicateGuard(verRepo), verification.DefaultPhotoRules(), nil)
	verificationService.SetClock(clock)
	statsService := service.NewStatsService(goals, verRepo, 1)
	fileService := service.NewFileService(repository.NewFileRepository(d), nil)

	queue := offline.NewQueue(newMemList(), "test", offline.Options{Now: clock})
	coord := offline.NewCoordinator(queue, offline.ProcessorFunc(verificationService.ProcessAttempt))

	goal := NewGoalHandler(goalService)
	ver := NewVerificationHandler(verificationService, fileService, queue, 5<<20)
	stats := NewStatsHandler(statsService)
	off := NewOfflineHandler(queue, coord)
	health := NewHealthHandler(d)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("POST /api/goals", goal.Create)
	mux.HandleFunc("GET /api/goals", goal.List)
	mux.HandleFunc("GET /api/goals/{id}", goal.Get)
	mux.HandleFunc("PATCH /api/goals/{id}", goal.Update)
	mux.HandleFunc("DELETE /api/goals/{id}", goal.Delete)
	mux.HandleFunc("GET /api/goals/{id}/occurrences", goal.Occurrences)
	mux.HandleFunc("POST /api/schedules/preview", goal.Preview)
	mux.HandleFunc("POST /api/goals/{id}/verifications", ver.Submit)
	mux.HandleFunc("GET /api/goals/{id}/verifications", ver.History)
	mux.HandleFunc("GET /api/goals/{id}/verifications/{vid}", ver.Get)
	mux.HandleFunc("POST /api/goals/{id}/verifications/{vid}/photo", ver.UploadPhoto)
	mux.HandleFunc("GET /api/goals/{id}/stats/weekly", stats.Weekly)
	mux.HandleFunc("POST /api/offline/attempts", off.Enqueue)
	mux.HandleFunc("GET /api/offline/attempts", off.Pending)
	mux.HandleFunc("DELETE /api/offline/attempts", off.Discard)
	mux.HandleFunc("POST /api/offline/flush", off.Flush)
	mux.HandleFunc("POST /api/connectivity", off.Connectivity)

	// Tests authenticate with the X-Test-User header.
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxkeys.WithUserID(r.Context(), r.Header.Get("X-Test-User"))
		mux.ServeHTTP(w, r.WithContext(ctx))
	})

	s.queue = queue
	s.coord = coord
	s.handler = h
	return s
}

func (s *testServer) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func tuesdayGoalBody() map[string]any {
	return map[string]any{
		"title": "Tuesday swim",
		"type":  "schedule",
		"period": map[string]string{
			"start": "2025-08-01",
			"end":   "2025-08-31",
		},
		"schedule": map[string]any{
			"rules": []map[string]any{{"byWeekday": []int{2}, "time": "09:00"}},
		},
	}
}

func (s *testServer) createGoal(t *testing.T, user string, body map[string]any) model.Goal {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/goals", user, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Goal](t, rec)
}
