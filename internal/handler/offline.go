package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/ctxkeys"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/offline"
)

type OfflineHandler struct {
	queue       *offline.Queue
	coordinator *offline.Coordinator
}

func NewOfflineHandler(queue *offline.Queue, coordinator *offline.Coordinator) *OfflineHandler {
	return &OfflineHandler{
		queue:       queue,
		coordinator: coordinator,
	}
}

type enqueueRequest struct {
	GoalID      string        `json:"goalId"`
	Signals     model.Signals `json:"signals"`
	AttemptedAt time.Time     `json:"attemptedAt"`
}

type connectivityResponse struct {
	Online bool                 `json:"online"`
	Flush  *offline.FlushReport `json:"flush,omitempty"`
}

// Enqueue buffers an attempt a device made while offline. The attempt is
// replayed on the next flush under the caller's identity.
func (h *OfflineHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var in enqueueRequest
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if in.GoalID == "" {
		writeError(w, r, apperr.Validation("goalId", "goalId is required"))
		return
	}
	if in.AttemptedAt.IsZero() {
		writeError(w, r, apperr.Validation("attemptedAt", "attemptedAt is required"))
		return
	}

	attempt, err := h.queue.Enqueue(r.Context(), model.AttemptPayload{
		GoalID:      in.GoalID,
		UserID:      userID,
		Signals:     in.Signals,
		AttemptedAt: in.AttemptedAt.UTC(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, attempt)
}

// Pending lists the caller's attempts still waiting in the queue.
func (h *OfflineHandler) Pending(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	attempts, err := h.queue.Pending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	owned := ownedBy(userID)
	mine := make([]model.QueuedAttempt, 0, len(attempts))
	for _, a := range attempts {
		if owned(a) {
			mine = append(mine, a)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"attempts": mine})
}

// Discard drops the caller's pending attempts without replaying them.
func (h *OfflineHandler) Discard(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	removed, err := h.queue.Discard(r.Context(), ownedBy(userID))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"discarded": removed})
}

func ownedBy(userID string) func(model.QueuedAttempt) bool {
	return func(a model.QueuedAttempt) bool {
		var p model.AttemptPayload
		return json.Unmarshal(a.Payload, &p) == nil && p.UserID == userID
	}
}

func (h *OfflineHandler) Flush(w http.ResponseWriter, r *http.Request) {
	report, err := h.coordinator.Flush(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Connectivity accepts a reachability observation from the caller's device.
// An offline to online edge for that device flushes the queue before the
// response is written.
func (h *OfflineHandler) Connectivity(w http.ResponseWriter, r *http.Request) {
	source := "device:" + ctxkeys.UserID(r.Context())

	var in offline.Reachability
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.coordinator.Observe(r.Context(), source, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, connectivityResponse{
		Online: h.coordinator.Online(source),
		Flush:  report,
	})
}
