package handler

import (
	"net/http"

	"github.com/SNU-Hackathon/Doany-sub000/internal/ctxkeys"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
	"github.com/SNU-Hackathon/Doany-sub000/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

type previewRequest struct {
	Type     model.GoalType   `json:"type"`
	Timezone string           `json:"timezone"`
	Period   model.Period     `json:"period"`
	Schedule model.Recurrence `json:"schedule"`
}

type occurrencesResponse struct {
	Occurrences []model.Occurrence `json:"occurrences"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var in service.CreateGoalInput
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = repository.GoalSortRecent
	}

	goals, err := h.goalService.Goals(r.Context(), userID, sortBy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if goals == nil {
		goals = []*model.Goal{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	goal, err := h.goalService.ByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var in service.UpdateGoalInput
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.Update(r.Context(), userID, r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	err := h.goalService.Delete(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) Occurrences(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	occurrences, err := h.goalService.Occurrences(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, occurrencesResponse{Occurrences: nonNil(occurrences)})
}

// Preview builds occurrences for an unsaved schedule.
func (h *GoalHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var in previewRequest
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	occurrences, err := h.goalService.Preview(in.Type, model.GoalSchedule{
		Timezone: in.Timezone,
		Period:   in.Period,
		Schedule: in.Schedule,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, occurrencesResponse{Occurrences: nonNil(occurrences)})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
