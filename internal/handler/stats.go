package handler

import (
	"net/http"

	"github.com/SNU-Hackathon/Doany-sub000/internal/ctxkeys"
	"github.com/SNU-Hackathon/Doany-sub000/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	result, err := h.statsService.Weekly(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	result.Weeks = nonNil(result.Weeks)

	writeJSON(w, http.StatusOK, result)
}
