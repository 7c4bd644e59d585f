package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/ctxkeys"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/offline"
	"github.com/SNU-Hackathon/Doany-sub000/internal/service"
	"github.com/SNU-Hackathon/Doany-sub000/internal/validation"
)

type VerificationHandler struct {
	verificationService *service.VerificationService
	fileService         *service.FileService
	queue               *offline.Queue
	photoConstraints    validation.FileConstraints
}

func NewVerificationHandler(
	verificationService *service.VerificationService,
	fileService *service.FileService,
	queue *offline.Queue,
	maxUploadSize int64,
) *VerificationHandler {
	return &VerificationHandler{
		verificationService: verificationService,
		fileService:         fileService,
		queue:               queue,
		photoConstraints:    validation.PhotoConstraints(maxUploadSize),
	}
}

// submitRequest carries no attempt time; live attempts are dated by the
// server clock.
type submitRequest struct {
	Signals model.Signals `json:"signals"`
}

type queuedResponse struct {
	Queued  bool                 `json:"queued"`
	Attempt *model.QueuedAttempt `json:"attempt"`
}

type photoResponse struct {
	File *model.File `json:"file"`
	URL  string      `json:"url,omitempty"`
}

// Submit evaluates an attempt. When the store is down the attempt is put
// on the offline queue and the response is 202.
func (h *VerificationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var in submitRequest
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// A queued fallback is replayed at its enqueue time.
	payload := model.AttemptPayload{
		GoalID:  r.PathValue("id"),
		UserID:  userID,
		Signals: in.Signals,
	}

	record, err := h.verificationService.Submit(r.Context(), payload)
	if apperr.IsStoreUnavailable(err) && h.queue != nil {
		attempt, qErr := h.queue.Enqueue(r.Context(), payload)
		if qErr != nil {
			slog.Error("failed to queue attempt", "error", qErr, "goal_id", payload.GoalID)
			writeError(w, r, err)
			return
		}
		slog.Warn("store unavailable, attempt queued", "attempt_id", attempt.ID, "goal_id", payload.GoalID)
		writeJSON(w, http.StatusAccepted, queuedResponse{Queued: true, Attempt: attempt})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (h *VerificationHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, apperr.Validation("limit", "invalid limit %q", raw))
			return
		}
		limit = n
	}

	records, err := h.verificationService.History(r.Context(), userID, r.PathValue("id"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"verifications": nonNil(records)})
}

func (h *VerificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	record, err := h.verificationService.Record(r.Context(), userID, r.PathValue("id"), r.PathValue("vid"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// UploadPhoto attaches a photo to a record the caller owns. The form
// field is "photo".
func (h *VerificationHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	if !h.fileService.Enabled() {
		writeError(w, r, service.ErrUploadsDisabled)
		return
	}

	record, err := h.verificationService.Record(r.Context(), userID, r.PathValue("id"), r.PathValue("vid"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.photoConstraints.MaxSize+1<<20)
	err = r.ParseMultipartForm(h.photoConstraints.MaxSize)
	if err != nil {
		writeError(w, r, apperr.Validation("file", "invalid multipart upload"))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, r, apperr.Validation("file", "photo is required"))
		return
	}
	defer file.Close()

	err = validation.ValidateFile(header, h.photoConstraints)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := h.fileService.UploadPhoto(r.Context(), userID, record.ID, file, header)
	if err != nil {
		writeError(w, r, err)
		return
	}

	url, err := h.fileService.URL(r.Context(), stored)
	if err != nil {
		slog.Warn("failed to presign photo URL", "error", err, "file_id", stored.ID)
	}

	writeJSON(w, http.StatusCreated, photoResponse{File: stored, URL: url})
}

func (h *VerificationHandler) Photos(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	record, err := h.verificationService.Record(r.Context(), userID, r.PathValue("id"), r.PathValue("vid"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	files, err := h.fileService.Photos(r.Context(), record.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	photos := make([]photoResponse, 0, len(files))
	for _, f := range files {
		url, urlErr := h.fileService.URL(r.Context(), f)
		if urlErr != nil {
			slog.Warn("failed to presign photo URL", "error", urlErr, "file_id", f.ID)
		}
		photos = append(photos, photoResponse{File: f, URL: url})
	}

	writeJSON(w, http.StatusOK, map[string]any{"photos": photos})
}

func (h *VerificationHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	err := h.fileService.Delete(r.Context(), userID, r.PathValue("fileID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
