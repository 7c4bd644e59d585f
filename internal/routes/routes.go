package routes

import (
	"net/http"

	"github.com/SNU-Hackathon/Doany-sub000/internal/app"
	"github.com/SNU-Hackathon/Doany-sub000/internal/handler"
	"github.com/SNU-Hackathon/Doany-sub000/internal/middleware"
)

// SetupRoutes builds the HTTP surface. The limiter is returned so the
// caller can run its cleanup loop.
func SetupRoutes(app *app.App) (http.Handler, *middleware.RateLimiter) {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.GoalService)
	verification := handler.NewVerificationHandler(app.VerificationService, app.FileService, app.Queue, app.Cfg.MaxUploadSize)
	stats := handler.NewStatsHandler(app.StatsService)
	offline := handler.NewOfflineHandler(app.Queue, app.Coordinator)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	api := http.NewServeMux()

	// Goals
	api.HandleFunc("POST /api/goals", goal.Create)
	api.HandleFunc("GET /api/goals", goal.List)
	api.HandleFunc("GET /api/goals/{id}", goal.Get)
	api.HandleFunc("PATCH /api/goals/{id}", goal.Update)
	api.HandleFunc("DELETE /api/goals/{id}", goal.Delete)
	api.HandleFunc("GET /api/goals/{id}/occurrences", goal.Occurrences)
	api.HandleFunc("POST /api/schedules/preview", goal.Preview)

	// Verifications
	api.HandleFunc("POST /api/goals/{id}/verifications", verification.Submit)
	api.HandleFunc("GET /api/goals/{id}/verifications", verification.History)
	api.HandleFunc("GET /api/goals/{id}/verifications/{vid}", verification.Get)
	api.HandleFunc("POST /api/goals/{id}/verifications/{vid}/photo", verification.UploadPhoto)
	api.HandleFunc("GET /api/goals/{id}/verifications/{vid}/photos", verification.Photos)
	api.HandleFunc("DELETE /api/files/{fileID}", verification.DeletePhoto)

	// Stats
	api.HandleFunc("GET /api/goals/{id}/stats/weekly", stats.Weekly)

	// Offline replay
	api.HandleFunc("POST /api/offline/attempts", offline.Enqueue)
	api.HandleFunc("GET /api/offline/attempts", offline.Pending)
	api.HandleFunc("DELETE /api/offline/attempts", offline.Discard)
	api.HandleFunc("POST /api/offline/flush", offline.Flush)
	api.HandleFunc("POST /api/connectivity", offline.Connectivity)

	mux.Handle("/api/", middleware.RequireBearer(app.Cfg.JWTSecret)(api))

	limiter := middleware.NewRateLimiter(app.Cfg.RateLimitRPS, app.Cfg.RateLimitBurst)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.RequestLogging,
		limiter.Limit,
	)

	return handler, limiter
}
