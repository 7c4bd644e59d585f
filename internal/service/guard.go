package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
	"github.com/SNU-Hackathon/Doany-sub000/internal/schedule"
)

// DuplicateGuard enforces one counted pass per goal per local calendar day.
//
// It fails open: when the store cannot answer, the attempt is treated as
// the first pass of the day and a warning is logged.
type DuplicateGuard struct {
	verifications repository.VerificationRepository
}

func NewDuplicateGuard(verifications repository.VerificationRepository) *DuplicateGuard {
	return &DuplicateGuard{verifications: verifications}
}

// IsDuplicate reports whether goalID already has a counted pass on the
// day containing at, in loc.
func (g *DuplicateGuard) IsDuplicate(ctx context.Context, goalID string, loc *time.Location, at time.Time) bool {
	from, to := schedule.DayBounds(at, loc)

	exists, err := g.verifications.HasPassBetween(ctx, goalID, from, to)
	if err != nil {
		slog.Warn("duplicate check unavailable, allowing pass",
			"goal_id", goalID,
			"day", schedule.DayKey(at, loc),
			"error", err,
		)
		return false
	}
	return exists
}
