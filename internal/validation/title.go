package validation

import (
	"strings"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
)

const MaxTitleLength = 100

// ValidateTitle validates a goal title.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return apperr.Validation("title", "title is required")
	}

	if len([]rune(trimmed)) > MaxTitleLength {
		return apperr.Validation("title", "title is too long (max %d characters)", MaxTitleLength)
	}

	return nil
}
