package generation

import (
	"context"

	"github.com/taskraft/taskraft-api/internal/domain"
)

// Generator defines the interface for producing task drafts from free-form
// meeting-minutes text. It is the boundary between the application core and
// external AI/LLM services: the core consumes drafts, validates them with
// the same rules as manual task creation, and persists them in one batch.
type Generator interface {
	// GenerateDrafts proposes task drafts based on the provided minutes
	// text. Drafts are suggestions only; nothing is persisted and no
	// authorization is implied. Returns an error from this package's
	// taxonomy if generation fails.
	GenerateDrafts(ctx context.Context, minutesText string) ([]*domain.TaskDraft, error)
}
