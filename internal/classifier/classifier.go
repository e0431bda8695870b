// Package classifier provides the two classification tiers: a remote
// model-backed classifier and a deterministic keyword classifier. The triage
// service selects between them; both satisfy the same interface.
package classifier

import (
	"context"

	"github.com/frostline-games/support-agent/internal/domain"
)

// Classifier assigns a category to message text in a detected language.
type Classifier interface {
	Classify(ctx context.Context, text string, language domain.Language) (domain.Classification, error)
}
