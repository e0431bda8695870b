package knowledge

import (
	"context"

	"github.com/frostline-games/support-agent/internal/domain"
)

// KnowledgeBase retrieves reply evidence for a category.
type KnowledgeBase interface {
	Search(ctx context.Context, category domain.Category, query string) (domain.EvidencePack, error)
}

// StaticKB serves a fixed set of support snippets. It is the default
// knowledge source; richer backends can replace it behind the same
// interface.
type StaticKB struct {
	entries map[domain.Category][]domain.Evidence
}

// NewStaticKB seeds the built-in snippets.
func NewStaticKB() *StaticKB {
	return &StaticKB{
		entries: map[domain.Category][]domain.Evidence{
			domain.CategoryPayment: {
				{
					Title:    "Delayed purchase delivery",
					Snippet:  "Check your purchase history in the platform store (Apple/Google). Transactions can take up to 24h.",
					SourceID: "kb-payment-001",
				},
			},
			domain.CategoryBug: {
				{
					Title:    "General troubleshooting",
					Snippet:  "Clear cache and restart the app. Ensure you are on v1.2.0.",
					SourceID: "kb-bug-001",
				},
			},
		},
	}
}

// Search returns the snippets for the category. The query is unused here but
// kept on the interface for retrieval-backed implementations.
func (kb *StaticKB) Search(_ context.Context, category domain.Category, _ string) (domain.EvidencePack, error) {
	found := kb.entries[category]
	if len(found) == 0 {
		return domain.EvidencePack{}, nil
	}
	return domain.EvidencePack{Items: append([]domain.Evidence(nil), found...)}, nil
}
