package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostline-games/support-agent/internal/domain"
)

func TestStaticKBServesSeededSnippets(t *testing.T) {
	kb := NewStaticKB()

	pack, err := kb.Search(context.Background(), domain.CategoryPayment, "purchase missing")
	require.NoError(t, err)
	require.Len(t, pack.Items, 1)
	assert.Contains(t, pack.Top(), "purchase history")

	pack, err = kb.Search(context.Background(), domain.CategoryBug, "crash")
	require.NoError(t, err)
	assert.Contains(t, pack.Top(), "Clear cache")
}

func TestStaticKBEmptyPackForUncoveredCategory(t *testing.T) {
	kb := NewStaticKB()

	pack, err := kb.Search(context.Background(), domain.CategoryRefund, "refund please")
	require.NoError(t, err)
	assert.Empty(t, pack.Items)
	assert.Equal(t, "", pack.Top())
}
