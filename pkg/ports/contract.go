package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunContextStoreContract checks the behavior every ContextStore adapter must
// share. Adapters call it from their own tests with a fresh store.
func RunContextStoreContract(t *testing.T, store ContextStore) {
	ctx := context.Background()
	prefix := fmt.Sprintf("contract-%d", time.Now().UnixNano())

	t.Run("round trip keeps context and history", func(t *testing.T) {
		id := prefix + "-roundtrip"
		at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		conv := domain.NewConversationContext(id)
		conv.Merge(map[string]any{"building": "north", "floor": 3})
		conv.Record(domain.ActionCountElements, at)
		conv.Record(domain.ActionHighlightElements, at.Add(time.Minute))

		require.NoError(t, store.Save(ctx, id, conv))

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.SessionID)
		assert.Equal(t, "north", got.ExecutionContext["building"])
		// Serializing adapters hand numbers back as float64.
		assert.Contains(t, got.ExecutionContext, "floor")
		require.Len(t, got.History, 2)
		assert.Equal(t, domain.ActionCountElements, got.History[0].Action)
		assert.Equal(t, domain.ActionHighlightElements, got.History[1].Action)
	})

	t.Run("save replaces previous state", func(t *testing.T) {
		id := prefix + "-replace"
		first := domain.NewConversationContext(id)
		first.Merge(map[string]any{"shift": "day"})
		require.NoError(t, store.Save(ctx, id, first))

		second := domain.NewConversationContext(id)
		second.Merge(map[string]any{"shift": "night"})
		require.NoError(t, store.Save(ctx, id, second))

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "night", got.ExecutionContext["shift"])
		_ = store.Delete(ctx, id)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		id := prefix + "-roundtrip"
		require.NoError(t, store.Save(ctx, id, domain.NewConversationContext(id)))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("list", func(t *testing.T) {
		ids := []string{prefix + "-a", prefix + "-b"}
		for _, id := range ids {
			require.NoError(t, store.Save(ctx, id, domain.NewConversationContext(id)))
		}
		t.Cleanup(func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		})

		listed, err := store.List(ctx)
		require.NoError(t, err)
		assert.Subset(t, listed, ids)
	})
}
