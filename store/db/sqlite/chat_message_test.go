package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/recall/internal/profile"
	"github.com/hrygo/recall/store"
)

func newTestDriver(t *testing.T) store.Driver {
	t.Helper()

	driver, err := NewDB(&profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "recall_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })

	require.NoError(t, driver.Migrate(context.Background()))
	return driver
}

func newMessage(uid, content string, embedding []float32) *store.ChatMessage {
	return &store.ChatMessage{
		UID:       uid,
		Content:   content,
		Author:    "alex",
		CreatedAt: "2025-10-04 12:00:00 UTC",
		Embedding: embedding,
	}
}

func TestCreateChatMessage_CountGrowsByOne(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		msg := newMessage(fmt.Sprintf("uid-%d", i), "repeated content", []float32{1, 0, 0})
		require.NoError(t, driver.CreateChatMessage(ctx, msg))
		assert.NotZero(t, msg.ID)
		assert.NotZero(t, msg.CreatedTs)

		count, err := driver.CountChatMessages(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)
	}
}

func TestVectorSearchChatMessages_OrderedByDistance(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	require.NoError(t, driver.CreateChatMessage(ctx, newMessage("uid-far", "far", []float32{0, 1, 0})))
	require.NoError(t, driver.CreateChatMessage(ctx, newMessage("uid-near", "near", []float32{1, 0.1, 0})))
	require.NoError(t, driver.CreateChatMessage(ctx, newMessage("uid-exact", "exact", []float32{1, 0, 0})))

	results, err := driver.VectorSearchChatMessages(ctx, &store.VectorSearchOptions{
		Vector: []float32{1, 0, 0},
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "exact", results[0].Message.Content)
	assert.Equal(t, "near", results[1].Message.Content)
	assert.Equal(t, "far", results[2].Message.Content)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Score, results[i].Score)
	}
	assert.InDelta(t, 0, results[0].Score, 1e-6)
}

func TestVectorSearchChatMessages_LimitApplied(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		msg := newMessage(fmt.Sprintf("uid-%d", i), "content", []float32{1, float32(i) * 0.1, 0})
		require.NoError(t, driver.CreateChatMessage(ctx, msg))
	}

	results, err := driver.VectorSearchChatMessages(ctx, &store.VectorSearchOptions{
		Vector: []float32{1, 0, 0},
		Limit:  2,
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestVectorSearchChatMessages_EmptyIndex(t *testing.T) {
	driver := newTestDriver(t)

	results, err := driver.VectorSearchChatMessages(context.Background(), &store.VectorSearchOptions{
		Vector: []float32{1, 0, 0},
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}
