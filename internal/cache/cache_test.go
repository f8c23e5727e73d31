package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formalyze/internal/model"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConversationCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Should round trip a conversation with TTL", func(t *testing.T) {
		mr, client := newRedis(t)
		c := NewConversationCache(client)

		conv := &model.Conversation{ID: "s1", OwnerID: "u1", MainIndex: 2}
		conv.Say("What is the purpose?")
		conv.Hear("Customer feedback")
		require.NoError(t, c.Set(ctx, conv))

		got, err := c.Get(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "u1", got.OwnerID)
		assert.Equal(t, 2, got.MainIndex)
		assert.Len(t, got.History, 2)
		assert.Equal(t, ConversationTTL, mr.TTL("conversation:s1"))
	})

	t.Run("Should return nil for missing or expired sessions", func(t *testing.T) {
		mr, client := newRedis(t)
		c := NewConversationCache(client)

		got, err := c.Get(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, c.Set(ctx, &model.Conversation{ID: "s2"}))
		mr.FastForward(ConversationTTL + time.Second)

		got, err = c.Get(ctx, "s2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Should delete a conversation", func(t *testing.T) {
		_, client := newRedis(t)
		c := NewConversationCache(client)

		require.NoError(t, c.Set(ctx, &model.Conversation{ID: "s3"}))
		require.NoError(t, c.Delete(ctx, "s3"))

		got, err := c.Get(ctx, "s3")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestResultsCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store and invalidate results", func(t *testing.T) {
		mr, client := newRedis(t)
		c := NewResultsCache(client)

		require.NoError(t, c.Set(ctx, &model.SurveyResults{SurveyID: "sv", TotalResponses: 3}))
		assert.Equal(t, ResultsTTL, mr.TTL("survey:sv:results"))

		got, err := c.Get(ctx, "sv")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 3, got.TotalResponses)

		require.NoError(t, c.Invalidate(ctx, "sv"))
		got, err = c.Get(ctx, "sv")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Should surface redis failures", func(t *testing.T) {
		mr, client := newRedis(t)
		c := NewResultsCache(client)
		mr.Close()

		_, err := c.Get(ctx, "sv")
		assert.Error(t, err)
	})
}
