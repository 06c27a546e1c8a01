package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/ads-advisor/internal/advisor"
)

func setupRedisStore(t *testing.T, maxTurns int) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, maxTurns, time.Hour), mr
}

// Both implementations must behave identically at the interface.
func stores(t *testing.T) map[string]Store {
	redisStore, _ := setupRedisStore(t, 0)
	return map[string]Store{
		"memory": NewMemoryStore(0),
		"redis":  redisStore,
	}
}

func TestStore_AppendAndHistory(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Append(ctx, "s1", advisor.Message{Role: advisor.RoleUser, Content: "how are my ads?"}))
			require.NoError(t, s.Append(ctx, "s1", advisor.Message{Role: advisor.RoleAssistant, Content: "Mixed."}))

			turns, err := s.History(ctx, "s1", 0)
			require.NoError(t, err)
			require.Len(t, turns, 2)
			assert.Equal(t, advisor.RoleUser, turns[0].Role)
			assert.Equal(t, "Mixed.", turns[1].Content)
		})
	}
}

func TestStore_HistoryLimitReturnsNewestTurns(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 6; i++ {
				require.NoError(t, s.Append(ctx, "s1", advisor.Message{Role: advisor.RoleUser, Content: fmt.Sprintf("turn %d", i)}))
			}

			turns, err := s.History(ctx, "s1", 2)
			require.NoError(t, err)
			require.Len(t, turns, 2)
			assert.Equal(t, "turn 4", turns[0].Content)
			assert.Equal(t, "turn 5", turns[1].Content)
		})
	}
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Append(ctx, "a", advisor.Message{Role: advisor.RoleUser, Content: "A"}))
			require.NoError(t, s.Append(ctx, "b", advisor.Message{Role: advisor.RoleUser, Content: "B"}))

			turns, err := s.History(ctx, "a", 0)
			require.NoError(t, err)
			require.Len(t, turns, 1)
			assert.Equal(t, "A", turns[0].Content)
		})
	}
}

func TestStore_Clear(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Append(ctx, "s1", advisor.Message{Role: advisor.RoleUser, Content: "hello"}))
			require.NoError(t, s.Clear(ctx, "s1"))

			turns, err := s.History(ctx, "s1", 0)
			require.NoError(t, err)
			assert.Empty(t, turns)
		})
	}
}

func TestStore_RetentionBound(t *testing.T) {
	redisStore, _ := setupRedisStore(t, 3)
	for name, s := range map[string]Store{
		"memory": NewMemoryStore(3),
		"redis":  redisStore,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 10; i++ {
				require.NoError(t, s.Append(ctx, "s1", advisor.Message{Role: advisor.RoleUser, Content: fmt.Sprintf("turn %d", i)}))
			}

			turns, err := s.History(ctx, "s1", 0)
			require.NoError(t, err)
			require.Len(t, turns, 3)
			assert.Equal(t, "turn 7", turns[0].Content)
			assert.Equal(t, "turn 9", turns[2].Content)
		})
	}
}

func TestRedisStore_ExpiresIdleSessions(t *testing.T) {
	store, mr := setupRedisStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", advisor.Message{Role: advisor.RoleUser, Content: "hello"}))

	mr.FastForward(2 * time.Hour)

	turns, err := store.History(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRedisStore_SkipsCorruptTurns(t *testing.T) {
	store, mr := setupRedisStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", advisor.Message{Role: advisor.RoleUser, Content: "good"}))
	mr.Lpush(sessionKey("s1"), "{not json")

	turns, err := store.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "good", turns[0].Content)
}
