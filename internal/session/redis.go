package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/ads-advisor/internal/advisor"
)

const sessionKeyPrefix = "advisor:session:"

// DefaultTTL is how long an idle conversation survives.
const DefaultTTL = 24 * time.Hour

// RedisStore keeps conversation history in a Redis list per session, trimmed
// to a bounded number of turns and expired after inactivity.
type RedisStore struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
}

// NewRedisStore creates a Redis-backed store. Zero maxTurns or ttl select the
// defaults.
func NewRedisStore(client *redis.Client, maxTurns int, ttl time.Duration) *RedisStore {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, maxTurns: maxTurns, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, msg advisor.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling turn: %w", err)
	}

	key := sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	return nil
}

func (s *RedisStore) History(ctx context.Context, sessionID string, n int) ([]advisor.Message, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}

	raw, err := s.client.LRange(ctx, sessionKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	out := make([]advisor.Message, 0, len(raw))
	for _, entry := range raw {
		var msg advisor.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			log.Printf("SessionStore: skipping corrupt turn in %s: %v", sessionID, err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
