package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Turn is one completed question/answer exchange. Turns are immutable once
// appended.
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Store keeps a bounded ring of recent conversation turns per session in a
// Redis list. Sessions are created lazily on first append; an idle TTL evicts
// abandoned sessions. Redis executes each pipelined append atomically, which
// gives the per-session serialization concurrent requests need.
type Store struct {
	client   redis.Cmdable
	maxTurns int
	ttl      time.Duration
}

// NewStore creates a conversation store retaining maxTurns turns per session.
func NewStore(client redis.Cmdable, maxTurns int, ttl time.Duration) *Store {
	return &Store{client: client, maxTurns: maxTurns, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID + ":turns"
}

// Append records a completed turn and evicts the oldest once the session
// exceeds the retention limit.
func (s *Store) Append(ctx context.Context, sessionID, question, answer string) error {
	key := sessionKey(sessionID)

	data, err := json.Marshal(Turn{
		Question:  question,
		Answer:    answer,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshaling turn: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}
	return nil
}

// Recent returns up to maxTurns turns for the session, oldest first. An
// unknown session yields an empty slice, not an error.
func (s *Store) Recent(ctx context.Context, sessionID string) ([]Turn, error) {
	key := sessionKey(sessionID)

	vals, err := s.client.LRange(ctx, key, int64(-s.maxTurns), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	turns := make([]Turn, 0, len(vals))
	for _, v := range vals {
		var turn Turn
		if err := json.Unmarshal([]byte(v), &turn); err != nil {
			continue // skip malformed entries
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear drops all turns for the session. Clearing an unknown session is a
// no-op.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

// TurnCount reports how many turns the session currently holds.
func (s *Store) TurnCount(ctx context.Context, sessionID string) (int64, error) {
	return s.client.LLen(ctx, sessionKey(sessionID)).Result()
}
