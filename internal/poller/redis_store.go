package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis job store.
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	KeyPrefix   string
	TerminalTTL time.Duration
}

// RedisStore keeps job records in Redis: one JSON string per job plus a
// sorted set per session scored by creation time. Terminal records get a TTL
// so Redis evicts them on its own.
type RedisStore struct {
	client      *redis.Client
	keyPrefix   string
	terminalTTL time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "gateway:"
	}
	return &RedisStore{
		client:      client,
		keyPrefix:   prefix + "job:",
		terminalTTL: opts.TerminalTTL,
	}, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) dataKey(jobID string) string {
	return s.keyPrefix + "data:" + jobID
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return s.keyPrefix + "session:" + sessionID
}

// Save writes the record and indexes it under its session.
func (s *RedisStore) Save(ctx context.Context, record *types.JobRecord) error {
	if record == nil || record.JobID == "" {
		return errors.New("job record requires a job id")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal job record: %w", err)
	}

	var ttl time.Duration
	if record.Status.IsTerminal() {
		ttl = s.terminalTTL
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.dataKey(record.JobID), data, ttl)
	if record.SessionID != "" {
		score := float64(record.CreatedAt.UnixNano())
		pipe.ZAdd(ctx, s.sessionKey(record.SessionID), redis.Z{Score: score, Member: record.JobID})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save job %s: %w", record.JobID, err)
	}
	return nil
}

// Get loads a record by job id.
func (s *RedisStore) Get(ctx context.Context, jobID string) (*types.JobRecord, error) {
	data, err := s.client.Get(ctx, s.dataKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	var record types.JobRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", jobID, err)
	}
	return &record, nil
}

// Delete removes the record and its session index entry.
func (s *RedisStore) Delete(ctx context.Context, jobID string) error {
	record, err := s.Get(ctx, jobID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.dataKey(jobID))
	if record.SessionID != "" {
		pipe.ZRem(ctx, s.sessionKey(record.SessionID), jobID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// ListBySession returns the session's live records ordered by creation time.
// Index entries whose record has expired are pruned.
func (s *RedisStore) ListBySession(ctx context.Context, sessionID string) ([]*types.JobRecord, error) {
	key := s.sessionKey(sessionID)
	ids, err := s.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs of session %s: %w", sessionID, err)
	}

	out := make([]*types.JobRecord, 0, len(ids))
	var stale []interface{}
	for _, id := range ids {
		record, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if len(stale) > 0 {
		s.client.ZRem(ctx, key, stale...)
	}

	sortByCreation(out)
	return out, nil
}
