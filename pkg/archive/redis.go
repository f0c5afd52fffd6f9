// Package archive persists finished runs to Redis so results outlive the
// in-memory registry's residency window.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/regulata/researchd/pkg/config"
	"github.com/regulata/researchd/pkg/worklog"
)

// Record is the archived form of one finished run turn.
type Record struct {
	ID          string                 `json:"id"`
	Kind        worklog.WorkflowKind   `json:"workflow"`
	Status      worklog.TaskStatus     `json:"status"`
	Turn        int                    `json:"turn"`
	CreatedAt   time.Time              `json:"created_at"`
	ArchivedAt  time.Time              `json:"archived_at"`
	FinalAnswer string                 `json:"final_answer,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Tasks       []worklog.TaskSnapshot `json:"tasks"`
	ToolCalls   int                    `json:"tool_calls"`
	Store       json.RawMessage        `json:"store"`
}

// RedisArchiver writes finished runs to Redis with a TTL.
type RedisArchiver struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg *config.ArchiveConfig) (*RedisArchiver, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisArchiver{client: client, ttl: cfg.TTL}, nil
}

// NewWithClient wraps an existing client; used by tests.
func NewWithClient(client *redis.Client, ttl time.Duration) *RedisArchiver {
	return &RedisArchiver{client: client, ttl: ttl}
}

// Key returns the archive key for one run turn.
func Key(executionID string, turn int) string {
	return fmt.Sprintf("run:%s:turn:%d", executionID, turn)
}

// ArchiveRun stores the work log's exported state under its execution id
// and turn counter. Earlier turns of the same conversation stay archived
// under their own keys.
func (a *RedisArchiver) ArchiveRun(ctx context.Context, w *worklog.WorkLog) error {
	storeJSON, err := w.DataStore.ToJSON()
	if err != nil {
		return fmt.Errorf("exporting datastore: %w", err)
	}

	snap := w.Snapshot()
	record := Record{
		ID:          w.ID,
		Kind:        w.Kind,
		Status:      w.Status,
		Turn:        w.Turn,
		CreatedAt:   w.CreatedAt,
		ArchivedAt:  time.Now(),
		FinalAnswer: w.FinalAnswer,
		Error:       w.Error,
		Tasks:       snap.Tasks,
		ToolCalls:   len(w.ToolLogs),
		Store:       json.RawMessage(storeJSON),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding archive record: %w", err)
	}

	key := Key(w.ID, w.Turn)
	if err := a.client.Set(ctx, key, data, a.ttl).Err(); err != nil {
		return fmt.Errorf("writing archive record: %w", err)
	}

	slog.Debug("Run archived", "key", key, "bytes", len(data))
	return nil
}

// Load fetches an archived run turn. Returns redis.Nil via the wrapped
// error when the key is absent or expired.
func (a *RedisArchiver) Load(ctx context.Context, executionID string, turn int) (*Record, error) {
	data, err := a.client.Get(ctx, Key(executionID, turn)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("reading archive record: %w", err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding archive record: %w", err)
	}
	return &record, nil
}

// Close releases the Redis connection.
func (a *RedisArchiver) Close() error {
	return a.client.Close()
}
