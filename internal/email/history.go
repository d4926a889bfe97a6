package email

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"lab-backend/internal/models"
)

const (
	DefaultHistoryLimit = 500
	HistoryKey          = "emails:historico"
)

// HistoryStore keeps sent email entries. List returns newest first.
type HistoryStore interface {
	Append(ctx context.Context, entry models.EmailLog) error
	List(ctx context.Context) ([]models.EmailLog, error)
	Clear(ctx context.Context) error
}

// MemoryHistory lives for the lifetime of the process.
type MemoryHistory struct {
	mu      sync.Mutex
	limit   int
	entries []models.EmailLog
}

func NewMemoryHistory(limit int) *MemoryHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryHistory{limit: limit}
}

func (h *MemoryHistory) Append(_ context.Context, entry models.EmailLog) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append([]models.EmailLog(nil), h.entries[over:]...)
	}
	return nil
}

func (h *MemoryHistory) List(_ context.Context) ([]models.EmailLog, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.EmailLog, 0, len(h.entries))
	for i := len(h.entries) - 1; i >= 0; i-- {
		out = append(out, h.entries[i])
	}
	return out, nil
}

func (h *MemoryHistory) Clear(_ context.Context) error {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
	return nil
}

// RedisHistory stores entries as JSON in a capped redis list.
type RedisHistory struct {
	rdb   redis.Cmdable
	key   string
	limit int64
}

func NewRedisHistory(rdb redis.Cmdable, limit int64) *RedisHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &RedisHistory{rdb: rdb, key: HistoryKey, limit: limit}
}

func (h *RedisHistory) Append(ctx context.Context, entry models.EmailLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := h.rdb.TxPipeline()
	pipe.LPush(ctx, h.key, data)
	pipe.LTrim(ctx, h.key, 0, h.limit-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (h *RedisHistory) List(ctx context.Context) ([]models.EmailLog, error) {
	raw, err := h.rdb.LRange(ctx, h.key, 0, h.limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.EmailLog, 0, len(raw))
	for _, item := range raw {
		var entry models.EmailLog
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("decode email history: %w", err)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (h *RedisHistory) Clear(ctx context.Context) error {
	return h.rdb.Del(ctx, h.key).Err()
}
