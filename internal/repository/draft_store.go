package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"drugbee/internal/billing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrDraftNotFound is returned when a draft id does not reference a live
// draft (expired, finalized, or discarded).
var ErrDraftNotFound = errors.New("draft not found")

// DraftStore persists draft sales between register requests. Drafts are
// mutable scratch state with a TTL — they are not part of the audit record,
// so they live outside Postgres.
type DraftStore interface {
	Get(ctx context.Context, id uuid.UUID) (*billing.Draft, error)
	Put(ctx context.Context, d *billing.Draft) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ── Redis implementation ─────────────────────────────────────────────────────

type redisDraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDraftStore(rdb *redis.Client, ttl time.Duration) DraftStore {
	return &redisDraftStore{rdb: rdb, ttl: ttl}
}

func draftKey(id uuid.UUID) string { return "draft:" + id.String() }

func (s *redisDraftStore) Get(ctx context.Context, id uuid.UUID) (*billing.Draft, error) {
	raw, err := s.rdb.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var d billing.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *redisDraftStore) Put(ctx context.Context, d *billing.Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, draftKey(d.ID), raw, s.ttl).Err()
}

func (s *redisDraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, draftKey(id)).Err()
}

// ── In-memory implementation ─────────────────────────────────────────────────
// Used by unit tests and single-register deployments without Redis.

type memoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID][]byte
}

func NewMemoryDraftStore() DraftStore {
	return &memoryDraftStore{drafts: make(map[uuid.UUID][]byte)}
}

func (s *memoryDraftStore) Get(_ context.Context, id uuid.UUID) (*billing.Draft, error) {
	s.mu.RLock()
	raw, ok := s.drafts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrDraftNotFound
	}
	var d billing.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *memoryDraftStore) Put(_ context.Context, d *billing.Draft) error {
	// Serialized like the Redis store so both share copy semantics: callers
	// never hold a reference into stored state.
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.drafts[d.ID] = raw
	s.mu.Unlock()
	return nil
}

func (s *memoryDraftStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
	return nil
}
