// README: Wizard session store backed by Redis strings with a sliding TTL.
package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "wizard:session:%s"
	// DefaultSessionTTL drops abandoned drafts.
	DefaultSessionTTL = 2 * time.Hour
)

type SessionStore interface {
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, id string, st State) error
	// Update writes only over a live session and reports ErrSessionNotFound otherwise.
	Update(ctx context.Context, id string, st State) error
	// Claim removes the session and returns its last state. Of two concurrent
	// claims exactly one succeeds; the other gets ErrSessionNotFound.
	Claim(ctx context.Context, id string) (State, error)
	Delete(ctx context.Context, id string) error
}

type RedisSessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisSessionStore(redis *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{redis: redis, ttl: ttl}
}

func (s *RedisSessionStore) Load(ctx context.Context, id string) (State, error) {
	return decodeSession(s.redis.Get(ctx, sessionKey(id)).Bytes())
}

// Claim uses GETDEL so the read and the delete are one command.
func (s *RedisSessionStore) Claim(ctx context.Context, id string) (State, error) {
	return decodeSession(s.redis.GetDel(ctx, sessionKey(id)).Bytes())
}

func decodeSession(val []byte, err error) (State, error) {
	if err == redis.Nil {
		return State{}, ErrSessionNotFound
	}
	if err != nil {
		return State{}, err
	}
	var st State
	if err := json.Unmarshal(val, &st); err != nil {
		return State{}, fmt.Errorf("decode wizard session: %w", err)
	}
	return st, nil
}

// Save writes the snapshot and restarts its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, id string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, sessionKey(id), raw, s.ttl).Err()
}

func (s *RedisSessionStore) Update(ctx context.Context, id string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	ok, err := s.redis.SetXX(ctx, sessionKey(id), raw, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, sessionKey(id)).Err()
}

func sessionKey(id string) string {
	return fmt.Sprintf(sessionKeyPrefix, id)
}

type memorySession struct {
	state   State
	expires time.Time
}

// MemorySessionStore keeps sessions in process; expired entries are dropped on read.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Load(ctx context.Context, id string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(id)
}

func (m *MemorySessionStore) Claim(ctx context.Context, id string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, err := m.live(id)
	if err != nil {
		return State{}, err
	}
	delete(m.sessions, id)
	return st, nil
}

func (m *MemorySessionStore) Update(ctx context.Context, id string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.live(id); err != nil {
		return err
	}
	m.sessions[id] = memorySession{state: st, expires: m.now().Add(m.ttl)}
	return nil
}

// live must be called with mu held.
func (m *MemorySessionStore) live(id string) (State, error) {
	s, ok := m.sessions[id]
	if !ok {
		return State{}, ErrSessionNotFound
	}
	if m.now().After(s.expires) {
		delete(m.sessions, id)
		return State{}, ErrSessionNotFound
	}
	return s.state, nil
}

func (m *MemorySessionStore) Save(ctx context.Context, id string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = memorySession{state: st, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
