package resultstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
)

type slot struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore keeps result slots in process memory for tests/dev.
type MemoryStore struct {
	mu     sync.RWMutex
	prefix string
	slots  map[string]slot
	now    func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{
		prefix: prefix,
		slots:  make(map[string]slot),
		now:    time.Now,
	}
}

// Save overwrites the session's slot with the JSON encoded assessment.
func (s *MemoryStore) Save(_ context.Context, sessionID string, assessment risk.Assessment, ttl time.Duration) error {
	payload, err := json.Marshal(assessment)
	if err != nil {
		return err
	}
	s.put(slotKey(s.prefix, sessionID), payload, ttl)
	return nil
}

// Load decodes the slot; expired or corrupt slots read as absent.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (risk.Assessment, bool, error) {
	key := slotKey(s.prefix, sessionID)
	s.mu.RLock()
	entry, ok := s.slots[key]
	s.mu.RUnlock()
	if !ok {
		return risk.Assessment{}, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.drop(key)
		return risk.Assessment{}, false, nil
	}
	var assessment risk.Assessment
	if err := json.Unmarshal(entry.payload, &assessment); err != nil {
		s.drop(key)
		return risk.Assessment{}, false, nil
	}
	return assessment, true, nil
}

func (s *MemoryStore) put(key string, payload []byte, ttl time.Duration) {
	entry := slot{payload: payload}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.slots[key] = entry
	s.mu.Unlock()
}

func (s *MemoryStore) drop(key string) {
	s.mu.Lock()
	delete(s.slots, key)
	s.mu.Unlock()
}

var _ risk.ResultStore = (*MemoryStore)(nil)
