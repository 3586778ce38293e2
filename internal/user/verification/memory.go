package verification

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/meshauth/pkg/cryptox"
)

type memoryEntry struct {
	principalID string
	expiresAt   time.Time
}

// MemoryStore is an in-process Store for tests and single-node dev setups.
// Redemption holds the mutex across lookup and delete, which is the whole
// atomicity story here.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, principalID string, ttl time.Duration) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[cryptox.FingerprintToken(token)] = memoryEntry{
		principalID: principalID,
		expiresAt:   now.Add(ttl),
	}

	// Opportunistic sweep so abandoned tokens don't accumulate forever.
	for fp, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, fp)
		}
	}

	return token, nil
}

func (s *MemoryStore) Redeem(_ context.Context, token string) (string, error) {
	fp := cryptox.FingerprintToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[fp]
	if !ok {
		return "", ErrNotFound
	}

	// Expired entries are absent even before the sweep catches them.
	if s.now().After(entry.expiresAt) {
		delete(s.entries, fp)
		return "", ErrNotFound
	}

	delete(s.entries, fp)
	return entry.principalID, nil
}

func (s *MemoryStore) Invalidate(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, cryptox.FingerprintToken(token))
	return nil
}
