package poller

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/aashari/go-generative-gateway/internal/types"
)

// ErrNotFound is returned when a job record does not exist or has expired.
var ErrNotFound = errors.New("job not found")

// DefaultTerminalTTL is how long finished job records stay readable.
const DefaultTerminalTTL = time.Hour

// JobStore persists job records.
type JobStore interface {
	Save(ctx context.Context, record *types.JobRecord) error
	Get(ctx context.Context, jobID string) (*types.JobRecord, error)
	Delete(ctx context.Context, jobID string) error
	ListBySession(ctx context.Context, sessionID string) ([]*types.JobRecord, error)
}

type memoryEntry struct {
	record    *types.JobRecord
	expiresAt time.Time
}

// MemoryStore is the default in-process JobStore. Terminal records expire
// after the configured TTL, like the Redis store.
type MemoryStore struct {
	mu          sync.RWMutex
	records     map[string]memoryEntry
	terminalTTL time.Duration
	now         func() time.Time
}

// NewMemoryStore creates an in-memory store. A non-positive ttl keeps
// terminal records forever.
func NewMemoryStore(terminalTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		records:     make(map[string]memoryEntry),
		terminalTTL: terminalTTL,
		now:         time.Now,
	}
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

// Save stores a copy of record.
func (s *MemoryStore) Save(_ context.Context, record *types.JobRecord) error {
	if record == nil || record.JobID == "" {
		return errors.New("job record requires a job id")
	}
	entry := memoryEntry{record: record.Clone()}
	if record.Status.IsTerminal() && s.terminalTTL > 0 {
		entry.expiresAt = s.now().Add(s.terminalTTL)
	}

	s.mu.Lock()
	s.records[record.JobID] = entry
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the record.
func (s *MemoryStore) Get(_ context.Context, jobID string) (*types.JobRecord, error) {
	s.mu.RLock()
	entry, ok := s.records[jobID]
	s.mu.RUnlock()
	if !ok || s.expired(entry) {
		return nil, ErrNotFound
	}
	return entry.record.Clone(), nil
}

// Delete removes the record; deleting a missing record is not an error.
func (s *MemoryStore) Delete(_ context.Context, jobID string) error {
	s.mu.Lock()
	delete(s.records, jobID)
	s.mu.Unlock()
	return nil
}

// ListBySession returns the session's records ordered by creation time.
func (s *MemoryStore) ListBySession(_ context.Context, sessionID string) ([]*types.JobRecord, error) {
	s.mu.Lock()
	out := make([]*types.JobRecord, 0)
	for id, entry := range s.records {
		if s.expired(entry) {
			delete(s.records, id)
			continue
		}
		if entry.record.SessionID == sessionID {
			out = append(out, entry.record.Clone())
		}
	}
	s.mu.Unlock()

	sortByCreation(out)
	return out, nil
}

func sortByCreation(records []*types.JobRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].JobID < records[j].JobID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
