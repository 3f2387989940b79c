package store

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weatherlink-poller/internal/weather"
)

var (
	// ErrNotFound is returned when no record matches the request.
	ErrNotFound = errors.New("no weather records")
)

// MemoryStore is a concurrency-safe in-memory history of poll records.
type MemoryStore struct {
	mu sync.RWMutex

	// ordered by insertion, which is poll order
	records []weather.Record

	// retention configuration
	maxHistory int           // max number of records kept
	maxAge     time.Duration // optional max age for records
	clock      clockwork.Clock
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return NewMemoryStoreWithClock(maxHistory, maxAge, clockwork.NewRealClock())
}

// NewMemoryStoreWithClock is NewMemoryStore with an explicit time source for age retention.
func NewMemoryStoreWithClock(maxHistory int, maxAge time.Duration, clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		clock:      clock,
	}
}

// SaveRecord appends a record and enforces retention.
func (s *MemoryStore) SaveRecord(rec weather.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.records) > s.maxHistory {
		over := len(s.records) - s.maxHistory
		s.records = append([]weather.Record(nil), s.records[over:]...)
	}

	// Enforce retention by age; the newest record is always kept.
	if s.maxAge > 0 {
		cutoff := s.clock.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.records)-1; i++ {
			if !s.records[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.records = s.records[i:]
		}
	}
}

// GetLatest returns the most recent record.
func (s *MemoryStore) GetLatest() (weather.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return weather.Record{}, ErrNotFound
	}
	return s.records[len(s.records)-1], nil
}

// GetRange returns all records between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]weather.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Record
	for _, rec := range s.records {
		if !rec.Timestamp.Before(from) && !rec.Timestamp.After(to) {
			result = append(result, rec)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Len returns the number of records held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
