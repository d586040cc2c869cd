package cache

import (
	"container/list"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxSize is the default number of entries a Store holds
	// before it starts evicting.
	DefaultMaxSize = 50

	// DefaultTTL is how long an entry stays valid after it was written.
	DefaultTTL = 30 * time.Minute
)

// Config holds the configuration for a Store.
type Config struct {
	// MaxSize is the maximum number of live entries.
	MaxSize int

	// TTL is measured from the time an entry was written. Reads do not
	// extend it.
	TTL time.Duration

	// Clock returns the current time. Tests inject a simulated clock
	// here; nil means time.Now.
	Clock func() time.Time
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxSize: DefaultMaxSize,
		TTL:     DefaultTTL,
		Clock:   time.Now,
	}
}

// Searchable is implemented by cached values that are not plain strings
// but still want to take part in InvalidateMatching.
type Searchable interface {
	SearchText() string
}

// Stats is a point-in-time snapshot of a Store.
type Stats struct {
	Size    int           `json:"size"`
	MaxSize int           `json:"max_size"`
	TTL     time.Duration `json:"ttl"`
	Keys    []string      `json:"keys"`
}

// entry is a single cached value. Entries live in an access-ordered
// list, most recently read or written at the front.
type entry struct {
	key        string
	value      any
	createdAt  time.Time
	lastAccess time.Time
}

// Store is a bounded key/value cache with per-entry TTL and
// least-recently-accessed eviction. All methods are safe for concurrent
// use; every operation is a single critical section.
type Store struct {
	cfg Config

	mu      sync.Mutex
	items   map[string]*list.Element
	byUsage *list.List
}

// New creates a Store. Zero values in cfg fall back to the defaults.
func New(cfg Config) *Store {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Store{
		cfg:     cfg,
		items:   make(map[string]*list.Element),
		byUsage: list.New(),
	}
}

// expired reports whether e has outlived the TTL at time now.
func (s *Store) expired(e *entry, now time.Time) bool {
	return now.Sub(e.createdAt) > s.cfg.TTL
}

// Get returns the value stored under key. A hit refreshes the entry's
// last-access time; an expired entry is dropped and reported as a miss.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, false
	}

	now := s.cfg.Clock()
	e := elem.Value.(*entry)
	if s.expired(e, now) {
		s.removeElement(elem)
		return nil, false
	}

	e.lastAccess = now
	s.byUsage.MoveToFront(elem)

	return e.value, true
}

// Set stores value under key. Expired entries are swept first, then, if
// the key is new and the store is full, the entry with the oldest
// last-access time is evicted.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Clock()
	s.sweepLocked(now)

	if elem, ok := s.items[key]; ok {
		e := elem.Value.(*entry)
		e.value = value
		e.createdAt = now
		e.lastAccess = now
		s.byUsage.MoveToFront(elem)

		return
	}

	if len(s.items) >= s.cfg.MaxSize {
		if oldest := s.byUsage.Back(); oldest != nil {
			s.removeElement(oldest)
		}
	}

	s.items[key] = s.byUsage.PushFront(&entry{
		key:        key,
		value:      value,
		createdAt:  now,
		lastAccess: now,
	})
}

// Delete removes key if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		s.removeElement(elem)
	}
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*list.Element)
	s.byUsage.Init()
}

// InvalidateMatching removes every entry whose value text contains
// substr and returns how many were removed. Values that are neither
// strings nor Searchable never match.
func (s *Store) InvalidateMatching(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int
	for elem := s.byUsage.Front(); elem != nil; {
		next := elem.Next()

		e := elem.Value.(*entry)
		if text, ok := searchText(e.value); ok &&
			strings.Contains(text, substr) {

			s.removeElement(elem)
			removed++
		}

		elem = next
	}

	return removed
}

// Stats returns the current size, capacity, TTL and live keys. Expired
// entries that have not been swept yet are still counted.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Stats{
		Size:    len(s.items),
		MaxSize: s.cfg.MaxSize,
		TTL:     s.cfg.TTL,
		Keys:    keys,
	}
}

// sweepLocked drops every expired entry. The caller must hold mu.
func (s *Store) sweepLocked(now time.Time) {
	for elem := s.byUsage.Front(); elem != nil; {
		next := elem.Next()
		if s.expired(elem.Value.(*entry), now) {
			s.removeElement(elem)
		}
		elem = next
	}
}

// removeElement unlinks elem from both indexes. The caller must hold mu.
func (s *Store) removeElement(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(s.items, e.key)
	s.byUsage.Remove(elem)
}

func searchText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case Searchable:
		return val.SearchText(), true
	default:
		return "", false
	}
}
