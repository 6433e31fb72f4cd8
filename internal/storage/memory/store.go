package memory

import (
	"container/heap"
	"container/list"
	"context"
	"sync"
	"time"

	"deskgate/internal/storage"
)

// entry is the window state of one key
type entry struct {
	key         string
	count       int
	windowStart time.Time
	expiresAt   time.Time

	elem  *list.Element
	index int
}

// expiryHeap orders entries by expiresAt, soonest first
type expiryHeap []*entry

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].expiresAt.Before(h[j].expiresAt) }
func (h expiryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expiryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	e.index = -1
	return e
}

// Store implements storage.WindowStore in process memory.
//
// Keys are kept in a recency list, most recently hit at the front, and in a
// heap ordered by window end. When the store is full the least recently hit
// key is evicted. Expired keys are swept from the heap on every hit and by a
// background janitor.
type Store struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	recency *list.List
	expiry  expiryHeap
	config  *storage.StoreConfig
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewStore creates a new memory store
func NewStore(config *storage.StoreConfig) *Store {
	if config == nil {
		config = storage.DefaultConfig()
	}

	s := &Store{
		entries: make(map[string]*list.Element),
		recency: list.New(),
		config:  config,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if config.Clock != nil {
		s.now = config.Clock
	}

	if config.CleanupInterval > 0 {
		go s.cleanup()
	}

	return s
}

// Hit records a request for key
func (s *Store) Hit(ctx context.Context, key string, window time.Duration) (storage.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepExpired(now)

	// the sweep leaves only live windows, an expired key starts over below
	if el, ok := s.entries[key]; ok {
		e := el.Value.(*entry)
		e.count++
		s.recency.MoveToFront(el)
		return e.window(), nil
	}

	if max := s.config.MaxEntries; max > 0 {
		for s.recency.Len() >= max {
			s.removeElement(s.recency.Back())
		}
	}

	e := &entry{
		key:         key,
		count:       1,
		windowStart: now,
		expiresAt:   now.Add(window),
	}
	e.elem = s.recency.PushFront(e)
	s.entries[key] = e.elem
	heap.Push(&s.expiry, e)
	return e.window(), nil
}

// Reset resets the counter for a key
func (s *Store) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		s.removeElement(el)
	}
	return nil
}

// Stats reports the number of tracked keys
func (s *Store) Stats() storage.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return storage.Stats{
		Keys:     len(s.entries),
		Capacity: s.config.MaxEntries,
	}
}

// Close stops the background janitor
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	return nil
}

// cleanup periodically removes expired entries
func (s *Store) cleanup() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

// removeExpired sweeps the whole store
func (s *Store) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepExpired(s.now())
}

// sweepExpired drops every entry whose window has ended, soonest first.
// Caller holds s.mu.
func (s *Store) sweepExpired(now time.Time) {
	for len(s.expiry) > 0 && !now.Before(s.expiry[0].expiresAt) {
		s.removeElement(s.expiry[0].elem)
	}
}

// removeElement unlinks an entry from the map, the list and the heap.
// Caller holds s.mu.
func (s *Store) removeElement(el *list.Element) {
	e := s.recency.Remove(el).(*entry)
	delete(s.entries, e.key)
	if e.index >= 0 {
		heap.Remove(&s.expiry, e.index)
	}
}

func (e *entry) window() storage.Window {
	return storage.Window{
		Count:   e.count,
		Start:   e.windowStart,
		ResetAt: e.expiresAt,
	}
}

var (
	_ storage.WindowStore   = (*Store)(nil)
	_ storage.StatsReporter = (*Store)(nil)
)
