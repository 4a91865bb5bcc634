package store

import (
	"sync"
	"time"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// Ticket identifies one load of a slice. Only the most recently begun
// ticket of a slice may commit.
type Ticket struct {
	Slice      Slice
	Generation uint64
}

// Store serialises every state change behind a mutex.
type Store struct {
	mu          sync.RWMutex
	state       State
	generations map[Slice]uint64
	noticeLimit int
	logger      *logging.LoggerV2
}

// New creates an empty store.
func New(noticeLimit int) *Store {
	if noticeLimit <= 0 {
		noticeLimit = DefaultNoticeLimit
	}
	return &Store{
		state: State{
			Products: []models.Product{},
			Users:    []models.User{},
			Orders:   []models.Order{},
			Queries:  map[Slice]Query{},
			Notices:  []Notice{},
		},
		generations: make(map[Slice]uint64),
		noticeLimit: noticeLimit,
		logger:      logging.NewLoggerV2("store"),
	}
}

// Begin starts a load of slice and supersedes every earlier ticket for it.
func (s *Store) Begin(slice Slice) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[slice]++
	return Ticket{Slice: slice, Generation: s.generations[slice]}
}

// IsCurrent reports whether t is still the latest ticket of its slice.
func (s *Store) IsCurrent(t Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generations[t.Slice] == t.Generation
}

// Commit applies a if t is still current. A stale response is dropped and
// Commit returns false.
func (s *Store) Commit(t Ticket, a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[t.Slice] != t.Generation {
		metrics.StaleResponses.WithLabelValues(string(t.Slice)).Inc()
		s.logger.Debug("Discarding stale response", logging.Fields{
			"slice":      t.Slice,
			"generation": t.Generation,
			"latest":     s.generations[t.Slice],
		})
		return false
	}
	s.state = Reduce(s.state, a)
	return true
}

// Dispatch applies a unconditionally.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
}

// Snapshot returns the current state. The returned slices are never
// modified by the store afterwards.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Notify queues a notice.
func (s *Store) Notify(level NoticeLevel, message string) {
	s.Dispatch(NoticePosted{
		Notice: Notice{Level: level, Message: message, At: time.Now().UTC()},
		Limit:  s.noticeLimit,
	})
}

// Fail stores message in the error slot and queues it as an error notice.
func (s *Store) Fail(message string) {
	s.Dispatch(ErrorRaised{Message: message})
	s.Notify(NoticeError, message)
}

// DrainNotices returns the queued notices and empties the queue.
func (s *Store) DrainNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	notices := s.state.Notices
	s.state = Reduce(s.state, NoticesDrained{})
	return notices
}
