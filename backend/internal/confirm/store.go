package confirm

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"warden/backend/internal/tools"
	"warden/backend/pkg/errors"
)

// Action is one tool invocation held for user approval.
type Action struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// Pending is a batch of actions awaiting a decision from the user who
// triggered them.
type Pending struct {
	ID        string
	Request   tools.RequestContext
	Actions   []Action
	CreatedAt time.Time
	ExpiresAt time.Time

	timer Timer
}

// Store holds pending confirmations. Each entry is resolved at most once:
// the first of confirm, cancel, or expiry wins and the rest see
// ErrConfirmationExpired.
type Store struct {
	mu       sync.Mutex
	pending  map[string]*Pending
	ttl      time.Duration
	clock    Clock
	onExpire func(Pending)
	logger   *zap.Logger
}

// NewStore creates a store with the given TTL. onExpire is called outside
// the store lock whenever an entry times out without a decision; it may
// be nil.
func NewStore(ttl time.Duration, clock Clock, onExpire func(Pending), logger *zap.Logger) *Store {
	if clock == nil {
		clock = SystemClock()
	}
	return &Store{
		pending:  make(map[string]*Pending),
		ttl:      ttl,
		clock:    clock,
		onExpire: onExpire,
		logger:   logger,
	}
}

// Create registers a batch of actions for approval and returns the
// pending entry. The expiry timer starts immediately.
func (s *Store) Create(rc tools.RequestContext, actions []Action) *Pending {
	now := s.clock.Now()
	p := &Pending{
		ID:        uuid.New().String(),
		Request:   rc,
		Actions:   actions,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.pending[p.ID] = p
	p.timer = s.clock.AfterFunc(s.ttl, func() { s.expire(p.ID) })
	s.mu.Unlock()

	s.logger.Info("confirmation created",
		zap.String("confirmation_id", p.ID),
		zap.String("requester_id", rc.RequesterID),
		zap.Int("actions", len(actions)))

	return p
}

// Resolve removes the entry if it is still pending and the caller is its
// requester. The lookup, requester check, and removal happen atomically,
// so concurrent confirm and cancel for the same id cannot both succeed.
func (s *Store) Resolve(id, actorID string) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return nil, errors.ErrConfirmationExpired
	}
	if p.Request.RequesterID != actorID {
		return nil, errors.NewNotRequester(id, actorID)
	}

	delete(s.pending, id)
	p.timer.Stop()
	return p, nil
}

// Get returns a snapshot of a pending entry without resolving it.
func (s *Store) Get(id string) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	return p, ok
}

// Count returns the number of unresolved confirmations.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// List returns snapshots of all unresolved confirmations.
func (s *Store) List() []Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Pending, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, *p)
	}
	return out
}

func (s *Store) expire(id string) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()

	if !ok {
		// Already confirmed or cancelled.
		return
	}

	s.logger.Info("confirmation expired",
		zap.String("confirmation_id", id),
		zap.String("requester_id", p.Request.RequesterID))

	if s.onExpire != nil {
		s.onExpire(*p)
	}
}
