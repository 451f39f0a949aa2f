package memory

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"ai-shopper-be/internal/constant"
	"ai-shopper-be/internal/dto"
)

// SessionState is the per-session recommendation context. Stored by pointer
// and mutated in place so the cache expiration stays anchored at creation
// time; TTL is never extended by access.
type SessionState struct {
	Id              string
	QueryVector     []float32
	SearchQueryText string
	Profile         dto.UserProfile
	ExcludeIds      map[string]struct{}
	Liked           map[string]struct{}
	Disliked        map[string]struct{}
	Saved           map[string]struct{}
	CreatedAt       time.Time
	LastAccessedAt  time.Time

	mu sync.Mutex
}

func NewSessionState(id string) *SessionState {
	now := time.Now()
	return &SessionState{
		Id:             id,
		ExcludeIds:     make(map[string]struct{}),
		Liked:          make(map[string]struct{}),
		Disliked:       make(map[string]struct{}),
		Saved:          make(map[string]struct{}),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// ExcludeList returns a copy of the exclude set taken under the session
// lock, safe to hand to searches while a concurrent feedback call mutates
// the session.
func (s *SessionState) ExcludeList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setToList(s.ExcludeIds)
}

// FeedbackLists returns copies of the liked and disliked sets under the
// session lock. Callers must never iterate the maps directly; feedback
// mutates them concurrently.
func (s *SessionState) FeedbackLists() (liked, disliked []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setToList(s.Liked), setToList(s.Disliked)
}

func setToList(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// SessionRepository keeps recommendation sessions in process memory with a
// fixed TTL from creation. The go-cache janitor is disabled: expiry is checked
// lazily on Get, and a full sweep runs at most once per sweep interval.
type SessionRepository struct {
	cache         *cache.Cache
	sweepInterval time.Duration

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func NewSessionRepository(ttl, sweepInterval time.Duration) *SessionRepository {
	// Janitor interval 0 disables the background goroutine; expired entries
	// are dropped on access and by the throttled sweep below.
	c := cache.New(ttl, 0)
	return &SessionRepository{
		cache:         c,
		sweepInterval: sweepInterval,
		lastSweep:     time.Now(),
	}
}

// maybeSweep purges expired sessions, at most once per sweep interval.
func (r *SessionRepository) maybeSweep() {
	r.sweepMu.Lock()
	defer r.sweepMu.Unlock()
	if time.Since(r.lastSweep) < r.sweepInterval {
		return
	}
	r.cache.DeleteExpired()
	r.lastSweep = time.Now()
}

func (r *SessionRepository) Save(session *SessionState) {
	r.maybeSweep()
	r.cache.Set(session.Id, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionId string) (*SessionState, bool) {
	r.maybeSweep()
	if x, found := r.cache.Get(sessionId); found {
		state := x.(*SessionState)
		state.mu.Lock()
		state.LastAccessedAt = time.Now()
		state.mu.Unlock()
		return state, true
	}
	return nil, false
}

// Update runs the mutator under the session's lock. Returns false when the
// session does not exist (or has expired).
func (r *SessionRepository) Update(sessionId string, mutate func(*SessionState)) bool {
	state, found := r.Get(sessionId)
	if !found {
		return false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	mutate(state)
	// Disliked items must always be excluded from future searches.
	for id := range state.Disliked {
		state.ExcludeIds[id] = struct{}{}
	}
	return true
}

// AddExcludes grows the session's exclude set. The set is monotonic: ids are
// only ever added.
func (r *SessionRepository) AddExcludes(sessionId string, ids []string) bool {
	return r.Update(sessionId, func(s *SessionState) {
		for _, id := range ids {
			s.ExcludeIds[id] = struct{}{}
		}
	})
}

// ApplyFeedback records a like/dislike/save. Like and dislike are mutually
// exclusive; dislike also excludes the product from future results. Feedback
// on an absent session is a success no-op.
func (r *SessionRepository) ApplyFeedback(sessionId, productId, action string) {
	r.Update(sessionId, func(s *SessionState) {
		switch action {
		case constant.FeedbackLike:
			s.Liked[productId] = struct{}{}
			delete(s.Disliked, productId)
		case constant.FeedbackDislike:
			s.Disliked[productId] = struct{}{}
			delete(s.Liked, productId)
			s.ExcludeIds[productId] = struct{}{}
		case constant.FeedbackSave:
			s.Saved[productId] = struct{}{}
		}
	})
}

func (r *SessionRepository) Delete(sessionId string) {
	r.cache.Delete(sessionId)
}

// Count reports live (non-expired) sessions.
func (r *SessionRepository) Count() int {
	r.maybeSweep()
	return r.cache.ItemCount()
}
