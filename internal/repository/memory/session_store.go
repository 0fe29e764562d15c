package memory

import (
	"sync"
	"time"

	"ai-copilot-be/pkg/session"

	"github.com/patrickmn/go-cache"
)

type entry struct {
	sess      *session.Session
	expiresAt time.Time
}

// SessionStore is a TTL-keyed in-memory session cache. Expiry is enforced on
// read against an injectable clock, with go-cache handling the background
// purge of abandoned entries.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time

	// Serializes read-modify-write cycles so concurrent appends to the same
	// session cannot lose updates.
	mu sync.Mutex
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
		now:   time.Now,
	}
}

// SetClock overrides the expiry clock. Test hook.
func (s *SessionStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SessionStore) Put(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(sess.ID, &entry{sess: sess, expiresAt: s.now().Add(s.ttl)}, s.ttl)
}

func (s *SessionStore) Get(id string) (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *SessionStore) get(id string) (*session.Session, bool) {
	x, found := s.cache.Get(id)
	if !found {
		return nil, false
	}
	e := x.(*entry)
	if s.now().After(e.expiresAt) {
		s.cache.Delete(id)
		return nil, false
	}
	return e.sess, true
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(id)
}

// Mutate applies fn to the session under the store lock and writes the result
// back, refreshing nothing: TTL is anchored to session start, not activity.
func (s *SessionStore) Mutate(id string, fn func(*session.Session)) (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.get(id)
	if !ok {
		return nil, false
	}
	fn(sess)
	x, _ := s.cache.Get(id)
	e := x.(*entry)
	e.sess = sess
	s.cache.Set(id, e, s.ttl)
	return sess, true
}

var _ session.Store = (*SessionStore)(nil)
