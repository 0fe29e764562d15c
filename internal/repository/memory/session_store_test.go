package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ai-copilot-be/pkg/session"
)

func newStoredSession(id string) *session.Session {
	return &session.Session{
		ID:             id,
		ConsultantType: "Consulente",
		Status:         session.StatusActive,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := NewSessionStore(time.Hour)
	store.Put(newStoredSession("ai_session_a_1"))

	got, ok := store.Get("ai_session_a_1")
	assert.True(t, ok)
	assert.Equal(t, "Consulente", got.ConsultantType)

	_, ok = store.Get("ai_session_b_1")
	assert.False(t, ok)
}

func TestGetAfterTTLExpires(t *testing.T) {
	store := NewSessionStore(time.Hour)
	now := time.Now()
	store.SetClock(func() time.Time { return now })
	store.Put(newStoredSession("ai_session_a_1"))

	now = now.Add(2 * time.Hour)

	_, ok := store.Get("ai_session_a_1")
	assert.False(t, ok)
}

// Activity never extends the deadline: a session mutated right up to the TTL
// boundary still expires on schedule.
func TestMutateDoesNotRefreshTTL(t *testing.T) {
	store := NewSessionStore(time.Hour)
	now := time.Now()
	store.SetClock(func() time.Time { return now })
	store.Put(newStoredSession("ai_session_a_1"))

	now = now.Add(59 * time.Minute)
	_, ok := store.Mutate("ai_session_a_1", func(s *session.Session) {
		s.Context.Transcript = append(s.Context.Transcript, "ancora attiva")
	})
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get("ai_session_a_1")
	assert.False(t, ok)
}

func TestMutateUnknownSession(t *testing.T) {
	store := NewSessionStore(time.Hour)

	_, ok := store.Mutate("ai_session_missing_0", func(s *session.Session) {
		t.Fatal("mutation callback must not run for a missing session")
	})
	assert.False(t, ok)
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	store := NewSessionStore(time.Hour)
	store.Put(newStoredSession("ai_session_a_1"))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Mutate("ai_session_a_1", func(s *session.Session) {
				s.Context.Transcript = append(s.Context.Transcript, fmt.Sprintf("frase %d", i))
			})
		}(i)
	}
	wg.Wait()

	got, ok := store.Get("ai_session_a_1")
	assert.True(t, ok)
	assert.Len(t, got.Context.Transcript, writers)
}

func TestDeleteRemovesSession(t *testing.T) {
	store := NewSessionStore(time.Hour)
	store.Put(newStoredSession("ai_session_a_1"))
	store.Delete("ai_session_a_1")

	_, ok := store.Get("ai_session_a_1")
	assert.False(t, ok)
}
