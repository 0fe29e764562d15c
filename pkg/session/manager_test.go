package session_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/pkg/logger"
	"ai-copilot-be/internal/repository/memory"
	"ai-copilot-be/pkg/session"
)

var recognized = []string{"Consulente del Lavoro", "Commercialista", "Consulente"}

func newManager(t *testing.T, ttl time.Duration) (*session.Manager, *memory.SessionStore) {
	t.Helper()
	store := memory.NewSessionStore(ttl)
	log := logger.NewIsolatedLogger(t.TempDir() + "/test.log")
	return session.NewManager(store, recognized, 0, log), store
}

func TestStartRejectsUnknownConsultantType(t *testing.T) {
	mgr, _ := newManager(t, time.Hour)

	_, err := mgr.Start(uuid.New(), "Astrologo", "")

	var typeErr *session.ErrUnknownConsultantType
	assert.ErrorAs(t, err, &typeErr)
}

func TestStartGeneratesPrefixedSessionId(t *testing.T) {
	mgr, _ := newManager(t, time.Hour)

	sess, err := mgr.Start(uuid.New(), "Commercialista", "Cliente: Acme Srl")

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(sess.ID, "ai_session_"))
	assert.Equal(t, session.StatusActive, sess.Status)
	assert.Equal(t, "Cliente: Acme Srl", sess.Context.ClientInfo)
}

func TestAppendAccumulatesTranscript(t *testing.T) {
	mgr, _ := newManager(t, time.Hour)
	sess, _ := mgr.Start(uuid.New(), "Consulente", "")

	_, flagged, err := mgr.Append(sess.ID, "prima frase")
	assert.NoError(t, err)
	assert.False(t, flagged)

	got, _, err := mgr.Append(sess.ID, "seconda frase")
	assert.NoError(t, err)
	assert.Equal(t, "prima frase seconda frase", got.Context.History())
	assert.Equal(t, "seconda frase", got.Context.LatestUtterance)
}

func TestAppendWhitespaceIsNoOp(t *testing.T) {
	mgr, _ := newManager(t, time.Hour)
	sess, _ := mgr.Start(uuid.New(), "Consulente", "")

	got, flagged, err := mgr.Append(sess.ID, "   \n\t ")

	assert.NoError(t, err)
	assert.False(t, flagged)
	assert.Empty(t, got.Context.Transcript)
}

func TestAppendUnknownSessionReturnsSessionNotFound(t *testing.T) {
	mgr, _ := newManager(t, time.Hour)

	_, _, err := mgr.Append("ai_session_missing_0", "ciao")

	var notFound *dto.SessionNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

// Expired sessions must never hand back a stale context.
func TestAppendAfterTTLReturnsSessionNotFound(t *testing.T) {
	store := memory.NewSessionStore(time.Hour)
	log := logger.NewIsolatedLogger(t.TempDir() + "/test.log")
	mgr := session.NewManager(store, recognized, 0, log)

	base := time.Now()
	store.SetClock(func() time.Time { return base })
	mgr.SetClock(func() time.Time { return base })

	sess, _ := mgr.Start(uuid.New(), "Consulente", "")
	_, _, err := mgr.Append(sess.ID, "ancora viva")
	assert.NoError(t, err)

	store.SetClock(func() time.Time { return base.Add(time.Hour + time.Minute) })

	_, _, err = mgr.Append(sess.ID, "troppo tardi")
	var notFound *dto.SessionNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

// Appends while paused are accepted but flagged, never dropped.
func TestAppendWhilePausedIsFlagged(t *testing.T) {
	mgr, _ := newManager(t, time.Hour)
	sess, _ := mgr.Start(uuid.New(), "Consulente", "")

	assert.NoError(t, mgr.Pause(sess.ID))

	got, flagged, err := mgr.Append(sess.ID, "detto in pausa")
	assert.NoError(t, err)
	assert.True(t, flagged)
	assert.Equal(t, []string{"detto in pausa"}, got.Context.Transcript)
	assert.Equal(t, []int{0}, got.Context.PausedMarks)

	assert.NoError(t, mgr.Resume(sess.ID))

	_, flagged, err = mgr.Append(sess.ID, "detto dopo")
	assert.NoError(t, err)
	assert.False(t, flagged)
}

// Concurrent appends must not lose updates.
func TestConcurrentAppendsLoseNothing(t *testing.T) {
	mgr, _ := newManager(t, time.Hour)
	sess, _ := mgr.Start(uuid.New(), "Consulente", "")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := mgr.Append(sess.ID, fmt.Sprintf("frase-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := mgr.Get(sess.ID)
	assert.NoError(t, err)
	assert.Len(t, got.Context.Transcript, n)
}

func TestEndIsIdempotent(t *testing.T) {
	mgr, _ := newManager(t, time.Hour)
	sess, _ := mgr.Start(uuid.New(), "Consulente", "")
	mgr.Append(sess.ID, "qualcosa")

	ended, already := mgr.End(sess.ID)
	assert.False(t, already)
	assert.Equal(t, session.StatusEnded, ended.Status)

	_, already = mgr.End(sess.ID)
	assert.True(t, already)

	_, err := mgr.Get(sess.ID)
	var notFound *dto.SessionNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

// Ending while appends are still in flight must not tear session state: the
// status transition happens under the same lock as the transcript writes.
func TestEndDuringConcurrentAppends(t *testing.T) {
	mgr, _ := newManager(t, time.Hour)
	sess, _ := mgr.Start(uuid.New(), "Consulente", "")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Appends racing the end may legitimately see SessionNotFound.
			mgr.Append(sess.ID, fmt.Sprintf("frase-%d", i))
		}(i)
	}
	ended, already := mgr.End(sess.ID)
	wg.Wait()

	assert.False(t, already)
	assert.Equal(t, session.StatusEnded, ended.Status)
}

func TestTimeoutHandlerForcesEnd(t *testing.T) {
	store := memory.NewSessionStore(time.Hour)
	log := logger.NewIsolatedLogger(t.TempDir() + "/test.log")
	mgr := session.NewManager(store, recognized, 20*time.Millisecond, log)

	done := make(chan string, 1)
	mgr.SetTimeoutHandler(func(id string) {
		mgr.End(id)
		done <- id
	})

	sess, _ := mgr.Start(uuid.New(), "Consulente", "")

	select {
	case id := <-done:
		assert.Equal(t, sess.ID, id)
	case <-time.After(time.Second):
		t.Fatal("timeout handler never fired")
	}

	_, err := mgr.Get(sess.ID)
	assert.Error(t, err)
}
