package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// ErrUnknownConsultantType rejects a start with an unrecognized specialization.
type ErrUnknownConsultantType struct {
	ConsultantType string
}

func (e *ErrUnknownConsultantType) Error() string {
	return fmt.Sprintf("unrecognized consultant type: %q", e.ConsultantType)
}

// Manager owns session state transitions: idle -> active -> paused/active,
// active|paused -> ended. Ending is terminal; a session is never resurrected.
type Manager struct {
	store           Store
	recognizedTypes map[string]struct{}
	maxDuration     time.Duration
	log             logger.ILogger
	now             func() time.Time

	mu        sync.Mutex
	timers    map[string]*time.Timer
	onTimeout func(sessionId string)
}

func NewManager(store Store, recognizedTypes []string, maxDuration time.Duration, log logger.ILogger) *Manager {
	types := make(map[string]struct{}, len(recognizedTypes))
	for _, t := range recognizedTypes {
		types[t] = struct{}{}
	}
	return &Manager{
		store:           store,
		recognizedTypes: types,
		maxDuration:     maxDuration,
		log:             log,
		now:             time.Now,
		timers:          make(map[string]*time.Timer),
	}
}

// SetClock overrides the time source. Test hook.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// SetTimeoutHandler installs the callback invoked when a session exceeds its
// maximum duration. The handler must behave like an explicit end call.
func (m *Manager) SetTimeoutHandler(fn func(sessionId string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTimeout = fn
}

// Start creates a session and arms the forced-end timer.
func (m *Manager) Start(consultantId uuid.UUID, consultantType, clientInfo string) (*Session, error) {
	if _, ok := m.recognizedTypes[consultantType]; !ok {
		return nil, &ErrUnknownConsultantType{ConsultantType: consultantType}
	}

	now := m.now()
	sess := &Session{
		ID:             fmt.Sprintf("ai_session_%s_%d", uuid.NewString(), now.Unix()),
		ConsultantId:   consultantId,
		ConsultantType: consultantType,
		ClientInfo:     clientInfo,
		StartedAt:      now,
		Status:         StatusActive,
		Context: ConversationContext{
			ClientInfo: clientInfo,
		},
	}
	m.store.Put(sess)
	m.armTimeout(sess.ID)

	m.log.Info("SessionManager", "Session started", map[string]interface{}{
		"session_id":      sess.ID,
		"consultant_id":   consultantId,
		"consultant_type": consultantType,
	})
	return sess, nil
}

// Append adds an utterance to the conversation. Empty/whitespace text is a
// no-op. Appends while paused are accepted but flagged, never dropped.
func (m *Manager) Append(sessionId, text string) (sess *Session, flagged bool, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		s, ok := m.store.Get(sessionId)
		if !ok {
			return nil, false, &dto.SessionNotFoundError{SessionId: sessionId}
		}
		return s, false, nil
	}

	s, ok := m.store.Mutate(sessionId, func(s *Session) {
		if s.Status == StatusPaused {
			flagged = true
			s.Context.PausedMarks = append(s.Context.PausedMarks, len(s.Context.Transcript))
		}
		s.Context.Transcript = append(s.Context.Transcript, trimmed)
		s.Context.LatestUtterance = trimmed
	})
	if !ok {
		return nil, false, &dto.SessionNotFoundError{SessionId: sessionId}
	}
	if flagged {
		m.log.Warn("SessionManager", "Utterance accepted while paused", map[string]interface{}{
			"session_id": sessionId,
		})
	}
	return s, flagged, nil
}

func (m *Manager) Pause(sessionId string) error {
	return m.setStatus(sessionId, StatusPaused)
}

func (m *Manager) Resume(sessionId string) error {
	return m.setStatus(sessionId, StatusActive)
}

func (m *Manager) setStatus(sessionId string, status Status) error {
	if _, ok := m.store.Mutate(sessionId, func(s *Session) {
		s.Status = status
	}); !ok {
		return &dto.SessionNotFoundError{SessionId: sessionId}
	}
	return nil
}

// Get returns the live session, or SessionNotFound when expired/unknown.
func (m *Manager) Get(sessionId string) (*Session, error) {
	s, ok := m.store.Get(sessionId)
	if !ok {
		return nil, &dto.SessionNotFoundError{SessionId: sessionId}
	}
	return s, nil
}

// End removes the session. Ending an already-gone session reports
// alreadyEnded=true instead of an error so duplicate end calls stay safe.
func (m *Manager) End(sessionId string) (sess *Session, alreadyEnded bool) {
	m.disarmTimeout(sessionId)

	s, ok := m.store.Mutate(sessionId, func(s *Session) {
		s.Status = StatusEnded
	})
	if !ok {
		return nil, true
	}
	m.store.Delete(sessionId)

	m.log.Info("SessionManager", "Session ended", map[string]interface{}{
		"session_id": sessionId,
		"utterances": len(s.Context.Transcript),
	})
	return s, false
}

func (m *Manager) armTimeout(sessionId string) {
	if m.maxDuration <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers[sessionId] = time.AfterFunc(m.maxDuration, func() {
		m.mu.Lock()
		handler := m.onTimeout
		delete(m.timers, sessionId)
		m.mu.Unlock()

		m.log.Warn("SessionManager", "Session exceeded max duration, forcing end", map[string]interface{}{
			"session_id": sessionId,
		})
		if handler != nil {
			handler(sessionId)
		} else {
			m.End(sessionId)
		}
	})
}

func (m *Manager) disarmTimeout(sessionId string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[sessionId]; ok {
		t.Stop()
		delete(m.timers, sessionId)
	}
}
