package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusEnded  Status = "ended"
)

// ConversationContext holds the transcript accumulated during a session.
// Owned by exactly one Session; mutated only through Manager.Append.
type ConversationContext struct {
	Transcript      []string `json:"transcript"`
	LatestUtterance string   `json:"latest_utterance"`
	ClientInfo      string   `json:"client_info"`

	// PausedMarks records indexes of utterances accepted while paused.
	PausedMarks []int `json:"paused_marks,omitempty"`
}

func (c *ConversationContext) History() string {
	return strings.Join(c.Transcript, " ")
}

// Session is the live in-memory state of one consultant/client interaction.
type Session struct {
	ID             string              `json:"id"`
	ConsultantId   uuid.UUID           `json:"consultant_id"`
	ConsultantType string              `json:"consultant_type"`
	ClientInfo     string              `json:"client_info"`
	StartedAt      time.Time           `json:"started_at"`
	Status         Status              `json:"status"`
	Context        ConversationContext `json:"context"`
}

// Store abstracts the TTL-keyed session cache. Mutate provides atomic
// read-modify-write so concurrent appends for the same session cannot lose
// updates.
type Store interface {
	Put(s *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
	Mutate(id string, fn func(*Session)) (*Session, bool)
}
