package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartSessionRequest struct {
	ConsultantType string `json:"consultantType" validate:"required,max=100"`
	ClientInfo     string `json:"clientInfo" validate:"max=500"`
}

type StartSessionResponse struct {
	SessionId string `json:"sessionId"`
}

type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}

type GetInsightsRequest struct {
	SessionId           string `json:"sessionId" validate:"required"`
	ConsultantType      string `json:"consultantType" validate:"required,max=100"`
	ConversationHistory string `json:"conversationHistory" validate:"max=10000"`
	LatestUtterance     string `json:"latestUtterance" validate:"required,max=1000"`
}

// SuggestionDTO is one extracted item of the insight envelope.
type SuggestionDTO struct {
	Id         uuid.UUID              `json:"id"`
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Summary    string                 `json:"summary"`
	Source     string                 `json:"source"`
	Details    map[string]interface{} `json:"details,omitempty"`
	DirectLink string                 `json:"directLink,omitempty"`
	Priority   string                 `json:"priority"`
	CreatedAt  time.Time              `json:"created_at"`
	Rating     int                    `json:"rating,omitempty"`
	Feedback   string                 `json:"feedback,omitempty"`
}

type ActionableAdviceDTO struct {
	QuestionsForClient []string `json:"questionsForClient"`
	RequiredDocuments  []string `json:"requiredDocuments"`
	NextSteps          []string `json:"nextSteps"`
}

type WebResultDTO struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
}

type GetInsightsResponse struct {
	ExtractedData    []SuggestionDTO      `json:"extractedData"`
	ActionableAdvice *ActionableAdviceDTO `json:"actionableAdvice,omitempty"`
	WebResults       []WebResultDTO       `json:"webResults"`
	// Flagged is set when the utterance was accepted while the session was paused.
	Flagged bool `json:"flagged,omitempty"`
}

type GetSummaryRequest struct {
	SessionId           string `json:"sessionId" validate:"required"`
	ConversationHistory string `json:"conversationHistory" validate:"required"`
}

type MeetingSummaryDTO struct {
	Obiettivi []string `json:"obiettivi"`
	Problemi  []string `json:"problemi"`
	Decisioni []string `json:"decisioni"`
}

type GetSummaryResponse struct {
	MeetingSummary *MeetingSummaryDTO `json:"meetingSummary"`
}

type GenerateTasksRequest struct {
	SessionId           string `json:"sessionId" validate:"required"`
	ConversationHistory string `json:"conversationHistory" validate:"required"`
}

type TaskDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type GenerateTasksResponse struct {
	Tasks []TaskDTO `json:"tasks"`
}

type AskQuestionRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
	Context  string `json:"context"`
}

type AskQuestionResponse struct {
	Answer string `json:"answer"`
}

type EndSessionRequest struct {
	SessionId           string               `json:"sessionId" validate:"required"`
	ConversationHistory string               `json:"conversationHistory"`
	WebResults          []WebResultDTO       `json:"webResults"`
	PlanningData        []string             `json:"planningData"`
	ActionableAdvice    *ActionableAdviceDTO `json:"actionableAdvice"`
}

type EndSessionResponse struct {
	ReportId  uuid.UUID `json:"reportId"`
	MeetingId uuid.UUID `json:"meetingId"`
	ReportURL string    `json:"reportUrl"`
	// AlreadyEnded marks an end call for a session that was already gone.
	AlreadyEnded bool `json:"alreadyEnded,omitempty"`
}

type PauseSessionRequest struct {
	SessionId string `json:"sessionId" validate:"required"`
}

type ResumeSessionRequest struct {
	SessionId string `json:"sessionId" validate:"required"`
}

type RateSuggestionRequest struct {
	SessionId    string    `json:"sessionId" validate:"required"`
	SuggestionId uuid.UUID `json:"suggestionId" validate:"required"`
	Rating       int       `json:"rating" validate:"required,min=1,max=5"`
	Feedback     string    `json:"feedback" validate:"max=1000"`
}

type GetReportResponse struct {
	MeetingId        uuid.UUID            `json:"meetingId"`
	FullTranscript   string               `json:"full_transcript"`
	Summary          string               `json:"summary"`
	GeneratedTasks   []TaskDTO            `json:"generated_tasks"`
	ConsultantNotes  []string             `json:"consultant_notes"`
	WebResults       []WebResultDTO       `json:"web_results"`
	ActionableAdvice *ActionableAdviceDTO `json:"actionable_advice,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        *time.Time           `json:"updated_at"`
}
