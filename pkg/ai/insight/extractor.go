package insight

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/pkg/logger"
)

// extractionEnvelope mirrors the JSON schema the extraction prompt demands.
type extractionEnvelope struct {
	ExtractedData []extractedItem `json:"extractedData"`
}

type extractedItem struct {
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Summary    string                 `json:"summary"`
	Source     string                 `json:"source"`
	Details    map[string]interface{} `json:"details"`
	DirectLink string                 `json:"directLink"`
}

type adviceEnvelope struct {
	ActionableAdvice dto.ActionableAdviceDTO `json:"actionableAdvice"`
}

type summaryEnvelope struct {
	MeetingSummary dto.MeetingSummaryDTO `json:"meetingSummary"`
}

// Extractor parses model output into suggestion DTOs. Model output is
// untrusted: anything that fails to parse as the expected envelope is wrapped
// verbatim as a single generic suggestion rather than dropped.
type Extractor struct {
	log logger.ILogger
	now func() time.Time
}

func NewExtractor(log logger.ILogger) *Extractor {
	return &Extractor{log: log, now: time.Now}
}

// SetClock overrides the timestamp source. Test hook.
func (e *Extractor) SetClock(now func() time.Time) {
	e.now = now
}

// Suggestions parses the extraction envelope out of cleaned model output.
func (e *Extractor) Suggestions(raw string) []dto.SuggestionDTO {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var envelope extractionEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil || len(envelope.ExtractedData) == 0 {
		if err != nil {
			e.log.Warn("insight", "extraction output is not the expected envelope, wrapping as raw suggestion", map[string]interface{}{"error": err.Error()})
		}
		return e.rawFallback(raw)
	}

	suggestions := make([]dto.SuggestionDTO, 0, len(envelope.ExtractedData))
	for _, item := range envelope.ExtractedData {
		if item.Title == "" && item.Summary == "" {
			continue
		}
		suggestions = append(suggestions, dto.SuggestionDTO{
			Id:         uuid.New(),
			Type:       orDefault(item.Type, "Informazione"),
			Title:      orDefault(item.Title, item.Summary),
			Summary:    item.Summary,
			Source:     item.Source,
			Details:    item.Details,
			DirectLink: item.DirectLink,
			Priority:   "normal",
			CreatedAt:  e.now(),
		})
	}
	if len(suggestions) == 0 {
		return e.rawFallback(raw)
	}
	return suggestions
}

func (e *Extractor) rawFallback(raw string) []dto.SuggestionDTO {
	return []dto.SuggestionDTO{{
		Id:        uuid.New(),
		Type:      "Risposta AI",
		Title:     "Suggerimento dall'assistente",
		Summary:   raw,
		Priority:  "normal",
		CreatedAt: e.now(),
	}}
}

// Advice parses the actionable-advice envelope. A malformed payload yields
// nil: advice is a best-effort second pass, never a failure.
func (e *Extractor) Advice(raw string) *dto.ActionableAdviceDTO {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var envelope adviceEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		e.log.Warn("insight", "advice output unparseable, dropping", map[string]interface{}{"error": err.Error()})
		return nil
	}
	advice := envelope.ActionableAdvice
	if len(advice.QuestionsForClient) == 0 && len(advice.RequiredDocuments) == 0 && len(advice.NextSteps) == 0 {
		return nil
	}
	return &advice
}

// StructuredSummary parses the meetingSummary envelope used by the report.
func (e *Extractor) StructuredSummary(raw string) *dto.MeetingSummaryDTO {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var envelope summaryEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil
	}
	return &envelope.MeetingSummary
}

// Tasks parses the task-list array produced by the tasks prompt.
func (e *Extractor) Tasks(raw string) []dto.TaskDTO {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var tasks []dto.TaskDTO
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		e.log.Warn("insight", "tasks output unparseable, dropping", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if len(tasks) > 4 {
		tasks = tasks[:4]
	}
	return tasks
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
