package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/entity"
	"ai-copilot-be/internal/pkg/logger"
	"ai-copilot-be/internal/repository/contract"
	"ai-copilot-be/internal/repository/specification"
	"ai-copilot-be/pkg/ai/insight"
	"ai-copilot-be/pkg/ai/orchestrator"
	"ai-copilot-be/pkg/ai/prompt"
)

// PlaceholderSummary is stored when the session produced no usable
// transcript. No AI calls are made in that case.
const PlaceholderSummary = "Non è stato possibile generare un sommario."

// Result is what the synthesizer hands back to the session-ending flow.
type Result struct {
	ReportId  uuid.UUID
	MeetingId uuid.UUID
	ReportURL string
}

// Input carries everything the client accumulated during the session.
type Input struct {
	ConsultantId     uuid.UUID
	Transcript       string
	WebResults       []dto.WebResultDTO
	PlanningData     []string
	ActionableAdvice *dto.ActionableAdviceDTO
	KeyInsights      []dto.SuggestionDTO
}

// Synthesizer turns a finished session into a persisted meeting report. The
// AI passes are best-effort: a degraded or failed generation still yields a
// stored report with whatever could be produced.
type Synthesizer struct {
	ai        *orchestrator.Orchestrator
	extractor *insight.Extractor
	meetings  contract.MeetingRepository
	reports   contract.ReportRepository
	baseURL   string
	log       logger.ILogger
}

func NewSynthesizer(
	ai *orchestrator.Orchestrator,
	extractor *insight.Extractor,
	meetings contract.MeetingRepository,
	reports contract.ReportRepository,
	baseURL string,
	log logger.ILogger,
) *Synthesizer {
	return &Synthesizer{
		ai:        ai,
		extractor: extractor,
		meetings:  meetings,
		reports:   reports,
		baseURL:   baseURL,
		log:       log,
	}
}

// Synthesize builds and upserts the report for the consultant's latest
// report-less meeting. Returns dto.ErrNoPendingMeeting when every meeting
// already has one.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (*Result, error) {
	meeting, err := s.meetings.FindLatestWithoutReport(ctx, in.ConsultantId)
	if err != nil {
		return nil, fmt.Errorf("find pending meeting: %w", err)
	}
	if meeting == nil {
		return nil, dto.ErrNoPendingMeeting
	}

	summary := PlaceholderSummary
	tasks := []dto.TaskDTO{}

	transcript := strings.TrimSpace(in.Transcript)
	if transcript != "" {
		summary = s.generateSummary(ctx, transcript)
		if got := s.generateTasks(ctx, transcript); got != nil {
			tasks = got
		}
	} else {
		s.log.Warn("ReportSynthesizer", "Empty transcript, storing placeholder report", map[string]interface{}{
			"meeting_id": meeting.Id.String(),
		})
	}

	now := time.Now()
	rep := &entity.MeetingReport{
		Id:               uuid.New(),
		MeetingId:        meeting.Id,
		FullTranscript:   transcript,
		Summary:          summary,
		GeneratedTasks:   mustJSON(tasks),
		ConsultantNotes:  mustJSON(in.PlanningData),
		WebResults:       mustJSON(in.WebResults),
		ActionableAdvice: mustJSON(in.ActionableAdvice),
		KeyInsights:      mustJSON(in.KeyInsights),
		CreatedAt:        now,
		UpdatedAt:        &now,
	}

	if err := s.reports.Upsert(ctx, rep); err != nil {
		return nil, fmt.Errorf("upsert report: %w", err)
	}

	stored, err := s.reports.FindByMeetingId(ctx, meeting.Id)
	if err != nil {
		return nil, fmt.Errorf("reload report: %w", err)
	}

	return &Result{
		ReportId:  stored.Id,
		MeetingId: meeting.Id,
		ReportURL: s.reportURL(meeting.Id),
	}, nil
}

// LatestReport hands back the already-persisted report for the consultant's
// most recent meeting. A duplicate end call lands here: the first call
// attached the report, so FindLatestWithoutReport no longer matches.
func (s *Synthesizer) LatestReport(ctx context.Context, consultantId uuid.UUID) (*Result, error) {
	meeting, err := s.meetings.FindOne(ctx,
		specification.OwnedByConsultant{ConsultantId: consultantId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("find latest meeting: %w", err)
	}
	if meeting == nil {
		return nil, dto.ErrNoPendingMeeting
	}

	stored, err := s.reports.FindByMeetingId(ctx, meeting.Id)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if stored == nil {
		return nil, dto.ErrReportNotFound
	}

	return &Result{
		ReportId:  stored.Id,
		MeetingId: meeting.Id,
		ReportURL: s.reportURL(meeting.Id),
	}, nil
}

func (s *Synthesizer) reportURL(meetingId uuid.UUID) string {
	return fmt.Sprintf("%s/api/copilot/v1/report/%s", s.baseURL, meetingId)
}

func (s *Synthesizer) generateSummary(ctx context.Context, transcript string) string {
	text, err := s.ai.Complete(ctx, prompt.SummaryPrompt(transcript), "", 0.5, 2048)
	if err != nil || orchestrator.IsDegraded(text) || strings.TrimSpace(text) == "" {
		if err != nil {
			s.log.Warn("ReportSynthesizer", "Summary generation failed", map[string]interface{}{"error": err.Error()})
		}
		return PlaceholderSummary
	}
	return text
}

func (s *Synthesizer) generateTasks(ctx context.Context, transcript string) []dto.TaskDTO {
	text, err := s.ai.Complete(ctx, prompt.TasksPrompt(transcript), "", 0.4, 2048)
	if err != nil || orchestrator.IsDegraded(text) {
		if err != nil {
			s.log.Warn("ReportSynthesizer", "Task generation failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	return s.extractor.Tasks(text)
}

func mustJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("null")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(data)
}
