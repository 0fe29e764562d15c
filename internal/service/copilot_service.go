package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/pkg/logger"
	"ai-copilot-be/internal/repository/contract"
	"ai-copilot-be/pkg/ai/insight"
	"ai-copilot-be/pkg/ai/orchestrator"
	"ai-copilot-be/pkg/ai/prompt"
	"ai-copilot-be/pkg/events"
	"ai-copilot-be/pkg/report"
	"ai-copilot-be/pkg/session"
	"ai-copilot-be/pkg/transcribe"
	"ai-copilot-be/pkg/websearch"
)

// Broadcaster pushes live suggestions to connected WebSocket clients. Nil-safe
// at the call sites: live push is an enhancement, never a dependency.
type Broadcaster interface {
	Publish(sessionId string, payload interface{})
}

type ICopilotService interface {
	StartSession(ctx context.Context, consultantId uuid.UUID, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error)
	Transcribe(ctx context.Context, sessionId string, audio []byte) (*dto.TranscribeResponse, error)
	GetInsights(ctx context.Context, req *dto.GetInsightsRequest) (*dto.GetInsightsResponse, error)
	GetSummary(ctx context.Context, req *dto.GetSummaryRequest) (*dto.GetSummaryResponse, error)
	GenerateTasks(ctx context.Context, req *dto.GenerateTasksRequest) (*dto.GenerateTasksResponse, error)
	AskQuestion(ctx context.Context, sessionId string, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error)
	PauseSession(ctx context.Context, req *dto.PauseSessionRequest) error
	ResumeSession(ctx context.Context, req *dto.ResumeSessionRequest) error
	RateSuggestion(ctx context.Context, req *dto.RateSuggestionRequest) error
	EndSession(ctx context.Context, consultantId uuid.UUID, req *dto.EndSessionRequest) (*dto.EndSessionResponse, error)
	GetReport(ctx context.Context, meetingId uuid.UUID) (*dto.GetReportResponse, error)
}

type copilotService struct {
	sessions    *session.Manager
	transcriber transcribe.Transcriber
	ai          *orchestrator.Orchestrator
	normalizer  *websearch.Normalizer
	search      websearch.Client
	extractor   *insight.Extractor
	synthesizer *report.Synthesizer
	reports     contract.ReportRepository
	pubSub      *gochannel.GoChannel
	eventsTopic string
	broadcaster Broadcaster
	log         logger.ILogger
}

func NewCopilotService(
	sessions *session.Manager,
	transcriber transcribe.Transcriber,
	ai *orchestrator.Orchestrator,
	normalizer *websearch.Normalizer,
	search websearch.Client,
	extractor *insight.Extractor,
	synthesizer *report.Synthesizer,
	reports contract.ReportRepository,
	pubSub *gochannel.GoChannel,
	eventsTopic string,
	broadcaster Broadcaster,
	log logger.ILogger,
) ICopilotService {
	svc := &copilotService{
		sessions:    sessions,
		transcriber: transcriber,
		ai:          ai,
		normalizer:  normalizer,
		search:      search,
		extractor:   extractor,
		synthesizer: synthesizer,
		reports:     reports,
		pubSub:      pubSub,
		eventsTopic: eventsTopic,
		broadcaster: broadcaster,
		log:         log,
	}
	sessions.SetTimeoutHandler(svc.forceEnd)
	return svc
}

func (s *copilotService) StartSession(ctx context.Context, consultantId uuid.UUID, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error) {
	sess, err := s.sessions.Start(consultantId, req.ConsultantType, req.ClientInfo)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.TypeSessionStarted, map[string]interface{}{
		"sessionId":      sess.ID,
		"consultantType": sess.ConsultantType,
	})

	return &dto.StartSessionResponse{SessionId: sess.ID}, nil
}

func (s *copilotService) Transcribe(ctx context.Context, sessionId string, audio []byte) (*dto.TranscribeResponse, error) {
	if _, err := s.sessions.Get(sessionId); err != nil {
		return nil, err
	}

	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		if err == transcribe.ErrNotConfigured {
			s.log.Warn("CopilotService", "Transcription not configured", map[string]interface{}{
				"session_id": sessionId,
			})
			return &dto.TranscribeResponse{Transcript: ""}, nil
		}
		return nil, err
	}

	return &dto.TranscribeResponse{Transcript: text}, nil
}

func (s *copilotService) GetInsights(ctx context.Context, req *dto.GetInsightsRequest) (*dto.GetInsightsResponse, error) {
	sess, flagged, err := s.sessions.Append(req.SessionId, req.LatestUtterance)
	if err != nil {
		return nil, err
	}

	fullContext := prompt.FullContext(sess.ClientInfo, sess.Context.History())

	webResults := s.searchWeb(ctx, req.LatestUtterance, sess.ClientInfo)

	insightPrompt := prompt.NewInsightBuilder(req.ConsultantType, fullContext, req.LatestUtterance, webResults).Build()
	raw, err := s.ai.Complete(ctx, insightPrompt, "", 0.3, 8192)
	if err != nil {
		return nil, err
	}

	resp := &dto.GetInsightsResponse{
		WebResults: toWebResultDTOs(webResults),
		Flagged:    flagged,
	}

	if orchestrator.IsDegraded(raw) {
		resp.ExtractedData = []dto.SuggestionDTO{{
			Id:       uuid.New(),
			Type:     "Avviso",
			Title:    "Assistente non disponibile",
			Summary:  raw,
			Priority: "normal",
		}}
		return resp, nil
	}

	resp.ExtractedData = s.extractor.Suggestions(raw)
	resp.ActionableAdvice = s.generateAdvice(ctx, req.ConsultantType, fullContext, resp.ExtractedData)

	if s.broadcaster != nil && len(resp.ExtractedData) > 0 {
		s.broadcaster.Publish(req.SessionId, resp)
	}

	return resp, nil
}

// searchWeb is best-effort: no credentials or a provider failure yield an
// empty result set and the insight pass continues without web grounding.
func (s *copilotService) searchWeb(ctx context.Context, utterance, clientInfo string) []websearch.Result {
	query := s.normalizer.Normalize(utterance, clientInfo)
	results, err := s.search.Search(ctx, query)
	if err != nil {
		s.log.Warn("CopilotService", "Web search failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return results
}

// generateAdvice runs the second AI pass, seeded with the titles the first
// pass extracted. Skipped entirely when nothing was extracted.
func (s *copilotService) generateAdvice(ctx context.Context, consultantType, fullContext string, suggestions []dto.SuggestionDTO) *dto.ActionableAdviceDTO {
	if len(suggestions) == 0 {
		return nil
	}
	titles := make([]string, 0, len(suggestions))
	for _, sg := range suggestions {
		titles = append(titles, sg.Title)
	}

	raw, err := s.ai.Complete(ctx, prompt.AdvicePrompt(consultantType, fullContext, titles), "", 0.4, 2048)
	if err != nil || orchestrator.IsDegraded(raw) {
		if err != nil {
			s.log.Warn("CopilotService", "Advice generation failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	return s.extractor.Advice(raw)
}

func (s *copilotService) GetSummary(ctx context.Context, req *dto.GetSummaryRequest) (*dto.GetSummaryResponse, error) {
	sess, err := s.sessions.Get(req.SessionId)
	if err != nil {
		return nil, err
	}

	history := sess.Context.History()
	if strings.TrimSpace(history) == "" {
		history = req.ConversationHistory
	}
	fullContext := prompt.FullContext(sess.ClientInfo, history)

	raw, err := s.ai.Complete(ctx, prompt.StructuredSummaryPrompt(fullContext), "", 0.5, 4096)
	if err != nil {
		return nil, err
	}
	if orchestrator.IsDegraded(raw) {
		return &dto.GetSummaryResponse{}, nil
	}

	return &dto.GetSummaryResponse{MeetingSummary: s.extractor.StructuredSummary(raw)}, nil
}

func (s *copilotService) GenerateTasks(ctx context.Context, req *dto.GenerateTasksRequest) (*dto.GenerateTasksResponse, error) {
	sess, err := s.sessions.Get(req.SessionId)
	if err != nil {
		return nil, err
	}

	history := sess.Context.History()
	if strings.TrimSpace(history) == "" {
		history = req.ConversationHistory
	}
	fullContext := prompt.FullContext(sess.ClientInfo, history)

	raw, err := s.ai.Complete(ctx, prompt.TasksPrompt(fullContext), "", 0.4, 2048)
	if err != nil {
		return nil, err
	}
	if orchestrator.IsDegraded(raw) {
		return &dto.GenerateTasksResponse{Tasks: nil}, nil
	}

	return &dto.GenerateTasksResponse{Tasks: s.extractor.Tasks(raw)}, nil
}

func (s *copilotService) AskQuestion(ctx context.Context, sessionId string, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error) {
	sess, err := s.sessions.Get(sessionId)
	if err != nil {
		return nil, err
	}

	fullContext := prompt.FullContext(sess.ClientInfo, sess.Context.History())
	if req.Context != "" {
		fullContext += "\n\nCONTESTO AGGIUNTIVO:\n" + req.Context
	}

	answer, err := s.ai.Complete(ctx, prompt.QuestionPrompt(sess.ConsultantType, fullContext, req.Question), "", 0.6, 2048)
	if err != nil {
		return nil, err
	}
	return &dto.AskQuestionResponse{Answer: answer}, nil
}

func (s *copilotService) PauseSession(ctx context.Context, req *dto.PauseSessionRequest) error {
	return s.sessions.Pause(req.SessionId)
}

func (s *copilotService) ResumeSession(ctx context.Context, req *dto.ResumeSessionRequest) error {
	return s.sessions.Resume(req.SessionId)
}

// RateSuggestion records consultant feedback. Suggestions live client-side
// for the session's lifetime, so the rating is logged for offline analysis
// rather than written back to a store.
func (s *copilotService) RateSuggestion(ctx context.Context, req *dto.RateSuggestionRequest) error {
	if _, err := s.sessions.Get(req.SessionId); err != nil {
		return err
	}
	s.log.Info("CopilotService", "Suggestion rated", map[string]interface{}{
		"session_id":    req.SessionId,
		"suggestion_id": req.SuggestionId.String(),
		"rating":        req.Rating,
		"feedback":      req.Feedback,
	})
	return nil
}

func (s *copilotService) EndSession(ctx context.Context, consultantId uuid.UUID, req *dto.EndSessionRequest) (*dto.EndSessionResponse, error) {
	sess, alreadyEnded := s.sessions.End(req.SessionId)

	transcript := req.ConversationHistory
	if sess != nil && strings.TrimSpace(sess.Context.History()) != "" {
		transcript = sess.Context.History()
	}

	result, err := s.synthesizer.Synthesize(ctx, report.Input{
		ConsultantId:     consultantId,
		Transcript:       transcript,
		WebResults:       req.WebResults,
		PlanningData:     req.PlanningData,
		ActionableAdvice: req.ActionableAdvice,
	})
	if err != nil {
		// A duplicate end finds no pending meeting: the first call already
		// attached the report. Hand that report back instead of a 404.
		if alreadyEnded && errors.Is(err, dto.ErrNoPendingMeeting) {
			existing, lookupErr := s.synthesizer.LatestReport(ctx, consultantId)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return &dto.EndSessionResponse{
				ReportId:     existing.ReportId,
				MeetingId:    existing.MeetingId,
				ReportURL:    existing.ReportURL,
				AlreadyEnded: true,
			}, nil
		}
		return nil, err
	}

	s.publishEvent(events.TypeSessionEnded, map[string]interface{}{
		"sessionId": req.SessionId,
		"reportId":  result.ReportId.String(),
		"meetingId": result.MeetingId.String(),
		"reportUrl": result.ReportURL,
	})
	s.publishEvent(events.TypeReportGenerated, map[string]interface{}{
		"reportId":  result.ReportId.String(),
		"meetingId": result.MeetingId.String(),
		"reportUrl": result.ReportURL,
	})

	return &dto.EndSessionResponse{
		ReportId:     result.ReportId,
		MeetingId:    result.MeetingId,
		ReportURL:    result.ReportURL,
		AlreadyEnded: alreadyEnded,
	}, nil
}

// forceEnd runs when a session exceeds its maximum duration. It behaves like
// an explicit end call with whatever transcript accumulated.
func (s *copilotService) forceEnd(sessionId string) {
	sess, alreadyEnded := s.sessions.End(sessionId)
	if alreadyEnded || sess == nil {
		return
	}

	_, err := s.synthesizer.Synthesize(context.Background(), report.Input{
		ConsultantId: sess.ConsultantId,
		Transcript:   sess.Context.History(),
	})
	if err != nil {
		s.log.Error("CopilotService", "Forced end failed to persist report", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}

	s.publishEvent(events.TypeSessionTimedOut, map[string]interface{}{
		"sessionId": sessionId,
	})
}

func (s *copilotService) GetReport(ctx context.Context, meetingId uuid.UUID) (*dto.GetReportResponse, error) {
	rep, err := s.reports.FindByMeetingId(ctx, meetingId)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, dto.ErrReportNotFound
	}

	resp := &dto.GetReportResponse{
		MeetingId:      rep.MeetingId,
		FullTranscript: rep.FullTranscript,
		Summary:        rep.Summary,
		CreatedAt:      rep.CreatedAt,
		UpdatedAt:      rep.UpdatedAt,
	}
	_ = json.Unmarshal(rep.GeneratedTasks, &resp.GeneratedTasks)
	_ = json.Unmarshal(rep.ConsultantNotes, &resp.ConsultantNotes)
	_ = json.Unmarshal(rep.WebResults, &resp.WebResults)
	_ = json.Unmarshal(rep.ActionableAdvice, &resp.ActionableAdvice)
	return resp, nil
}

func (s *copilotService) publishEvent(eventType string, payload map[string]interface{}) {
	if s.pubSub == nil {
		return
	}
	payload["event"] = eventType
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := message.NewMessage(uuid.NewString(), data)
	if err := s.pubSub.Publish(s.eventsTopic, msg); err != nil {
		s.log.Warn("CopilotService", "Event publish failed", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func toWebResultDTOs(results []websearch.Result) []dto.WebResultDTO {
	out := make([]dto.WebResultDTO, 0, len(results))
	for _, r := range results {
		out = append(out, dto.WebResultDTO{
			Title:       r.Title,
			Snippet:     r.Snippet,
			Link:        r.Link,
			DisplayLink: r.DisplayLink,
		})
	}
	return out
}
