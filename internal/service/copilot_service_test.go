package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/entity"
	"ai-copilot-be/internal/pkg/logger"
	"ai-copilot-be/internal/repository/memory"
	"ai-copilot-be/internal/repository/specification"
	"ai-copilot-be/pkg/ai/insight"
	"ai-copilot-be/pkg/ai/orchestrator"
	"ai-copilot-be/pkg/ai/prompt"
	"ai-copilot-be/pkg/llm"
	"ai-copilot-be/pkg/report"
	"ai-copilot-be/pkg/session"
	"ai-copilot-be/pkg/websearch"
)

type scriptedProvider struct {
	response string
	calls    int
}

func (p *scriptedProvider) Chat(ctx context.Context, h []llm.Message, o ...llm.Option) (string, error) {
	return p.Generate(ctx, "", o...)
}

func (p *scriptedProvider) Generate(ctx context.Context, pr string, o ...llm.Option) (string, error) {
	p.calls++
	return p.response, nil
}

type emptySearch struct{ calls int }

func (s *emptySearch) Search(ctx context.Context, q string) ([]websearch.Result, error) {
	s.calls++
	return nil, nil
}

type fixedTranscriber struct{ text string }

func (f *fixedTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return f.text, nil
}

type stubMeetingRepo struct {
	pending *entity.Meeting
	reports *stubReportRepo
}

func (r *stubMeetingRepo) Create(ctx context.Context, m *entity.Meeting) error { return nil }
func (r *stubMeetingRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Meeting, error) {
	return r.pending, nil
}

// Honors the contract: once the meeting has a report it is no longer pending.
func (r *stubMeetingRepo) FindLatestWithoutReport(ctx context.Context, id uuid.UUID) (*entity.Meeting, error) {
	if _, ok := r.reports.byMeeting[r.pending.Id]; ok {
		return nil, nil
	}
	return r.pending, nil
}

type stubReportRepo struct {
	byMeeting map[uuid.UUID]*entity.MeetingReport
}

func (r *stubReportRepo) Upsert(ctx context.Context, rep *entity.MeetingReport) error {
	if existing, ok := r.byMeeting[rep.MeetingId]; ok {
		rep.Id = existing.Id
	}
	r.byMeeting[rep.MeetingId] = rep
	return nil
}

func (r *stubReportRepo) FindByMeetingId(ctx context.Context, id uuid.UUID) (*entity.MeetingReport, error) {
	return r.byMeeting[id], nil
}

type fixture struct {
	svc      ICopilotService
	provider *scriptedProvider
	search   *emptySearch
	reports  *stubReportRepo
	meeting  *entity.Meeting
}

func newFixture(t *testing.T, providerResponse string) *fixture {
	t.Helper()
	log := logger.NewIsolatedLogger(t.TempDir() + "/test.log")

	provider := &scriptedProvider{response: providerResponse}
	o := orchestrator.New("gemini", time.Second, log)
	o.Register("gemini", provider, true)

	store := memory.NewSessionStore(2 * time.Hour)
	sessions := session.NewManager(store, prompt.RecognizedTypes(), 0, log)

	meeting := &entity.Meeting{Id: uuid.New()}
	reports := &stubReportRepo{byMeeting: make(map[uuid.UUID]*entity.MeetingReport)}
	meetings := &stubMeetingRepo{pending: meeting, reports: reports}

	extractor := insight.NewExtractor(log)
	synthesizer := report.NewSynthesizer(o, extractor, meetings, reports, "http://localhost:3000", log)
	search := &emptySearch{}

	svc := NewCopilotService(
		sessions,
		&fixedTranscriber{text: "trascritto"},
		o,
		websearch.NewNormalizer("bando OR finanziamento", "bandi PMI"),
		search,
		extractor,
		synthesizer,
		reports,
		nil, // event bus not under test
		"SESSION_EVENTS",
		nil,
		log,
	)

	return &fixture{svc: svc, provider: provider, search: search, reports: reports, meeting: meeting}
}

const grantEnvelope = `{"extractedData":[{"type":"Bando Pubblico","title":"Bando edilizia sostenibile","summary":"Contributi per imprese edili.","source":"Regione","directLink":"https://example.it/bando"}]}`

// A full live round: start, append an utterance, get back a grant-typed
// suggestion even with the search capability returning nothing.
func TestStartAppendGetInsights(t *testing.T) {
	f := newFixture(t, grantEnvelope)
	ctx := context.Background()

	started, err := f.svc.StartSession(ctx, uuid.New(), &dto.StartSessionRequest{
		ConsultantType: "Consulente del Lavoro",
		ClientInfo:     "Cliente: Acme Srl, Settore: Edilizia.",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, started.SessionId)

	resp, err := f.svc.GetInsights(ctx, &dto.GetInsightsRequest{
		SessionId:       started.SessionId,
		ConsultantType:  "Consulente del Lavoro",
		LatestUtterance: "Buongiorno, vorrei sapere dei bandi per l'edilizia",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.ExtractedData)
	assert.Equal(t, "Bando Pubblico", resp.ExtractedData[0].Type)
	// Unconfigured/empty search still yields a successful response.
	assert.Empty(t, resp.WebResults)
	assert.Equal(t, 1, f.search.calls)
}

func TestStartRejectsUnknownType(t *testing.T) {
	f := newFixture(t, grantEnvelope)

	_, err := f.svc.StartSession(context.Background(), uuid.New(), &dto.StartSessionRequest{
		ConsultantType: "Astrologo",
	})

	var typeErr *session.ErrUnknownConsultantType
	assert.ErrorAs(t, err, &typeErr)
}

func TestGetInsightsUnknownSession(t *testing.T) {
	f := newFixture(t, grantEnvelope)

	_, err := f.svc.GetInsights(context.Background(), &dto.GetInsightsRequest{
		SessionId:       "ai_session_missing_0",
		ConsultantType:  "Consulente",
		LatestUtterance: "ciao",
	})

	var notFound *dto.SessionNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestGetInsightsWhilePausedIsFlagged(t *testing.T) {
	f := newFixture(t, grantEnvelope)
	ctx := context.Background()

	started, _ := f.svc.StartSession(ctx, uuid.New(), &dto.StartSessionRequest{ConsultantType: "Consulente"})
	assert.NoError(t, f.svc.PauseSession(ctx, &dto.PauseSessionRequest{SessionId: started.SessionId}))

	resp, err := f.svc.GetInsights(ctx, &dto.GetInsightsRequest{
		SessionId:       started.SessionId,
		ConsultantType:  "Consulente",
		LatestUtterance: "detto in pausa",
	})
	assert.NoError(t, err)
	assert.True(t, resp.Flagged)
}

// Ending a session with no utterances stores the placeholder report without
// invoking the AI layer.
func TestEndSessionEmptyTranscriptStoresPlaceholder(t *testing.T) {
	f := newFixture(t, grantEnvelope)
	ctx := context.Background()

	started, _ := f.svc.StartSession(ctx, uuid.New(), &dto.StartSessionRequest{ConsultantType: "Commercialista"})

	resp, err := f.svc.EndSession(ctx, uuid.New(), &dto.EndSessionRequest{
		SessionId:           started.SessionId,
		ConversationHistory: "",
	})
	assert.NoError(t, err)
	assert.False(t, resp.AlreadyEnded)
	assert.Equal(t, 0, f.provider.calls)

	stored := f.reports.byMeeting[f.meeting.Id]
	assert.Equal(t, report.PlaceholderSummary, stored.Summary)
	assert.Equal(t, "[]", string(stored.GeneratedTasks))
}

// A duplicate end call does not error and leaves exactly one report. The
// second call finds no pending meeting (the first one attached the report)
// and must hand back the existing report instead of failing.
func TestEndSessionTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t, "riassunto del meeting")
	ctx := context.Background()

	consultantId := uuid.New()
	started, _ := f.svc.StartSession(ctx, consultantId, &dto.StartSessionRequest{ConsultantType: "Commercialista"})
	f.svc.GetInsights(ctx, &dto.GetInsightsRequest{
		SessionId:       started.SessionId,
		ConsultantType:  "Commercialista",
		LatestUtterance: "vorrei un consiglio fiscale",
	})

	first, err := f.svc.EndSession(ctx, consultantId, &dto.EndSessionRequest{SessionId: started.SessionId})
	assert.NoError(t, err)
	assert.False(t, first.AlreadyEnded)

	second, err := f.svc.EndSession(ctx, consultantId, &dto.EndSessionRequest{
		SessionId:           started.SessionId,
		ConversationHistory: "vorrei un consiglio fiscale",
	})
	assert.NoError(t, err)
	assert.True(t, second.AlreadyEnded)

	assert.Len(t, f.reports.byMeeting, 1)
	assert.Equal(t, first.ReportId, second.ReportId)
	assert.Equal(t, first.MeetingId, second.MeetingId)
	assert.Equal(t, first.ReportURL, second.ReportURL)
}

func TestGetReportRoundTrip(t *testing.T) {
	f := newFixture(t, "riassunto")
	ctx := context.Background()

	started, _ := f.svc.StartSession(ctx, uuid.New(), &dto.StartSessionRequest{ConsultantType: "Consulente"})
	f.svc.GetInsights(ctx, &dto.GetInsightsRequest{
		SessionId:       started.SessionId,
		ConsultantType:  "Consulente",
		LatestUtterance: "qualcosa da dire",
	})
	ended, err := f.svc.EndSession(ctx, uuid.New(), &dto.EndSessionRequest{SessionId: started.SessionId})
	assert.NoError(t, err)

	got, err := f.svc.GetReport(ctx, ended.MeetingId)
	assert.NoError(t, err)
	assert.NotEmpty(t, got.FullTranscript)

	_, err = f.svc.GetReport(ctx, uuid.New())
	assert.ErrorIs(t, err, dto.ErrReportNotFound)
}

func TestTranscribeUnknownSession(t *testing.T) {
	f := newFixture(t, grantEnvelope)

	_, err := f.svc.Transcribe(context.Background(), "ai_session_missing_0", []byte("audio"))

	var notFound *dto.SessionNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
