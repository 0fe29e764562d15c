package report

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/entity"
	"ai-copilot-be/internal/pkg/logger"
	"ai-copilot-be/internal/repository/specification"
	"ai-copilot-be/pkg/ai/insight"
	"ai-copilot-be/pkg/ai/orchestrator"
	"ai-copilot-be/pkg/llm"
)

type countingProvider struct {
	calls    atomic.Int32
	response string
}

func (p *countingProvider) Chat(ctx context.Context, h []llm.Message, o ...llm.Option) (string, error) {
	return p.Generate(ctx, "", o...)
}

func (p *countingProvider) Generate(ctx context.Context, prompt string, o ...llm.Option) (string, error) {
	p.calls.Add(1)
	return p.response, nil
}

type fakeMeetingRepo struct {
	pending *entity.Meeting
}

func (r *fakeMeetingRepo) Create(ctx context.Context, m *entity.Meeting) error { return nil }
func (r *fakeMeetingRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Meeting, error) {
	return r.pending, nil
}
func (r *fakeMeetingRepo) FindLatestWithoutReport(ctx context.Context, consultantId uuid.UUID) (*entity.Meeting, error) {
	return r.pending, nil
}

type fakeReportRepo struct {
	byMeeting map[uuid.UUID]*entity.MeetingReport
	upserts   int
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{byMeeting: make(map[uuid.UUID]*entity.MeetingReport)}
}

func (r *fakeReportRepo) Upsert(ctx context.Context, rep *entity.MeetingReport) error {
	r.upserts++
	if existing, ok := r.byMeeting[rep.MeetingId]; ok {
		// Keep the original id like the ON CONFLICT path does.
		rep.Id = existing.Id
	}
	r.byMeeting[rep.MeetingId] = rep
	return nil
}

func (r *fakeReportRepo) FindByMeetingId(ctx context.Context, meetingId uuid.UUID) (*entity.MeetingReport, error) {
	return r.byMeeting[meetingId], nil
}

func newTestSynthesizer(t *testing.T, provider *countingProvider, meetings *fakeMeetingRepo, reports *fakeReportRepo) *Synthesizer {
	t.Helper()
	log := logger.NewIsolatedLogger(t.TempDir() + "/test.log")
	o := orchestrator.New("gemini", time.Second, log)
	o.Register("gemini", provider, true)
	return NewSynthesizer(o, insight.NewExtractor(log), meetings, reports, "http://localhost:3000", log)
}

// An empty transcript stores the placeholder report without any AI call.
func TestSynthesizeEmptyTranscriptSkipsAI(t *testing.T) {
	provider := &countingProvider{}
	meetings := &fakeMeetingRepo{pending: &entity.Meeting{Id: uuid.New()}}
	reports := newFakeReportRepo()
	s := newTestSynthesizer(t, provider, meetings, reports)

	result, err := s.Synthesize(context.Background(), Input{
		ConsultantId: uuid.New(),
		Transcript:   "   ",
	})

	assert.NoError(t, err)
	assert.Equal(t, int32(0), provider.calls.Load())

	stored := reports.byMeeting[meetings.pending.Id]
	assert.Equal(t, PlaceholderSummary, stored.Summary)
	assert.Equal(t, "[]", string(stored.GeneratedTasks))
	assert.Equal(t, result.MeetingId, meetings.pending.Id)
}

func TestSynthesizeGeneratesSummaryAndTasks(t *testing.T) {
	provider := &countingProvider{response: `[{"title":"Verifica bando","description":"Controllare i requisiti"}]`}
	meetings := &fakeMeetingRepo{pending: &entity.Meeting{Id: uuid.New()}}
	reports := newFakeReportRepo()
	s := newTestSynthesizer(t, provider, meetings, reports)

	_, err := s.Synthesize(context.Background(), Input{
		ConsultantId: uuid.New(),
		Transcript:   "Il cliente vuole aprire una seconda sede.",
	})

	assert.NoError(t, err)
	// One summarization call, one task-extraction call.
	assert.Equal(t, int32(2), provider.calls.Load())

	stored := reports.byMeeting[meetings.pending.Id]
	assert.Equal(t, "Il cliente vuole aprire una seconda sede.", stored.FullTranscript)
	assert.Contains(t, string(stored.GeneratedTasks), "Verifica bando")
}

// Repeated synthesis for the same meeting updates one report in place.
func TestSynthesizeTwiceUpsertsOneReport(t *testing.T) {
	provider := &countingProvider{response: "riassunto"}
	meetings := &fakeMeetingRepo{pending: &entity.Meeting{Id: uuid.New()}}
	reports := newFakeReportRepo()
	s := newTestSynthesizer(t, provider, meetings, reports)

	first, err := s.Synthesize(context.Background(), Input{ConsultantId: uuid.New(), Transcript: "testo"})
	assert.NoError(t, err)

	second, err := s.Synthesize(context.Background(), Input{ConsultantId: uuid.New(), Transcript: "testo"})
	assert.NoError(t, err)

	assert.Len(t, reports.byMeeting, 1)
	assert.Equal(t, first.ReportId, second.ReportId)
}

func TestSynthesizeNoPendingMeeting(t *testing.T) {
	provider := &countingProvider{}
	reports := newFakeReportRepo()
	s := newTestSynthesizer(t, provider, &fakeMeetingRepo{}, reports)

	_, err := s.Synthesize(context.Background(), Input{ConsultantId: uuid.New(), Transcript: "testo"})

	assert.ErrorIs(t, err, dto.ErrNoPendingMeeting)
	assert.Equal(t, 0, reports.upserts)
}
