package pipeline

import (
	"context"
	"strings"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/pkg/logger"
)

// Backend is the slice of the session API the pipeline drives.
type Backend interface {
	Transcribe(ctx context.Context, sessionId string, chunk []byte) (string, error)
	GetInsights(ctx context.Context, sessionId, utterance string) (*dto.GetInsightsResponse, error)
}

// Sink receives pipeline output on the consumer goroutine, in arrival order.
type Sink interface {
	OnTranscript(text string)
	OnInsights(resp *dto.GetInsightsResponse)
	OnError(err error)
}

// Pipeline drains audio chunks with a single consumer loop: transcribe,
// then fetch insights, one chunk fully processed before the next is taken.
// The bounded chunk channel is the queue; nothing is dropped and nothing
// runs concurrently, which is what keeps suggestions in chronological order
// and keeps exactly one AI call in flight per session.
type Pipeline struct {
	backend   Backend
	sink      Sink
	sessionId string
	log       logger.ILogger
}

func New(backend Backend, sink Sink, sessionId string, log logger.ILogger) *Pipeline {
	return &Pipeline{backend: backend, sink: sink, sessionId: sessionId, log: log}
}

// Run consumes chunks until the channel closes or the context is cancelled.
// Failures on one chunk are reported to the sink and the loop moves on: a
// missed suggestion never stalls the conversation.
func (p *Pipeline) Run(ctx context.Context, chunks <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-chunks:
			if !ok {
				return
			}
			p.process(ctx, chunk)
		}
	}
}

func (p *Pipeline) process(ctx context.Context, chunk []byte) {
	text, err := p.backend.Transcribe(ctx, p.sessionId, chunk)
	if err != nil {
		p.log.Warn("pipeline", "transcription failed, skipping chunk", map[string]interface{}{
			"session_id": p.sessionId,
			"error":      err.Error(),
		})
		p.sink.OnError(err)
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	p.sink.OnTranscript(text)

	resp, err := p.backend.GetInsights(ctx, p.sessionId, text)
	if err != nil {
		p.log.Warn("pipeline", "insight fetch failed", map[string]interface{}{
			"session_id": p.sessionId,
			"error":      err.Error(),
		})
		p.sink.OnError(err)
		return
	}
	p.sink.OnInsights(resp)
}
