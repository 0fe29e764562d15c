package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/pkg/logger"
)

// slowBackend transcribes instantly but holds each insight call long enough
// that later chunks must queue behind it.
type slowBackend struct {
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	failOn   string
}

func (b *slowBackend) Transcribe(ctx context.Context, sessionId string, chunk []byte) (string, error) {
	if b.failOn != "" && string(chunk) == b.failOn {
		return "", errors.New("transcription refused")
	}
	return string(chunk), nil
}

func (b *slowBackend) GetInsights(ctx context.Context, sessionId, utterance string) (*dto.GetInsightsResponse, error) {
	cur := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		prev := b.maxSeen.Load()
		if cur <= prev || b.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	return &dto.GetInsightsResponse{
		ExtractedData: []dto.SuggestionDTO{{Title: utterance}},
	}, nil
}

type recordingSink struct {
	transcripts []string
	titles      []string
	errs        []error
}

func (s *recordingSink) OnTranscript(text string)                { s.transcripts = append(s.transcripts, text) }
func (s *recordingSink) OnError(err error)                       { s.errs = append(s.errs, err) }
func (s *recordingSink) OnInsights(resp *dto.GetInsightsResponse) {
	for _, sg := range resp.ExtractedData {
		s.titles = append(s.titles, sg.Title)
	}
}

func testLogger(t *testing.T) logger.ILogger {
	t.Helper()
	return logger.NewIsolatedLogger(t.TempDir() + "/test.log")
}

// Chunks queued behind an in-flight AI call are drained strictly in arrival
// order, with never more than one insight call running.
func TestRunPreservesArrivalOrder(t *testing.T) {
	backend := &slowBackend{delay: 10 * time.Millisecond}
	sink := &recordingSink{}
	pipe := New(backend, sink, "ai_session_test", testLogger(t))

	const n = 20
	chunks := make(chan []byte, n)
	for i := 0; i < n; i++ {
		chunks <- []byte(fmt.Sprintf("chunk-%02d", i))
	}
	close(chunks)

	pipe.Run(context.Background(), chunks)

	assert.Len(t, sink.titles, n)
	for i, title := range sink.titles {
		assert.Equal(t, fmt.Sprintf("chunk-%02d", i), title)
	}
	assert.Equal(t, int32(1), backend.maxSeen.Load())
}

// A failed chunk is reported and skipped; the rest of the stream continues.
func TestRunSkipsFailedChunks(t *testing.T) {
	backend := &slowBackend{failOn: "guasto"}
	sink := &recordingSink{}
	pipe := New(backend, sink, "ai_session_test", testLogger(t))

	chunks := make(chan []byte, 3)
	chunks <- []byte("primo")
	chunks <- []byte("guasto")
	chunks <- []byte("terzo")
	close(chunks)

	pipe.Run(context.Background(), chunks)

	assert.Equal(t, []string{"primo", "terzo"}, sink.titles)
	assert.Len(t, sink.errs, 1)
}

// Silent chunks produce no transcript and no insight call.
func TestRunIgnoresEmptyTranscripts(t *testing.T) {
	backend := &slowBackend{}
	sink := &recordingSink{}
	pipe := New(backend, sink, "ai_session_test", testLogger(t))

	chunks := make(chan []byte, 2)
	chunks <- []byte("   ")
	chunks <- []byte("parlato")
	close(chunks)

	pipe.Run(context.Background(), chunks)

	assert.Equal(t, []string{"parlato"}, sink.titles)
}

func TestRunStopsOnCancel(t *testing.T) {
	backend := &slowBackend{}
	sink := &recordingSink{}
	pipe := New(backend, sink, "ai_session_test", testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks := make(chan []byte)
	done := make(chan struct{})
	go func() {
		pipe.Run(ctx, chunks)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop on cancellation")
	}
}
