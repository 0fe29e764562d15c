package audio

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ai-copilot-be/internal/pkg/logger"
)

// fakeDevice replays pre-scripted frames.
type fakeDevice struct {
	frames  [][]byte
	stopped bool
}

func (d *fakeDevice) Start(ctx context.Context) (<-chan []byte, error) {
	out := make(chan []byte)
	go func() {
		defer close(out)
		for _, f := range d.frames {
			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (d *fakeDevice) Stop() error {
	d.stopped = true
	return nil
}

func loudFrame(samples int) []byte {
	f := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(f[i*2:], uint16(int16(8000)))
	}
	return f
}

func silentFrame(samples int) []byte {
	return make([]byte, samples*2)
}

func testLogger(t *testing.T) logger.ILogger {
	t.Helper()
	return logger.NewIsolatedLogger(t.TempDir() + "/test.log")
}

func collect(t *testing.T, ch <-chan []byte) [][]byte {
	t.Helper()
	var got [][]byte
	for {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, chunk)
		case <-time.After(2 * time.Second):
			t.Fatal("chunk channel never closed")
		}
	}
}

func TestChunkerFlushesAtSizeBoundary(t *testing.T) {
	// 1s chunks at 1kHz mono: 2000 bytes per chunk, 4 frames of 250ms each.
	device := &fakeDevice{frames: [][]byte{
		loudFrame(250), loudFrame(250), loudFrame(250), loudFrame(250),
		loudFrame(250), loudFrame(250),
	}}
	chunker := NewChunker(device, ChunkerConfig{
		SampleRate:    1000,
		ChunkDuration: time.Second,
		QuietWindow:   time.Hour, // never trip the silence flush
	}, testLogger(t))

	go chunker.Run(context.Background())
	got := collect(t, chunker.Chunks())

	// One full chunk plus the final partial flush.
	assert.Len(t, got, 2)
	assert.Equal(t, 2000, len(got[0]))
	assert.Equal(t, 1000, len(got[1]))
	assert.True(t, device.stopped)
}

func TestChunkerFlushesOnQuietWindow(t *testing.T) {
	device := &fakeDevice{frames: [][]byte{
		loudFrame(100),
		silentFrame(100),
		silentFrame(100),
		silentFrame(100),
	}}
	chunker := NewChunker(device, ChunkerConfig{
		SampleRate:    1000,
		ChunkDuration: time.Hour, // never trip the size flush
		QuietWindow:   time.Nanosecond,
	}, testLogger(t))

	go chunker.Run(context.Background())
	got := collect(t, chunker.Chunks())

	assert.NotEmpty(t, got)
	// The speech landed in the first flushed chunk, not lost at shutdown.
	assert.GreaterOrEqual(t, len(got[0]), 200)
}

func TestChunkerDiscardsFramesWhilePaused(t *testing.T) {
	device := &fakeDevice{frames: [][]byte{
		loudFrame(100), loudFrame(100), loudFrame(100),
	}}
	chunker := NewChunker(device, ChunkerConfig{
		SampleRate:    1000,
		ChunkDuration: time.Hour,
		QuietWindow:   time.Hour,
	}, testLogger(t))
	chunker.Pause()

	go chunker.Run(context.Background())
	got := collect(t, chunker.Chunks())

	assert.Empty(t, got)
}

func TestChunkerResumeRestoresEmission(t *testing.T) {
	device := &fakeDevice{frames: [][]byte{
		loudFrame(100), loudFrame(100),
	}}
	chunker := NewChunker(device, ChunkerConfig{
		SampleRate:    1000,
		ChunkDuration: time.Hour,
		QuietWindow:   time.Hour,
	}, testLogger(t))
	chunker.Pause()
	chunker.Resume()

	go chunker.Run(context.Background())
	got := collect(t, chunker.Chunks())

	assert.Len(t, got, 1)
	assert.Equal(t, 400, len(got[0]))
}
