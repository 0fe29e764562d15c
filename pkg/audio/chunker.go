package audio

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"ai-copilot-be/internal/pkg/logger"
)

// Chunker assembles microphone frames into fixed-duration PCM chunks and
// hands them to the pipeline over a bounded channel. A quiet stretch flushes
// the partial chunk early so a conversational pause produces a transcript
// promptly instead of waiting for the size boundary.
type Chunker struct {
	device        CaptureDevice
	sampleRate    int
	chunkDuration time.Duration
	silenceRMS    float64
	quietWindow   time.Duration
	log           logger.ILogger

	mu     sync.Mutex
	paused bool

	chunks chan []byte
}

// ChunkerConfig tunes one Chunker.
type ChunkerConfig struct {
	SampleRate    int
	ChunkDuration time.Duration
	SilenceRMS    float64
	QuietWindow   time.Duration
	Buffer        int
}

func NewChunker(device CaptureDevice, cfg ChunkerConfig, log logger.ILogger) *Chunker {
	if cfg.ChunkDuration == 0 {
		cfg.ChunkDuration = 5 * time.Second
	}
	if cfg.SilenceRMS == 0 {
		cfg.SilenceRMS = 500
	}
	if cfg.QuietWindow == 0 {
		cfg.QuietWindow = 1500 * time.Millisecond
	}
	if cfg.Buffer == 0 {
		cfg.Buffer = 8
	}
	return &Chunker{
		device:        device,
		sampleRate:    cfg.SampleRate,
		chunkDuration: cfg.ChunkDuration,
		silenceRMS:    cfg.SilenceRMS,
		quietWindow:   cfg.QuietWindow,
		log:           log,
		chunks:        make(chan []byte, cfg.Buffer),
	}
}

// Chunks returns the bounded channel the pipeline consumes from. Closed when
// capture stops.
func (c *Chunker) Chunks() <-chan []byte {
	return c.chunks
}

// Pause gates emission without tearing the device down. Frames captured
// while paused are discarded.
func (c *Chunker) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

func (c *Chunker) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

func (c *Chunker) isPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Run captures until the context is cancelled, then flushes the partial
// chunk, releases the device, and closes the chunk channel.
func (c *Chunker) Run(ctx context.Context) error {
	frames, err := c.device.Start(ctx)
	if err != nil {
		return err
	}

	// bytes per chunk: 16-bit mono samples
	chunkBytes := c.sampleRate * 2 * int(c.chunkDuration/time.Second)

	var pending []byte
	quietSince := time.Time{}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		chunk := pending
		pending = nil
		quietSince = time.Time{}
		select {
		case c.chunks <- chunk:
		case <-ctx.Done():
		}
	}

	for frame := range frames {
		if c.isPaused() {
			continue
		}

		pending = append(pending, frame...)

		if rms(frame) < c.silenceRMS {
			if quietSince.IsZero() {
				quietSince = time.Now()
			} else if time.Since(quietSince) >= c.quietWindow {
				c.log.Debug("audio", "quiet window elapsed, flushing partial chunk", map[string]interface{}{
					"bytes": len(pending),
				})
				flush()
			}
		} else {
			quietSince = time.Time{}
		}

		if len(pending) >= chunkBytes {
			flush()
		}
	}

	flush()
	err = c.device.Stop()
	close(c.chunks)
	return err
}

// rms computes the root-mean-square amplitude of one 16-bit LE mono frame.
func rms(frame []byte) float64 {
	n := len(frame) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(frame[i*2:]))
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(n))
}
