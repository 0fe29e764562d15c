package audio

import "context"

// CaptureDevice streams raw PCM frames from a microphone. Frames are
// 16-bit little-endian mono at the configured sample rate.
type CaptureDevice interface {
	// Start begins capture; frames arrive on the returned channel until the
	// context is cancelled or Stop is called, after which the channel closes.
	Start(ctx context.Context) (<-chan []byte, error)
	Stop() error
}
