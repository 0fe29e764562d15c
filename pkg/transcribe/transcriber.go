package transcribe

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when the transcription provider has no
// credentials. Callers treat it differently from a provider failure: the
// session keeps running and the client is told to check configuration.
var ErrNotConfigured = errors.New("transcribe: provider not configured")

// Transcriber converts one audio chunk into text. An empty transcript with a
// nil error is a valid outcome (silence, unintelligible audio).
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
