package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-copilot-be/internal/pkg/logger"
)

const speechEndpoint = "https://speech.googleapis.com/v1/speech:recognize"

// GoogleTranscriber sends LINEAR16 PCM chunks to the Google Cloud
// Speech-to-Text REST API using synchronous recognition.
type GoogleTranscriber struct {
	apiKey     string
	language   string
	sampleRate int
	httpClient *http.Client
	log        logger.ILogger
}

func NewGoogleTranscriber(apiKey, language string, sampleRate int, timeout time.Duration, log logger.ILogger) *GoogleTranscriber {
	return &GoogleTranscriber{
		apiKey:     apiKey,
		language:   language,
		sampleRate: sampleRate,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type recognizeRequest struct {
	Config recognizeConfig `json:"config"`
	Audio  recognizeAudio  `json:"audio"`
}

type recognizeConfig struct {
	Encoding        string `json:"encoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	LanguageCode    string `json:"languageCode"`
}

type recognizeAudio struct {
	Content string `json:"content"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

func (t *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if t.apiKey == "" {
		return "", ErrNotConfigured
	}
	if len(audio) == 0 {
		return "", nil
	}

	payload, err := json.Marshal(recognizeRequest{
		Config: recognizeConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: t.sampleRate,
			LanguageCode:    t.language,
		},
		Audio: recognizeAudio{Content: base64.StdEncoding.EncodeToString(audio)},
	})
	if err != nil {
		return "", fmt.Errorf("marshal recognize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, speechEndpoint+"?key="+t.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build recognize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		t.log.Warn("transcribe", "speech api returned non-200", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return "", fmt.Errorf("speech api status %d", resp.StatusCode)
	}

	var parsed recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode recognize response: %w", err)
	}

	var transcript strings.Builder
	for _, result := range parsed.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if transcript.Len() > 0 {
			transcript.WriteByte(' ')
		}
		transcript.WriteString(result.Alternatives[0].Transcript)
	}
	return strings.TrimSpace(transcript.String()), nil
}

var _ Transcriber = (*GoogleTranscriber)(nil)
