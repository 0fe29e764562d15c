package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"ai-copilot-be/internal/config"
	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/pkg/logger"
	"ai-copilot-be/pkg/audio"
	"ai-copilot-be/pkg/httpclient"
	"ai-copilot-be/pkg/pipeline"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	speechColor  = color.New(color.FgWhite)
	insightColor = color.New(color.FgGreen)
	adviceColor  = color.New(color.FgYellow)
	errColor     = color.New(color.FgRed)
)

// apiBackend adapts the request layer to what the pipeline needs.
type apiBackend struct {
	client *httpclient.Client
}

func (b *apiBackend) Transcribe(ctx context.Context, sessionId string, chunk []byte) (string, error) {
	var envelope struct {
		Data dto.TranscribeResponse `json:"data"`
	}
	err := b.client.PostRaw(ctx, "/api/copilot/v1/transcribe?sessionId="+sessionId, chunk, &envelope)
	if err != nil {
		return "", err
	}
	return envelope.Data.Transcript, nil
}

func (b *apiBackend) GetInsights(ctx context.Context, sessionId, utterance string) (*dto.GetInsightsResponse, error) {
	var envelope struct {
		Data dto.GetInsightsResponse `json:"data"`
	}
	req := dto.GetInsightsRequest{
		SessionId:       sessionId,
		ConsultantType:  consultantType,
		LatestUtterance: utterance,
	}
	if err := b.client.PostJSON(ctx, "/api/copilot/v1/get-insights", req, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// terminalSink renders pipeline output on the console.
type terminalSink struct{}

func (terminalSink) OnTranscript(text string) {
	speechColor.Printf("🎤 %s\n", text)
}

func (terminalSink) OnInsights(resp *dto.GetInsightsResponse) {
	for _, s := range resp.ExtractedData {
		insightColor.Printf("💡 [%s] %s\n", s.Type, s.Title)
		if s.Summary != "" {
			fmt.Printf("   %s\n", s.Summary)
		}
		if s.DirectLink != "" {
			fmt.Printf("   → %s\n", s.DirectLink)
		}
	}
	if resp.ActionableAdvice != nil {
		for _, q := range resp.ActionableAdvice.QuestionsForClient {
			adviceColor.Printf("❓ Chiedi: %s\n", q)
		}
		for _, step := range resp.ActionableAdvice.NextSteps {
			adviceColor.Printf("▶  Prossimo passo: %s\n", step)
		}
	}
}

func (terminalSink) OnError(err error) {
	errColor.Printf("⚠  %v\n", err)
}

var consultantType string

func main() {
	var (
		baseURL    = flag.String("server", "http://localhost:3000", "backend base URL")
		token      = flag.String("token", os.Getenv("COPILOT_TOKEN"), "bearer token")
		clientInfo = flag.String("client", "", "client context, e.g. 'Cliente: Rossi SRL, Settore: Edilizia'")
	)
	flag.StringVar(&consultantType, "type", "Consulente", "consultant specialization")
	flag.Parse()

	cfg := config.Load()
	log := logger.NewIsolatedLogger("logs/copilot-client.log")

	api := httpclient.New(httpclient.Options{
		BaseURL:    *baseURL,
		Timeout:    60 * time.Second,
		MaxRetries: 3,
	})
	api.Use(&httpclient.BearerInterceptor{Token: *token})

	// Start the session
	var startEnvelope struct {
		Data dto.StartSessionResponse `json:"data"`
	}
	err := api.PostJSON(context.Background(), "/api/copilot/v1/start-session", dto.StartSessionRequest{
		ConsultantType: consultantType,
		ClientInfo:     *clientInfo,
	}, &startEnvelope)
	if err != nil {
		errColor.Printf("Impossibile avviare la sessione: %v\n", err)
		os.Exit(1)
	}
	sessionId := startEnvelope.Data.SessionId
	titleColor.Printf("Sessione avviata: %s\n", sessionId)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Capture + chunking
	device := audio.NewMalgoDevice(cfg.Ai.SpeechSampleRate)
	chunker := audio.NewChunker(device, audio.ChunkerConfig{
		SampleRate: cfg.Ai.SpeechSampleRate,
	}, log)

	go func() {
		if err := chunker.Run(ctx); err != nil {
			errColor.Printf("Errore di acquisizione audio: %v\n", err)
			cancel()
		}
	}()

	// Single consumer loop: one chunk fully processed at a time.
	pipe := pipeline.New(&apiBackend{client: api}, terminalSink{}, sessionId, log)
	done := make(chan struct{})
	go func() {
		pipe.Run(ctx, chunker.Chunks())
		close(done)
	}()

	// p/r pause and resume capture, mirrored to the backend so paused
	// utterances get flagged if the mic keeps delivering.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			switch scanner.Text() {
			case "p":
				chunker.Pause()
				if err := api.PostJSON(ctx, "/api/copilot/v1/pause-session", dto.PauseSessionRequest{SessionId: sessionId}, nil); err != nil {
					errColor.Printf("Pausa non riuscita: %v\n", err)
					continue
				}
				titleColor.Println("⏸  In pausa (r per riprendere)")
			case "r":
				chunker.Resume()
				if err := api.PostJSON(ctx, "/api/copilot/v1/resume-session", dto.ResumeSessionRequest{SessionId: sessionId}, nil); err != nil {
					errColor.Printf("Ripresa non riuscita: %v\n", err)
					continue
				}
				titleColor.Println("▶  Registrazione ripresa")
			}
		}
	}()

	// Ctrl-C ends the session cleanly.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	titleColor.Println("\nChiusura sessione...")
	cancel()
	<-done
	api.CancelAll()

	endCtx, endCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer endCancel()

	var endEnvelope struct {
		Data dto.EndSessionResponse `json:"data"`
	}
	endClient := httpclient.New(httpclient.Options{BaseURL: *baseURL, Timeout: 2 * time.Minute})
	endClient.Use(&httpclient.BearerInterceptor{Token: *token})
	err = endClient.PostJSON(endCtx, "/api/copilot/v1/end-session", dto.EndSessionRequest{
		SessionId: sessionId,
	}, &endEnvelope)
	if err != nil {
		errColor.Printf("Errore durante la chiusura: %v\n", err)
		os.Exit(1)
	}

	titleColor.Printf("Report disponibile: %s\n", endEnvelope.Data.ReportURL)
}
