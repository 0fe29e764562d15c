package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ai-copilot-be/internal/pkg/logger"
	"ai-copilot-be/pkg/llm"
)

// Degraded-service strings returned instead of errors when an optional
// backend is unusable, so callers can show a message instead of crashing the
// pipeline.
const (
	DegradedUnsupported  = "Spiacente, tipo di modello AI non supportato."
	DegradedNoCredential = "Spiacente, la chiave API non è configurata."
	DegradedCommFailure  = "Spiacente, si è verificato un errore nella comunicazione con l'AI."
)

// ProviderTimeoutError reports a completion call that exceeded its wall-clock
// budget. Retry policy lives one layer up: blindly re-sending LLM calls risks
// duplicate billable work.
type ProviderTimeoutError struct {
	Provider string
	Timeout  time.Duration
}

func (e *ProviderTimeoutError) Error() string {
	return fmt.Sprintf("provider %s timed out after %s", e.Provider, e.Timeout)
}

var codeFenceRe = regexp.MustCompile("(?s)^```(?:json|text)?\\s*|\\s*```$")

type registered struct {
	provider   llm.Provider
	configured bool
}

// Orchestrator fans a canonical {prompt, temperature, maxTokens} request out
// to one of several interchangeable completion backends.
type Orchestrator struct {
	providers       map[string]registered
	defaultProvider string
	timeout         time.Duration
	log             logger.ILogger
}

func New(defaultProvider string, timeout time.Duration, log logger.ILogger) *Orchestrator {
	return &Orchestrator{
		providers:       make(map[string]registered),
		defaultProvider: defaultProvider,
		timeout:         timeout,
		log:             log,
	}
}

// Register adds a backend under its hint name. configured=false keeps the
// provider selectable but degrades every call instead of sending it.
func (o *Orchestrator) Register(name string, p llm.Provider, configured bool) {
	o.providers[name] = registered{provider: p, configured: configured}
}

// Configured reports whether the hinted provider can actually serve calls.
func (o *Orchestrator) Configured(providerHint string) bool {
	r, ok := o.providers[o.resolve(providerHint)]
	return ok && r.configured
}

func (o *Orchestrator) resolve(providerHint string) string {
	if providerHint == "" {
		return o.defaultProvider
	}
	return providerHint
}

// Complete sends prompt to the hinted backend and returns the cleaned text.
// Unusable backends yield a degraded string with a nil error; only timeouts
// surface as an error.
func (o *Orchestrator) Complete(ctx context.Context, prompt, providerHint string, temperature float64, maxTokens int) (string, error) {
	name := o.resolve(providerHint)

	r, ok := o.providers[name]
	if !ok {
		o.log.Error("AIOrchestrator", "Unknown provider hint", map[string]interface{}{"provider": providerHint})
		return DegradedUnsupported, nil
	}
	if !r.configured {
		o.log.Warn("AIOrchestrator", "Provider credential not configured", map[string]interface{}{"provider": name})
		return DegradedNoCredential, nil
	}

	timeout := o.timeout
	// Small generations get a tighter budget.
	if maxTokens > 0 && maxTokens < 4096 {
		timeout = o.timeout / 2
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	text, err := r.provider.Generate(callCtx, prompt,
		llm.WithTemperature(temperature),
		llm.WithMaxTokens(maxTokens),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			o.log.Error("AIOrchestrator", "Provider call timed out", map[string]interface{}{
				"provider": name,
				"timeout":  timeout.String(),
			})
			return "", &ProviderTimeoutError{Provider: name, Timeout: timeout}
		}
		o.log.Error("AIOrchestrator", "Provider call failed", map[string]interface{}{
			"provider": name,
			"error":    err.Error(),
		})
		return DegradedCommFailure, nil
	}

	o.log.Info("AIOrchestrator", "Completion served", map[string]interface{}{
		"provider":    name,
		"elapsed_ms":  time.Since(started).Milliseconds(),
		"prompt_size": len(prompt),
	})

	return CleanOutput(text), nil
}

// CleanOutput strips the markdown code fences providers sometimes wrap JSON in.
func CleanOutput(text string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(strings.TrimSpace(text), ""))
}

// IsDegraded reports whether text is one of the degraded-service strings.
func IsDegraded(text string) bool {
	switch text {
	case DegradedUnsupported, DegradedNoCredential, DegradedCommFailure:
		return true
	}
	return false
}
