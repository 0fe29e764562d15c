package factory

import (
	"fmt"

	"ai-copilot-be/internal/config"
	"ai-copilot-be/pkg/llm"
	"ai-copilot-be/pkg/llm/deepseek"
	"ai-copilot-be/pkg/llm/gemini"
	"ai-copilot-be/pkg/llm/openai"
)

// NewProvider builds the adapter for a single provider name. The credential
// may be empty; availability is the orchestrator's concern.
func NewProvider(name string, keys config.APIKeys, ai config.AIConfig) (llm.Provider, error) {
	switch name {
	case "gemini":
		return gemini.NewGeminiProvider(keys.Gemini, ai.GeminiModel), nil
	case "deepseek":
		return deepseek.NewDeepSeekProvider(keys.DeepSeek, ai.DeepSeekModel), nil
	case "openai":
		return openai.NewOpenAIProvider(keys.OpenAI, ai.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", name)
	}
}
