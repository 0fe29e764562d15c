package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Session  SessionConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	// NotifyEmail receives the report-ready notification; empty disables it.
	NotifyEmail string
}

type APIKeys struct {
	Gemini             string
	DeepSeek           string
	OpenAI             string
	GoogleSpeech       string
	GoogleSearch       string
	GoogleSearchCx     string
	SessionEventsTopic string
}

type AIConfig struct {
	DefaultProvider   string // "gemini", "deepseek" or "openai"
	GeminiModel       string
	DeepSeekModel     string
	OpenAIModel       string
	CompletionTimeout time.Duration
	SpeechLanguage    string
	SpeechSampleRate  int
	SpeechTimeout     time.Duration
}

type SessionConfig struct {
	TTL         time.Duration // cache lifetime of a live session
	MaxDuration time.Duration // hard forced-end ceiling
}

type SearchConfig struct {
	Timeout           time.Duration
	CacheTTL          time.Duration
	AugmentationTerms string
	FallbackQuery     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Email:       getEnv("SMTP_EMAIL", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderName:  getEnv("SMTP_SENDER_NAME", "Co-Pilota Pro"),
			NotifyEmail: getEnv("REPORT_NOTIFY_EMAIL", ""),
		},
		Keys: APIKeys{
			Gemini:             getEnv("GEMINI_API_KEY", ""),
			DeepSeek:           getEnv("DEEPSEEK_API_KEY", ""),
			OpenAI:             getEnv("OPENAI_API_KEY", ""),
			GoogleSpeech:       getEnv("GOOGLE_SPEECH_API_KEY", ""),
			GoogleSearch:       getEnv("GOOGLE_SEARCH_API_KEY", ""),
			GoogleSearchCx:     getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),
			SessionEventsTopic: getEnv("SESSION_EVENTS_TOPIC_NAME", "SESSION_EVENTS"),
		},
		Ai: AIConfig{
			DefaultProvider:   getEnv("LLM_PROVIDER", "gemini"),
			GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
			DeepSeekModel:     getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4"),
			CompletionTimeout: getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			SpeechLanguage:    getEnv("SPEECH_LANGUAGE_CODE", "it-IT"),
			SpeechSampleRate:  getEnvAsInt("SPEECH_SAMPLE_RATE", 16000),
			SpeechTimeout:     getEnvAsDuration("SPEECH_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			TTL:         getEnvAsDuration("SESSION_TTL", 2*time.Hour),
			MaxDuration: getEnvAsDuration("SESSION_MAX_DURATION", 4*time.Hour),
		},
		Search: SearchConfig{
			Timeout:           getEnvAsDuration("SEARCH_TIMEOUT", 15*time.Second),
			CacheTTL:          getEnvAsDuration("SEARCH_CACHE_TTL", 2*time.Hour),
			AugmentationTerms: getEnv("SEARCH_AUGMENTATION_TERMS", "bando OR finanziamento OR agevolazioni"),
			FallbackQuery:     getEnv("SEARCH_FALLBACK_QUERY", "bandi e finanziamenti PMI"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
