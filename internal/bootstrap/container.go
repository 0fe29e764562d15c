package bootstrap

import (
	"context"
	"log"

	"ai-copilot-be/internal/config"
	"ai-copilot-be/internal/controller"
	"ai-copilot-be/internal/pkg/logger"
	"ai-copilot-be/internal/pkg/mailer"
	"ai-copilot-be/internal/repository/implementation"
	"ai-copilot-be/internal/repository/memory"
	"ai-copilot-be/internal/service"
	"ai-copilot-be/internal/websocket"
	"ai-copilot-be/pkg/ai/insight"
	"ai-copilot-be/pkg/ai/orchestrator"
	"ai-copilot-be/pkg/ai/prompt"
	"ai-copilot-be/pkg/events"
	"ai-copilot-be/pkg/llm/factory"
	"ai-copilot-be/pkg/report"
	"ai-copilot-be/pkg/session"
	"ai-copilot-be/pkg/transcribe"
	"ai-copilot-be/pkg/websearch"

	pktNats "ai-copilot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	CopilotController controller.ICopilotController
	MeetingController controller.IMeetingController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub

	// Exposed for graceful shutdown
	SessionManager *session.Manager
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS (optional mirror of session events for external consumers)
	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
			natsSub = nil
		}
	}

	// Redis (cross-instance websocket fan-out)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Mirror the report-ready event back to any browser still watching the
	// session. Durable consumer so a restart does not drop notifications.
	if natsSub != nil {
		err := natsSub.Subscribe("copilot."+events.TypeSessionEnded, "report-ready-push", func(ctx context.Context, event events.Event) error {
			payload := event.Payload()
			sessionId, _ := payload["sessionId"].(string)
			if sessionId == "" {
				return nil
			}
			wsHub.PublishTyped(sessionId, "report_ready", map[string]interface{}{
				"reportId":  payload["reportId"],
				"meetingId": payload["meetingId"],
			})
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to session events: %v", err)
		}
	}

	// 3. AI Stack
	aiOrchestrator := orchestrator.New(cfg.Ai.DefaultProvider, cfg.Ai.CompletionTimeout, sysLogger)
	for name, key := range map[string]string{
		"gemini":   cfg.Keys.Gemini,
		"deepseek": cfg.Keys.DeepSeek,
		"openai":   cfg.Keys.OpenAI,
	} {
		provider, err := factory.NewProvider(name, cfg.Keys, cfg.Ai)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider %s: %v", name, err)
		}
		aiOrchestrator.Register(name, provider, key != "")
	}
	log.Printf("[INFO] Default LLM Provider: %s", cfg.Ai.DefaultProvider)

	transcriber := transcribe.NewGoogleTranscriber(
		cfg.Keys.GoogleSpeech,
		cfg.Ai.SpeechLanguage,
		cfg.Ai.SpeechSampleRate,
		cfg.Ai.SpeechTimeout,
		sysLogger,
	)

	normalizer := websearch.NewNormalizer(cfg.Search.AugmentationTerms, cfg.Search.FallbackQuery)
	googleSearch := websearch.NewGoogleClient(cfg.Keys.GoogleSearch, cfg.Keys.GoogleSearchCx, cfg.Search.Timeout, sysLogger)
	cachedSearch := websearch.NewCachedClient(googleSearch, cfg.Search.CacheTTL, sysLogger)

	extractor := insight.NewExtractor(sysLogger)

	// 4. Session + Persistence
	sessionStore := memory.NewSessionStore(cfg.Session.TTL)
	sessionManager := session.NewManager(sessionStore, prompt.RecognizedTypes(), cfg.Session.MaxDuration, sysLogger)

	clientRepo := implementation.NewClientRepository(db)
	meetingRepo := implementation.NewMeetingRepository(db)
	reportRepo := implementation.NewReportRepository(db)

	synthesizer := report.NewSynthesizer(
		aiOrchestrator,
		extractor,
		meetingRepo,
		reportRepo,
		cfg.App.BaseURL,
		sysLogger,
	)

	// 5. Services
	copilotService := service.NewCopilotService(
		sessionManager,
		transcriber,
		aiOrchestrator,
		normalizer,
		cachedSearch,
		extractor,
		synthesizer,
		reportRepo,
		pubSub,
		cfg.Keys.SessionEventsTopic,
		wsHub,
		sysLogger,
	)
	meetingService := service.NewMeetingService(clientRepo, meetingRepo, sysLogger)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.SessionEventsTopic,
		emailService,
		cfg.SMTP.NotifyEmail,
		natsPub,
	)

	// 6. Controllers
	return &Container{
		CopilotController: controller.NewCopilotController(copilotService),
		MeetingController: controller.NewMeetingController(meetingService),
		ConsumerService:   consumerService,
		WebSocketHub:      wsHub,
		SessionManager:    sessionManager,
	}
}
