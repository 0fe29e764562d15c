package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-copilot-be/internal/pkg/mailer"
	"ai-copilot-be/pkg/events"
	natsbus "ai-copilot-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// sessionEventPayload is the shape every session event shares on the bus.
type sessionEventPayload struct {
	Event     string `json:"event"`
	SessionId string `json:"sessionId"`
	ReportId  string `json:"reportId"`
	MeetingId string `json:"meetingId"`
	ReportURL string `json:"reportUrl"`
}

type consumerService struct {
	pubSub          *gochannel.GoChannel
	topicName       string
	emailService    mailer.IEmailService
	notifyEmail     string
	mirrorPublisher *natsbus.Publisher
}

// NewConsumerService wires the in-process event bus to its side effects:
// report-ready email and an optional NATS mirror for external consumers.
// mirrorPublisher may be nil when NATS is disabled.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
	notifyEmail string,
	mirrorPublisher *natsbus.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:          pubSub,
		topicName:       topicName,
		emailService:    emailService,
		notifyEmail:     notifyEmail,
		mirrorPublisher: mirrorPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload sessionEventPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal session event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing session event %s for %s", payload.Event, payload.SessionId)

	if payload.Event == events.TypeSessionEnded && cs.emailService != nil && cs.notifyEmail != "" {
		if err := cs.emailService.SendReportReady(cs.notifyEmail, payload.ReportURL); err != nil {
			log.Printf("[ERROR] Failed to send report notification: %v", err)
			// Email is best-effort; do not redeliver the whole event for it.
		}
	}

	if cs.mirrorPublisher != nil {
		var event events.Event
		switch payload.Event {
		case events.TypeSessionEnded:
			event = events.NewSessionEnded(payload.SessionId, payload.ReportId, payload.MeetingId)
		case events.TypeReportGenerated:
			event = events.NewReportGenerated(payload.ReportId, payload.MeetingId, payload.ReportURL)
		default:
			event = events.BaseEvent{
				Type:       payload.Event,
				Data:       map[string]interface{}{"sessionId": payload.SessionId},
				OccurredAt: time.Now(),
			}
		}
		if err := cs.mirrorPublisher.Publish(ctx, event); err != nil {
			log.Printf("[ERROR] Failed to mirror event to NATS: %v", err)
		}
	}

	msg.Ack()
}
