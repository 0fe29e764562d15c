package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/entity"
	"ai-copilot-be/internal/pkg/logger"
	"ai-copilot-be/internal/repository/contract"
	"ai-copilot-be/internal/repository/specification"
)

type IMeetingService interface {
	FindClientByVat(ctx context.Context, req *dto.FindClientRequest) (*dto.ClientDTO, error)
	CreateClient(ctx context.Context, req *dto.CreateClientRequest) (*dto.ClientDTO, error)
	StoreMeeting(ctx context.Context, consultantId uuid.UUID, req *dto.StoreMeetingRequest) (*dto.StoreMeetingResponse, error)
}

type meetingService struct {
	clients  contract.ClientRepository
	meetings contract.MeetingRepository
	log      logger.ILogger
}

func NewMeetingService(clients contract.ClientRepository, meetings contract.MeetingRepository, log logger.ILogger) IMeetingService {
	return &meetingService{clients: clients, meetings: meetings, log: log}
}

func (s *meetingService) FindClientByVat(ctx context.Context, req *dto.FindClientRequest) (*dto.ClientDTO, error) {
	client, err := s.clients.FindOne(ctx, specification.ByVatNumber{VatNumber: req.VatNumber})
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	if client == nil {
		return nil, dto.ErrClientNotFound
	}
	return toClientDTO(client), nil
}

func (s *meetingService) CreateClient(ctx context.Context, req *dto.CreateClientRequest) (*dto.ClientDTO, error) {
	// Re-registering a known fiscal code returns the existing record.
	existing, err := s.clients.FindOne(ctx, specification.ByVatNumber{VatNumber: req.VatNumber})
	if err != nil {
		return nil, fmt.Errorf("check existing client: %w", err)
	}
	if existing != nil {
		return toClientDTO(existing), nil
	}

	client := &entity.Client{
		Id:          uuid.New(),
		CompanyName: req.CompanyName,
		VatNumber:   req.VatNumber,
		Email:       req.Email,
		Sector:      req.Sector,
		Address:     req.Address,
		CreatedAt:   time.Now(),
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.Info("MeetingService", "Client created", map[string]interface{}{
		"client_id": client.Id.String(),
	})
	return toClientDTO(client), nil
}

func (s *meetingService) StoreMeeting(ctx context.Context, consultantId uuid.UUID, req *dto.StoreMeetingRequest) (*dto.StoreMeetingResponse, error) {
	client, err := s.clients.FindOne(ctx, specification.ByID{ID: req.ClientId})
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	if client == nil {
		return nil, dto.ErrClientNotFound
	}

	sector := req.ClientSector
	if sector == "" {
		sector = client.Sector
	}

	meeting := &entity.Meeting{
		Id:           uuid.New(),
		ClientId:     client.Id,
		ConsultantId: consultantId,
		MeetingType:  req.MeetingType,
		ClientSector: sector,
		CreatedAt:    time.Now(),
	}
	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	s.log.Info("MeetingService", "Meeting stored", map[string]interface{}{
		"meeting_id": meeting.Id.String(),
		"client_id":  client.Id.String(),
	})
	return &dto.StoreMeetingResponse{MeetingId: meeting.Id}, nil
}

func toClientDTO(c *entity.Client) *dto.ClientDTO {
	return &dto.ClientDTO{
		Id:          c.Id,
		CompanyName: c.CompanyName,
		VatNumber:   c.VatNumber,
		Email:       c.Email,
		Sector:      c.Sector,
		Address:     c.Address,
		CreatedAt:   c.CreatedAt,
	}
}
