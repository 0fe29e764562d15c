package dto

import (
	"time"

	"github.com/google/uuid"
)

type FindClientRequest struct {
	VatNumber string `json:"codice_fiscale_partita_iva" validate:"required,max=255"`
}

type ClientDTO struct {
	Id          uuid.UUID `json:"id"`
	CompanyName string    `json:"nome_azienda"`
	VatNumber   string    `json:"codice_fiscale_partita_iva"`
	Email       string    `json:"email,omitempty"`
	Sector      string    `json:"settore_attivita,omitempty"`
	Address     string    `json:"indirizzo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateClientRequest struct {
	CompanyName string `json:"nome_azienda" validate:"required,max=255"`
	VatNumber   string `json:"codice_fiscale_partita_iva" validate:"required,max=255"`
	Email       string `json:"email" validate:"omitempty,email"`
	Sector      string `json:"settore_attivita" validate:"max=255"`
	Address     string `json:"indirizzo" validate:"max=255"`
}

type StoreMeetingRequest struct {
	ClientId     uuid.UUID `json:"id_cliente" validate:"required"`
	MeetingType  string    `json:"tipo_meeting" validate:"required,max=100"`
	ClientSector string    `json:"settore_cliente" validate:"max=255"`
}

type StoreMeetingResponse struct {
	MeetingId uuid.UUID `json:"meetingId"`
}
