package entity

import (
	"time"

	"github.com/google/uuid"
)

type Meeting struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientId     uuid.UUID `gorm:"type:uuid;index"`
	ConsultantId uuid.UUID `gorm:"type:uuid;index"`
	MeetingType  string
	ClientSector string
	CreatedAt    time.Time
}
