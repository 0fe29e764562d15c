package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingReport is the persisted outcome of a co-pilot session. There is at
// most one report per meeting; end-of-session re-runs update it in place.
type MeetingReport struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	MeetingId        uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	FullTranscript   string
	Summary          string
	GeneratedTasks   datatypes.JSON
	ConsultantNotes  datatypes.JSON
	WebResults       datatypes.JSON
	ActionableAdvice datatypes.JSON
	KeyInsights      datatypes.JSON
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}
