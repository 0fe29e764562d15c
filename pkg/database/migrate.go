package database

import (
	"gorm.io/gorm"

	"ai-copilot-be/internal/entity"
)

// Migrate creates/updates the meeting-domain tables. Live sessions never
// touch the database; only clients, meetings and their reports persist.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Client{},
		&entity.Meeting{},
		&entity.MeetingReport{},
	)
}
