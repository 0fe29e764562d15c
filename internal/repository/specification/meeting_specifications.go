package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedByConsultant filters meetings by the owning consultant.
type OwnedByConsultant struct {
	ConsultantId uuid.UUID
}

func (s OwnedByConsultant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("consultant_id = ?", s.ConsultantId)
}

// WithoutReport selects meetings that have no report attached yet.
type WithoutReport struct{}

func (s WithoutReport) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id NOT IN (?)", db.Session(&gorm.Session{NewDB: true}).
		Table("meeting_reports").Select("meeting_id"))
}

// ByVatNumber filters clients by fiscal code / VAT number.
type ByVatNumber struct {
	VatNumber string
}

func (s ByVatNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("vat_number = ?", s.VatNumber)
}

// ByMeetingId filters reports by the owning meeting.
type ByMeetingId struct {
	MeetingId uuid.UUID
}

func (s ByMeetingId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("meeting_id = ?", s.MeetingId)
}
