package implementation

import (
	"context"
	"errors"
	"time"

	"ai-copilot-be/internal/entity"
	"ai-copilot-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepositoryImpl struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) contract.ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

func (r *ReportRepositoryImpl) Upsert(ctx context.Context, report *entity.MeetingReport) error {
	if report.Id == uuid.Nil {
		report.Id = uuid.New()
	}
	now := time.Now()
	report.UpdatedAt = &now

	// Conflict on meeting_id keeps the report unique per meeting.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "meeting_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_transcript", "summary", "generated_tasks", "consultant_notes",
			"web_results", "actionable_advice", "key_insights", "updated_at",
		}),
	}).Create(report).Error
}

func (r *ReportRepositoryImpl) FindByMeetingId(ctx context.Context, meetingId uuid.UUID) (*entity.MeetingReport, error) {
	var report entity.MeetingReport
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingId).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}
