package contract

import (
	"context"

	"ai-copilot-be/internal/entity"

	"github.com/google/uuid"
)

type ReportRepository interface {
	// Upsert creates the report for its meeting, or updates it in place when
	// one already exists. Repeated end-of-session calls must not duplicate.
	Upsert(ctx context.Context, report *entity.MeetingReport) error
	FindByMeetingId(ctx context.Context, meetingId uuid.UUID) (*entity.MeetingReport, error)
}
