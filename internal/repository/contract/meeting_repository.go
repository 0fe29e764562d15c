package contract

import (
	"context"

	"ai-copilot-be/internal/entity"
	"ai-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MeetingRepository interface {
	Create(ctx context.Context, meeting *entity.Meeting) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Meeting, error)
	// FindLatestWithoutReport returns the consultant's most recent meeting
	// that has no report attached, or nil when there is none.
	FindLatestWithoutReport(ctx context.Context, consultantId uuid.UUID) (*entity.Meeting, error)
}
