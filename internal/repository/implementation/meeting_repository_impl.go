package implementation

import (
	"context"
	"errors"

	"ai-copilot-be/internal/entity"
	"ai-copilot-be/internal/repository/contract"
	"ai-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MeetingRepositoryImpl struct {
	db *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) contract.MeetingRepository {
	return &MeetingRepositoryImpl{db: db}
}

func (r *MeetingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MeetingRepositoryImpl) Create(ctx context.Context, meeting *entity.Meeting) error {
	if meeting.Id == uuid.Nil {
		meeting.Id = uuid.New()
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

func (r *MeetingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Meeting, error) {
	var m entity.Meeting
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MeetingRepositoryImpl) FindLatestWithoutReport(ctx context.Context, consultantId uuid.UUID) (*entity.Meeting, error) {
	return r.FindOne(ctx,
		specification.OwnedByConsultant{ConsultantId: consultantId},
		specification.WithoutReport{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}
