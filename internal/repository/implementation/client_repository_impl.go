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

type ClientRepositoryImpl struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) contract.ClientRepository {
	return &ClientRepositoryImpl{db: db}
}

func (r *ClientRepositoryImpl) Create(ctx context.Context, client *entity.Client) error {
	if client.Id == uuid.Nil {
		client.Id = uuid.New()
	}
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Client, error) {
	var c entity.Client
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
