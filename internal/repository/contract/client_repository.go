package contract

import (
	"context"

	"ai-copilot-be/internal/entity"
	"ai-copilot-be/internal/repository/specification"
)

type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Client, error)
}
