package repositories

import (
	"context"

	"github.com/anjerodev/dotenv/internal/domain/entities"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entities.Project) error
	GetByID(ctx context.Context, id string) (*entities.Project, error)
	GetOwnedBy(ctx context.Context, userID string) ([]*entities.Project, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Project, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}
