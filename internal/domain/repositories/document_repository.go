package repositories

import (
	"context"

	"github.com/anjerodev/dotenv/internal/domain/entities"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entities.Document) error
	GetByID(ctx context.Context, id string) (*entities.Document, error)
	// GetForMember returns the project documents the given user holds a
	// grant for, ordered by creation time.
	GetForMember(ctx context.Context, projectID, userID string) ([]*entities.Document, error)
	Summaries(ctx context.Context, projectID string) ([]entities.DocumentSummary, error)
	NameExists(ctx context.Context, projectID, name string) (bool, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	// DeleteByIDs removes only documents that belong to the given
	// project; ids from other projects are ignored.
	DeleteByIDs(ctx context.Context, projectID string, ids []string) error
	CountByProject(ctx context.Context, projectID string) (int, error)
}
