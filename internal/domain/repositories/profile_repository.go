package repositories

import (
	"context"

	"github.com/anjerodev/dotenv/internal/domain/entities"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Profile, error)
	Upsert(ctx context.Context, profile *entities.Profile) error
	SetAvatar(ctx context.Context, id, key string) error
	// Search matches profiles by username or account email, excluding
	// the searching user.
	Search(ctx context.Context, excludeID, username, email string, limit int) ([]entities.Profile, error)
}
