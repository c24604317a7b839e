package repositories

import (
	"context"
	"time"

	"github.com/anjerodev/dotenv/internal/domain/entities"
)

// HistoryRepository is the append-only revision log. Implementations
// encrypt content at rest; Latest returns it decrypted, which is why
// the repository is only ever constructed server-side.
type HistoryRepository interface {
	Append(ctx context.Context, entry *entities.HistoryEntry) error
	Latest(ctx context.Context, documentID string) (*entities.HistoryEntry, error)
	LatestUpdatedAt(ctx context.Context, documentID string) (time.Time, error)
}
