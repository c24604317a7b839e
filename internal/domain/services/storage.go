package services

import (
	"context"
	"io"

	"github.com/anjerodev/dotenv/internal/domain/entities"
)

type AvatarStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

// resolveAvatars swaps stored object keys for public URLs before
// members leave the API.
func resolveAvatars(storage AvatarStorage, members []entities.Member) {
	for i := range members {
		if members[i].AvatarURL != "" {
			members[i].AvatarURL = storage.PublicURL(members[i].AvatarURL)
		}
	}
}
