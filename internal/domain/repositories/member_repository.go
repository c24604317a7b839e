package repositories

import (
	"context"

	"github.com/anjerodev/dotenv/internal/domain/entities"
)

type MemberRepository interface {
	// ListByDocument returns the full grant list with profile data,
	// ordered by added_at, plus the true count.
	ListByDocument(ctx context.Context, documentID string) ([]entities.Member, int, error)
	// TeamByDocument and TeamByProject return a capped preview plus the
	// true count. TeamByProject collapses a user's grants across
	// documents to one entry and leaves the owner out entirely; callers
	// prepend the owner themselves.
	TeamByDocument(ctx context.Context, documentID string, limit int) ([]entities.Member, int, error)
	TeamByProject(ctx context.Context, projectID, ownerID string, limit int) ([]entities.Member, int, error)
	// ProjectIDsForUser returns the distinct project ids the user holds
	// at least one grant in, ordered.
	ProjectIDsForUser(ctx context.Context, userID string) ([]string, error)
	HasDocumentAccess(ctx context.Context, documentID, userID string) (bool, error)
	// RoleForUser returns the user's role on the document, or the empty
	// role when they hold no grant.
	RoleForUser(ctx context.Context, documentID, userID string) (entities.Role, error)
	InsertBulk(ctx context.Context, grants []entities.Grant) ([]entities.Member, error)
	UpdateRoles(ctx context.Context, changes []entities.RoleChange) error
	DeleteByRefs(ctx context.Context, refs []string) error
}
