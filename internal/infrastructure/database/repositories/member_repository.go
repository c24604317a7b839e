package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/repositories"
)

type memberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) repositories.MemberRepository {
	return &memberRepository{pool: pool}
}

const memberColumns = `dm.id, p.id, COALESCE(p.username, ''), COALESCE(p.avatar_url, ''), dm.role`

func (r *memberRepository) ListByDocument(ctx context.Context, documentID string) ([]entities.Member, int, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM documents_members dm
		JOIN profiles p ON p.id = dm.user_id
		WHERE dm.document_id = $1
		ORDER BY dm.added_at ASC`, memberColumns)

	rows, err := r.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	members, err := scanMembers(rows)
	if err != nil {
		return nil, 0, err
	}

	return members, len(members), nil
}

func (r *memberRepository) TeamByDocument(ctx context.Context, documentID string, limit int) ([]entities.Member, int, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM documents_members dm
		JOIN profiles p ON p.id = dm.user_id
		WHERE dm.document_id = $1
		ORDER BY dm.added_at ASC
		LIMIT $2`, memberColumns)

	rows, err := r.pool.Query(ctx, query, documentID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	members, err := scanMembers(rows)
	if err != nil {
		return nil, 0, err
	}

	var count int
	countQuery := `SELECT COUNT(*) FROM documents_members WHERE document_id = $1`
	if err := r.pool.QueryRow(ctx, countQuery, documentID).Scan(&count); err != nil {
		return nil, 0, err
	}

	return members, count, nil
}

func (r *memberRepository) TeamByProject(ctx context.Context, projectID, ownerID string, limit int) ([]entities.Member, int, error) {
	// One row per user: a member granted on several documents of the
	// project shows up once. The owner is left out; callers prepend them.
	query := fmt.Sprintf(`SELECT DISTINCT ON (dm.user_id) %s
		FROM documents_members dm
		JOIN profiles p ON p.id = dm.user_id
		WHERE dm.project_id = $1 AND dm.user_id <> $2
		ORDER BY dm.user_id, dm.added_at ASC
		LIMIT $3`, memberColumns)

	rows, err := r.pool.Query(ctx, query, projectID, ownerID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	members, err := scanMembers(rows)
	if err != nil {
		return nil, 0, err
	}

	var count int
	countQuery := `SELECT COUNT(DISTINCT user_id) FROM documents_members
		WHERE project_id = $1 AND user_id <> $2`
	if err := r.pool.QueryRow(ctx, countQuery, projectID, ownerID).Scan(&count); err != nil {
		return nil, 0, err
	}

	return members, count, nil
}

func (r *memberRepository) ProjectIDsForUser(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT DISTINCT project_id FROM documents_members
		WHERE user_id = $1 ORDER BY project_id ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *memberRepository) HasDocumentAccess(ctx context.Context, documentID, userID string) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM documents_members WHERE document_id = $1 AND user_id = $2
	)`

	var hasAccess bool
	err := r.pool.QueryRow(ctx, query, documentID, userID).Scan(&hasAccess)
	return hasAccess, err
}

func (r *memberRepository) RoleForUser(ctx context.Context, documentID, userID string) (entities.Role, error) {
	query := `SELECT role FROM documents_members WHERE document_id = $1 AND user_id = $2`

	var role entities.Role
	err := r.pool.QueryRow(ctx, query, documentID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return role, nil
}

func (r *memberRepository) InsertBulk(ctx context.Context, grants []entities.Grant) ([]entities.Member, error) {
	if len(grants) == 0 {
		return nil, nil
	}

	values := make([]string, 0, len(grants))
	args := make([]any, 0, len(grants)*4)
	argIndex := 1
	for _, g := range grants {
		values = append(values, fmt.Sprintf("(gen_random_uuid(), $%d, $%d, $%d, $%d, NOW())",
			argIndex, argIndex+1, argIndex+2, argIndex+3))
		args = append(args, g.DocumentID, g.ProjectID, g.UserID, g.Role)
		argIndex += 4
	}

	query := fmt.Sprintf(`WITH inserted AS (
			INSERT INTO documents_members (id, document_id, project_id, user_id, role, added_at)
			VALUES %s
			RETURNING id, user_id, role
		)
		SELECT i.id, p.id, COALESCE(p.username, ''), COALESCE(p.avatar_url, ''), i.role
		FROM inserted i
		JOIN profiles p ON p.id = i.user_id`, strings.Join(values, ", "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMembers(rows)
}

func (r *memberRepository) UpdateRoles(ctx context.Context, changes []entities.RoleChange) error {
	if len(changes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, change := range changes {
		batch.Queue(`UPDATE documents_members SET role = $1 WHERE id = $2`, change.Role, change.Ref)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range changes {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}

func (r *memberRepository) DeleteByRefs(ctx context.Context, refs []string) error {
	if len(refs) == 0 {
		return nil
	}

	query := `DELETE FROM documents_members WHERE id = ANY($1)`
	_, err := r.pool.Exec(ctx, query, refs)
	return err
}

func scanMembers(rows pgx.Rows) ([]entities.Member, error) {
	var members []entities.Member
	for rows.Next() {
		var m entities.Member
		if err := rows.Scan(&m.Ref, &m.ID, &m.Username, &m.AvatarURL, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
