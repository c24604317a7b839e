package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/repositories"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repositories.ProfileRepository {
	return &profileRepository{db: db}
}

type profileRow struct {
	ID        string `db:"id"`
	Username  string `db:"username"`
	Website   string `db:"website"`
	AvatarKey string `db:"avatar_url"`
}

func (row profileRow) toEntity() entities.Profile {
	return entities.Profile{
		ID:        row.ID,
		Username:  row.Username,
		Website:   row.Website,
		AvatarKey: row.AvatarKey,
	}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*entities.Profile, error) {
	query := `SELECT id, COALESCE(username, '') AS username, COALESCE(website, '') AS website,
			COALESCE(avatar_url, '') AS avatar_url
		FROM profiles WHERE id = $1`

	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}

	profile := row.toEntity()
	return &profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *entities.Profile) error {
	query := `INSERT INTO profiles (id, username, website, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NOW())
		ON CONFLICT (id) DO UPDATE SET
			username = COALESCE(NULLIF(EXCLUDED.username, ''), profiles.username),
			website = COALESCE(NULLIF(EXCLUDED.website, ''), profiles.website),
			updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query, profile.ID, profile.Username, profile.Website)
	return err
}

func (r *profileRepository) SetAvatar(ctx context.Context, id, key string) error {
	query := `UPDATE profiles SET avatar_url = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, key, id)
	return err
}

func (r *profileRepository) Search(ctx context.Context, excludeID, username, email string, limit int) ([]entities.Profile, error) {
	query := `SELECT p.id, COALESCE(p.username, '') AS username, COALESCE(p.website, '') AS website,
			COALESCE(p.avatar_url, '') AS avatar_url
		FROM profiles p
		JOIN users u ON u.id = p.id
		WHERE p.id <> $1 AND (p.username ILIKE $2 OR u.email ILIKE $3)
		ORDER BY p.username ASC
		LIMIT $4`

	var rows []profileRow
	err := r.db.SelectContext(ctx, &rows, query, excludeID, "%"+username+"%", "%"+email+"%", limit)
	if err != nil {
		return nil, err
	}

	profiles := make([]entities.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, row.toEntity())
	}

	return profiles, nil
}
