package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/noxus/internal/common"
	"github.com/dmitrijs2005/noxus/internal/dbx"
	"github.com/dmitrijs2005/noxus/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"
	columns         = "id, start_date, current_level, has_onboarded, avatar_url, email, updated_at"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scan(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(&p.ID, &p.StartDate, &p.CurrentLevel, &p.HasOnboarded, &p.AvatarURL, &p.Email, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + columns + ` FROM profiles WHERE id = $1`
	return scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Insert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (id, start_date, current_level, has_onboarded, avatar_url, email, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING ` + columns

	return scan(r.db.QueryRowContext(ctx, query,
		p.ID, p.StartDate, p.CurrentLevel, p.HasOnboarded, p.AvatarURL, p.Email))
}

// Upsert writes every progress column. avatar_url is only overwritten by a
// non-empty value so a stale client cannot clear an uploaded avatar.
func (r *PostgresRepository) Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (id, start_date, current_level, has_onboarded, avatar_url, email, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			current_level = EXCLUDED.current_level,
			has_onboarded = EXCLUDED.has_onboarded,
			avatar_url = COALESCE(NULLIF(EXCLUDED.avatar_url, ''), profiles.avatar_url),
			email = EXCLUDED.email,
			updated_at = now()
		RETURNING ` + columns

	return scan(r.db.QueryRowContext(ctx, query,
		p.ID, p.StartDate, p.CurrentLevel, p.HasOnboarded, p.AvatarURL, p.Email))
}

func (r *PostgresRepository) SetAvatar(ctx context.Context, id, url string) (*models.Profile, error) {
	query := `
		UPDATE profiles SET avatar_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + columns

	return scan(r.db.QueryRowContext(ctx, query, id, url))
}
