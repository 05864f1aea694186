// Package profiles stores the per-user progress rows.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/noxus/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	// Insert fails with common.ErrorAlreadyExists when the row exists.
	Insert(ctx context.Context, p *models.Profile) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error)
	SetAvatar(ctx context.Context, id, url string) (*models.Profile, error)
}
