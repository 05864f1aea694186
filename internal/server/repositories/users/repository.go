// Package users declares the server-side repository contract for accounts
// and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/noxus/internal/server/models"
)

type Repository interface {
	// Create inserts user; a taken email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
