package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/noxus/internal/common"
	"github.com/dmitrijs2005/noxus/internal/server/models"
	"github.com/dmitrijs2005/noxus/internal/server/repositories/repomanager"
)

// ProfileService reads and writes profile rows. Every call is scoped to
// the authenticated caller: a profile id must equal the caller's user id.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

func checkOwner(callerID, profileID string) error {
	if callerID == "" {
		return common.ErrorUnauthorized
	}
	if profileID != callerID {
		return common.ErrorForbidden
	}
	return nil
}

// prepare checks ownership and the required columns. updated_at is
// stamped by the repository.
func prepare(callerID string, p *models.Profile) error {
	if err := checkOwner(callerID, p.ID); err != nil {
		return err
	}
	p.CurrentLevel = strings.TrimSpace(p.CurrentLevel)
	if p.CurrentLevel == "" {
		return fmt.Errorf("%w: current level is required", common.ErrorValidation)
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", common.ErrorValidation)
	}
	return nil
}

func (s *ProfileService) Get(ctx context.Context, callerID, id string) (*models.Profile, error) {
	if err := checkOwner(callerID, id); err != nil {
		return nil, err
	}
	return s.repomanager.Profiles(s.db).Get(ctx, id)
}

func (s *ProfileService) Insert(ctx context.Context, callerID string, p *models.Profile) (*models.Profile, error) {
	if err := prepare(callerID, p); err != nil {
		return nil, err
	}
	return s.repomanager.Profiles(s.db).Insert(ctx, p)
}

// Upsert writes p by id. An empty AvatarURL keeps the stored one.
func (s *ProfileService) Upsert(ctx context.Context, callerID string, p *models.Profile) (*models.Profile, error) {
	if err := prepare(callerID, p); err != nil {
		return nil, err
	}
	return s.repomanager.Profiles(s.db).Upsert(ctx, p)
}
