package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/noxus/internal/client/client"
	"github.com/dmitrijs2005/noxus/internal/client/models"
	"github.com/dmitrijs2005/noxus/internal/logging"
)

// SyncGate captures whether local state may be written to the profile row.
type SyncGate struct {
	// Ready is set once the first reconciliation has loaded the real profile.
	Ready bool
	// Recovery is true while a password update is in flight.
	Recovery bool
	UserID   string
}

func (g SyncGate) Open() bool {
	return g.Ready && !g.Recovery && g.UserID != ""
}

// SyncScheduler pushes the full local state to the profile row, upserting
// by user id. Last write wins.
type SyncScheduler struct {
	client client.Client
	logger logging.Logger

	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewSyncScheduler(c client.Client, l logging.Logger) *SyncScheduler {
	return &SyncScheduler{client: c, logger: l.With("module", "sync"), Now: time.Now}
}

// Push upserts st when gate is open and reports whether it did.
func (s *SyncScheduler) Push(ctx context.Context, gate SyncGate, st models.UserState) (bool, error) {
	if !gate.Open() {
		s.logger.Debug(ctx, "sync suppressed", "ready", gate.Ready, "recovery", gate.Recovery)
		return false, nil
	}

	if _, err := s.client.UpsertProfile(ctx, st.Profile(gate.UserID, s.Now())); err != nil {
		return false, err
	}
	s.logger.Debug(ctx, "profile pushed", "user_id", gate.UserID, "level", st.CurrentLevel)
	return true, nil
}
