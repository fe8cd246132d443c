package survey

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VersioningCoordinator freezes the current state of a live instance as an
// immutable prior version before a re-open resets it. The instance clone and
// the response clone are one atomic unit at the storage boundary.
type VersioningCoordinator struct {
	repo   Repository
	logger *zap.Logger
}

func NewVersioningCoordinator(repo Repository, logger *zap.Logger) *VersioningCoordinator {
	return &VersioningCoordinator{
		repo:   repo,
		logger: logger,
	}
}

// FreezeCurrentVersion snapshots the live instance and its responses into a
// new frozen row and clears the live instance's approval marker. The caller
// performs the subsequent status update; versioning is the first half of the
// REOPENING composite, not a transition of its own.
func (v *VersioningCoordinator) FreezeCurrentVersion(ctx context.Context, inst *Instance) (uuid.UUID, error) {
	versionID, err := v.repo.CreatePreviousVersion(ctx, inst)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create previous version of instance %s: %w", inst.ID, err)
	}

	if err := v.repo.ClearApproved(ctx, inst.ID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to clear approval on instance %s: %w", inst.ID, err)
	}

	v.logger.Info("Survey instance versioned",
		zap.String("instance_id", inst.ID.String()),
		zap.String("version_id", versionID.String()))

	return versionID, nil
}
