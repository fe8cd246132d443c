package survey

import (
	"context"
	"fmt"

	"data-atlas/catalog-portal/catalog-portal-backend/internal/person"
)

// PermissionEvaluator computes a capability snapshot for a (user, instance)
// pair. The five checks read independent external facts and have no ordering
// dependency on each other.
type PermissionEvaluator struct {
	repo    Repository
	persons PersonDirectory
	roles   RoleChecker
}

func NewPermissionEvaluator(repo Repository, persons PersonDirectory, roles RoleChecker) *PermissionEvaluator {
	return &PermissionEvaluator{
		repo:    repo,
		persons: persons,
		roles:   roles,
	}
}

// Evaluate resolves the acting person and derives the snapshot against an
// already-loaded instance. Ownership is structural (owner row), inherited
// (run's designated owner) or role-based (owning role on the instance).
func (e *PermissionEvaluator) Evaluate(ctx context.Context, userName string, inst *Instance) (Permissions, *person.Person, error) {
	actor, err := e.persons.GetActiveByEmail(ctx, userName)
	if err != nil {
		return Permissions{}, nil, fmt.Errorf("failed to resolve person %s: %w", userName, err)
	}
	if actor == nil {
		return Permissions{}, nil, fmt.Errorf("person %s: %w", userName, ErrNotFound)
	}

	run, err := e.repo.GetRun(ctx, inst.SurveyRunID)
	if err != nil {
		return Permissions{}, nil, fmt.Errorf("failed to load run %s: %w", inst.SurveyRunID, err)
	}
	if run == nil {
		return Permissions{}, nil, fmt.Errorf("survey run %s: %w", inst.SurveyRunID, ErrNotFound)
	}

	isAdmin, err := e.roles.HasRole(ctx, userName, RoleSurveyAdmin)
	if err != nil {
		return Permissions{}, nil, err
	}

	isParticipant, err := e.repo.IsRecipient(ctx, actor.ID, inst.ID)
	if err != nil {
		return Permissions{}, nil, err
	}

	isOwner, err := e.repo.IsOwner(ctx, actor.ID, inst.ID)
	if err != nil {
		return Permissions{}, nil, err
	}
	if !isOwner && run.OwnerID != nil && *run.OwnerID == actor.ID {
		isOwner = true
	}

	hasOwnerRole, err := e.roles.HasRole(ctx, actor.Email, inst.OwningRole)
	if err != nil {
		return Permissions{}, nil, err
	}

	isLatest := inst.IsLatest()

	return Permissions{
		IsAdmin:       isAdmin,
		IsParticipant: isParticipant,
		IsOwner:       isOwner,
		HasOwnerRole:  hasOwnerRole,
		// Administrative edits are only allowed on the live, non-superseded
		// instance.
		IsMetaEdit: isLatest && (isAdmin || isOwner || hasOwnerRole),
	}, actor, nil
}
