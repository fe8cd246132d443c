package survey

import (
	"context"

	"github.com/google/uuid"

	"data-atlas/catalog-portal/catalog-portal-backend/internal/changelog"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/person"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/question"
)

// Collaborator boundaries the lifecycle engine consumes. All are synchronous;
// any suspension happens inside the implementations.

type PersonDirectory interface {
	GetActiveByEmail(ctx context.Context, email string) (*person.Person, error)
	GetByID(ctx context.Context, id uuid.UUID) (*person.Person, error)
}

type RoleChecker interface {
	HasRole(ctx context.Context, userName string, roleName string) (bool, error)
}

type QuestionCatalog interface {
	FindForInstance(ctx context.Context, instanceID uuid.UUID) ([]question.Question, error)
}

// AuditLog appends are fire-and-forget from the engine's perspective;
// failures are the sink's problem, never the caller's.
type AuditLog interface {
	Append(ctx context.Context, entry changelog.Entry)
}
