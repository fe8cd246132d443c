package role

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository answers role membership questions. A role name may be a system
// role or an ad-hoc owning role carried on a survey instance.
type Repository interface {
	HasRole(ctx context.Context, userName string, roleName string) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) HasRole(ctx context.Context, userName string, roleName string) (bool, error) {
	if roleName == "" {
		return false, nil
	}
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM user_role WHERE user_name = $1 AND role = $2)",
		userName, roleName)
	return exists, err
}
