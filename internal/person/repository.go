package person

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetActiveByEmail(ctx context.Context, email string) (*Person, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Person, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetActiveByEmail(ctx context.Context, email string) (*Person, error) {
	var p Person
	err := r.db.GetContext(ctx, &p, "SELECT * FROM person WHERE email = $1 AND is_removed = false", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	var p Person
	err := r.db.GetContext(ctx, &p, "SELECT * FROM person WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}
