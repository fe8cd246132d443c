package changelog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	FindForParent(ctx context.Context, parentKind string, parentID uuid.UUID, limit int) ([]Entry, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Insert(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO change_log (
			id, operation, user_id, parent_kind, parent_id, child_kind, message, created_at
		) VALUES (
			:id, :operation, :user_id, :parent_kind, :parent_id, :child_kind, :message, :created_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, entry)
	return err
}

func (r *postgresRepository) FindForParent(ctx context.Context, parentKind string, parentID uuid.UUID, limit int) ([]Entry, error) {
	var entries []Entry
	err := r.db.SelectContext(ctx, &entries,
		"SELECT * FROM change_log WHERE parent_kind = $1 AND parent_id = $2 ORDER BY created_at DESC LIMIT $3",
		parentKind, parentID, limit)
	return entries, err
}
