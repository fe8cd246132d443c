package question

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	FindForInstance(ctx context.Context, instanceID uuid.UUID) ([]Question, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// FindForInstance resolves the questions currently applicable to an instance
// via its run's template. The result reflects the catalog as of now, not as
// of when the instance was issued.
func (r *postgresRepository) FindForInstance(ctx context.Context, instanceID uuid.UUID) ([]Question, error) {
	var questions []Question
	query := `
		SELECT q.*
		FROM survey_question q
		JOIN survey_run r ON r.template_id = q.survey_template_id
		JOIN survey_instance i ON i.survey_run_id = r.id
		WHERE i.id = $1
		ORDER BY q.position ASC`
	err := r.db.SelectContext(ctx, &questions, query, instanceID)
	return questions, err
}
