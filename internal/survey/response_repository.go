package survey

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ResponseRepository is the response store. One live row per
// (instance, question): Save upserts on that key.
type ResponseRepository interface {
	FindForInstance(ctx context.Context, instanceID uuid.UUID) ([]QuestionResponse, error)
	Save(ctx context.Context, response *QuestionResponse) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type postgresResponseRepository struct {
	db *sqlx.DB
}

func NewResponseRepository(db *sqlx.DB) ResponseRepository {
	return &postgresResponseRepository{db: db}
}

func (r *postgresResponseRepository) FindForInstance(ctx context.Context, instanceID uuid.UUID) ([]QuestionResponse, error) {
	var responses []QuestionResponse
	err := r.db.SelectContext(ctx, &responses,
		"SELECT * FROM survey_question_response WHERE survey_instance_id = $1",
		instanceID)
	return responses, err
}

func (r *postgresResponseRepository) Save(ctx context.Context, response *QuestionResponse) error {
	query := `
		INSERT INTO survey_question_response (
			id, survey_instance_id, question_id, person_id,
			string_response, number_response, boolean_response, comment, last_updated_at
		) VALUES (
			:id, :survey_instance_id, :question_id, :person_id,
			:string_response, :number_response, :boolean_response, :comment, :last_updated_at
		)
		ON CONFLICT (survey_instance_id, question_id) DO UPDATE SET
			person_id = EXCLUDED.person_id,
			string_response = EXCLUDED.string_response,
			number_response = EXCLUDED.number_response,
			boolean_response = EXCLUDED.boolean_response,
			comment = EXCLUDED.comment,
			last_updated_at = EXCLUDED.last_updated_at`
	_, err := r.db.NamedExecContext(ctx, query, response)
	return err
}

func (r *postgresResponseRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM survey_question_response WHERE id = ANY($1::uuid[])",
		pq.Array(idStrs))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
