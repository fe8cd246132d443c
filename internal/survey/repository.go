package survey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository is the instance store. Mutating methods that race with other
// writers return the affected-row count so the orchestrator can detect a
// transition that another request already applied.
type Repository interface {
	GetInstance(ctx context.Context, id uuid.UUID) (*Instance, error)
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	FindForRecipient(ctx context.Context, personID uuid.UUID) ([]Instance, error)
	FindForRun(ctx context.Context, runID uuid.UUID) ([]Instance, error)
	FindPreviousVersions(ctx context.Context, instanceID uuid.UUID) ([]Instance, error)
	FindOverdue(ctx context.Context, asOf time.Time) ([]Instance, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status InstanceStatus) (int64, error)
	MarkApproved(ctx context.Context, id uuid.UUID, actor string) (int64, error)
	ClearApproved(ctx context.Context, id uuid.UUID) error
	MarkSubmitted(ctx context.Context, id uuid.UUID, actor string) (int64, error)
	UpdateDueDate(ctx context.Context, id uuid.UUID, dueDate time.Time) (int64, error)

	// CreatePreviousVersion clones the live instance and all of its responses
	// into a new frozen row in a single transaction; either both copies land
	// or neither does.
	CreatePreviousVersion(ctx context.Context, inst *Instance) (uuid.UUID, error)

	IsRecipient(ctx context.Context, personID, instanceID uuid.UUID) (bool, error)
	IsOwner(ctx context.Context, personID, instanceID uuid.UUID) (bool, error)
	ListRecipients(ctx context.Context, instanceID uuid.UUID) ([]Recipient, error)
	ListOwners(ctx context.Context, instanceID uuid.UUID) ([]Owner, error)
	CreateRecipient(ctx context.Context, recipient *Recipient) error
	DeleteRecipient(ctx context.Context, recipientID uuid.UUID) (bool, error)
	GetRecipientPersonID(ctx context.Context, recipientID uuid.UUID) (uuid.UUID, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetInstance(ctx context.Context, id uuid.UUID) (*Instance, error) {
	var inst Instance
	err := r.db.GetContext(ctx, &inst, "SELECT * FROM survey_instance WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &inst, err
}

func (r *postgresRepository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	err := r.db.GetContext(ctx, &run, "SELECT * FROM survey_run WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &run, err
}

func (r *postgresRepository) FindForRecipient(ctx context.Context, personID uuid.UUID) ([]Instance, error) {
	var instances []Instance
	query := `
		SELECT i.*
		FROM survey_instance i
		JOIN survey_instance_recipient rec ON rec.survey_instance_id = i.id
		WHERE rec.person_id = $1 AND i.original_instance_id IS NULL
		ORDER BY i.issued_on DESC`
	err := r.db.SelectContext(ctx, &instances, query, personID)
	return instances, err
}

func (r *postgresRepository) FindForRun(ctx context.Context, runID uuid.UUID) ([]Instance, error) {
	var instances []Instance
	err := r.db.SelectContext(ctx, &instances,
		"SELECT * FROM survey_instance WHERE survey_run_id = $1 AND original_instance_id IS NULL",
		runID)
	return instances, err
}

func (r *postgresRepository) FindPreviousVersions(ctx context.Context, instanceID uuid.UUID) ([]Instance, error) {
	var instances []Instance
	err := r.db.SelectContext(ctx, &instances,
		"SELECT * FROM survey_instance WHERE original_instance_id = $1 ORDER BY issued_on DESC",
		instanceID)
	return instances, err
}

func (r *postgresRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]Instance, error) {
	var instances []Instance
	query := `
		SELECT * FROM survey_instance
		WHERE original_instance_id IS NULL
		  AND status IN ($1, $2)
		  AND due_date IS NOT NULL
		  AND due_date < $3`
	err := r.db.SelectContext(ctx, &instances, query, StatusNotStarted, StatusInProgress, asOf)
	return instances, err
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status InstanceStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE survey_instance SET status = $1 WHERE id = $2 AND status <> $1",
		status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkApproved records the approval marker and the terminal status in one
// statement; the rows-affected count doubles as the race detector.
func (r *postgresRepository) MarkApproved(ctx context.Context, id uuid.UUID, actor string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE survey_instance
		 SET status = $1, approved_at = $2, approved_by = $3
		 WHERE id = $4 AND status <> $1`,
		StatusApproved, time.Now(), actor, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *postgresRepository) ClearApproved(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE survey_instance SET approved_at = NULL, approved_by = NULL WHERE id = $1",
		id)
	return err
}

func (r *postgresRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, actor string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE survey_instance SET submitted_at = $1, submitted_by = $2 WHERE id = $3",
		time.Now(), actor, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *postgresRepository) UpdateDueDate(ctx context.Context, id uuid.UUID, dueDate time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE survey_instance SET due_date = $1 WHERE id = $2",
		dueDate, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *postgresRepository) CreatePreviousVersion(ctx context.Context, inst *Instance) (uuid.UUID, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	versionID := uuid.New()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO survey_instance (
			id, survey_run_id, status, original_instance_id, owning_role,
			due_date, submitted_at, submitted_by, approved_at, approved_by, issued_on
		)
		SELECT $1, survey_run_id, status, $2, owning_role,
			due_date, submitted_at, submitted_by, approved_at, approved_by, issued_on
		FROM survey_instance WHERE id = $2`,
		versionID, inst.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to clone instance %s: %w", inst.ID, err)
	}

	// Re-key the current responses onto the frozen row; original timestamps
	// are preserved.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO survey_question_response (
			id, survey_instance_id, question_id, person_id,
			string_response, number_response, boolean_response, comment, last_updated_at
		)
		SELECT gen_random_uuid(), $1, question_id, person_id,
			string_response, number_response, boolean_response, comment, last_updated_at
		FROM survey_question_response WHERE survey_instance_id = $2`,
		versionID, inst.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to clone responses for instance %s: %w", inst.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return versionID, nil
}

func (r *postgresRepository) IsRecipient(ctx context.Context, personID, instanceID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM survey_instance_recipient WHERE person_id = $1 AND survey_instance_id = $2)",
		personID, instanceID)
	return exists, err
}

func (r *postgresRepository) IsOwner(ctx context.Context, personID, instanceID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM survey_instance_owner WHERE person_id = $1 AND survey_instance_id = $2)",
		personID, instanceID)
	return exists, err
}

func (r *postgresRepository) ListRecipients(ctx context.Context, instanceID uuid.UUID) ([]Recipient, error) {
	var recipients []Recipient
	err := r.db.SelectContext(ctx, &recipients,
		"SELECT * FROM survey_instance_recipient WHERE survey_instance_id = $1",
		instanceID)
	return recipients, err
}

func (r *postgresRepository) ListOwners(ctx context.Context, instanceID uuid.UUID) ([]Owner, error) {
	var owners []Owner
	err := r.db.SelectContext(ctx, &owners,
		"SELECT * FROM survey_instance_owner WHERE survey_instance_id = $1",
		instanceID)
	return owners, err
}

func (r *postgresRepository) CreateRecipient(ctx context.Context, recipient *Recipient) error {
	query := `
		INSERT INTO survey_instance_recipient (
			id, survey_instance_id, person_id
		) VALUES (
			:id, :survey_instance_id, :person_id
		)`
	_, err := r.db.NamedExecContext(ctx, query, recipient)
	return err
}

func (r *postgresRepository) DeleteRecipient(ctx context.Context, recipientID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM survey_instance_recipient WHERE id = $1", recipientID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *postgresRepository) GetRecipientPersonID(ctx context.Context, recipientID uuid.UUID) (uuid.UUID, error) {
	var personID uuid.UUID
	err := r.db.GetContext(ctx, &personID,
		"SELECT person_id FROM survey_instance_recipient WHERE id = $1", recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, nil
	}
	return personID, err
}
