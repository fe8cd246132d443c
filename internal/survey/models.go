package survey

import (
	"time"

	"github.com/google/uuid"
)

type InstanceStatus string

const (
	StatusNotStarted InstanceStatus = "NOT_STARTED"
	StatusInProgress InstanceStatus = "IN_PROGRESS"
	StatusCompleted  InstanceStatus = "COMPLETED"
	StatusApproved   InstanceStatus = "APPROVED"
	StatusRejected   InstanceStatus = "REJECTED"
	StatusWithdrawn  InstanceStatus = "WITHDRAWN"
)

type Action string

const (
	ActionSaving      Action = "SAVING"
	ActionSubmitting  Action = "SUBMITTING"
	ActionApproving   Action = "APPROVING"
	ActionRejecting   Action = "REJECTING"
	ActionWithdrawing Action = "WITHDRAWING"
	ActionReopening   Action = "REOPENING"
)

// RoleSurveyAdmin grants unrestricted lifecycle rights over every instance.
const RoleSurveyAdmin = "SURVEY_ADMIN"

// Instance is one recipient's (or group's) fillable copy of a survey run.
// OriginalInstanceID is nil for the live instance; frozen prior versions point
// back at the live instance and are never mutated again.
type Instance struct {
	ID                 uuid.UUID      `json:"id" db:"id"`
	SurveyRunID        uuid.UUID      `json:"survey_run_id" db:"survey_run_id"`
	Status             InstanceStatus `json:"status" db:"status"`
	OriginalInstanceID *uuid.UUID     `json:"original_instance_id,omitempty" db:"original_instance_id"`
	OwningRole         string         `json:"owning_role" db:"owning_role"`
	DueDate            *time.Time     `json:"due_date,omitempty" db:"due_date"`
	SubmittedAt        *time.Time     `json:"submitted_at,omitempty" db:"submitted_at"`
	SubmittedBy        *string        `json:"submitted_by,omitempty" db:"submitted_by"`
	ApprovedAt         *time.Time     `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy         *string        `json:"approved_by,omitempty" db:"approved_by"`
	IssuedOn           time.Time      `json:"issued_on" db:"issued_on"`
}

// IsLatest reports whether this row is the live instance rather than a frozen
// prior version.
func (i *Instance) IsLatest() bool {
	return i.OriginalInstanceID == nil
}

// Run is the parent definition issued to one or more recipients.
type Run struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	TemplateID  uuid.UUID  `json:"template_id" db:"template_id"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty" db:"owner_id"`
	IssuedOn    time.Time  `json:"issued_on" db:"issued_on"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
}

// QuestionResponse is one answered question within an instance. At most one
// live row exists per (instance, question); saves overwrite, never duplicate.
type QuestionResponse struct {
	ID               uuid.UUID `json:"id" db:"id"`
	SurveyInstanceID uuid.UUID `json:"survey_instance_id" db:"survey_instance_id"`
	QuestionID       uuid.UUID `json:"question_id" db:"question_id"`
	PersonID         uuid.UUID `json:"person_id" db:"person_id"`
	StringResponse   *string   `json:"string_response,omitempty" db:"string_response"`
	NumberResponse   *float64  `json:"number_response,omitempty" db:"number_response"`
	BooleanResponse  *bool     `json:"boolean_response,omitempty" db:"boolean_response"`
	Comment          *string   `json:"comment,omitempty" db:"comment"`
	LastUpdatedAt    time.Time `json:"last_updated_at" db:"last_updated_at"`
}

// Recipient links a person to an instance they are expected to fill in.
type Recipient struct {
	ID               uuid.UUID `json:"id" db:"id"`
	SurveyInstanceID uuid.UUID `json:"survey_instance_id" db:"survey_instance_id"`
	PersonID         uuid.UUID `json:"person_id" db:"person_id"`
}

// Owner links a person entitled to approve/reject an instance.
type Owner struct {
	ID               uuid.UUID `json:"id" db:"id"`
	SurveyInstanceID uuid.UUID `json:"survey_instance_id" db:"survey_instance_id"`
	PersonID         uuid.UUID `json:"person_id" db:"person_id"`
}

// Permissions is the capability snapshot a user holds over one instance at the
// time of the request. It is derived fresh per request and passed by value;
// role and ownership facts can change between calls, so it is never cached.
type Permissions struct {
	IsAdmin       bool `json:"is_admin"`
	IsParticipant bool `json:"is_participant"`
	IsOwner       bool `json:"is_owner"`
	HasOwnerRole  bool `json:"has_owner_role"`
	IsMetaEdit    bool `json:"is_meta_edit"`
}

// StatusChangeCommand is a caller's request to move an instance through the
// lifecycle.
type StatusChangeCommand struct {
	Action Action  `json:"action" binding:"required"`
	Reason *string `json:"reason,omitempty"`
}

// StatusChangeResult reports the resolved status and whether this request was
// the one that applied it. Applied is false when a concurrent writer already
// applied the same transition; side effects are skipped in that case.
type StatusChangeResult struct {
	NewStatus InstanceStatus `json:"new_status"`
	Applied   bool           `json:"applied"`
}

// SaveResponseRequest carries one answer for one question of an instance.
type SaveResponseRequest struct {
	QuestionID      uuid.UUID `json:"question_id" binding:"required"`
	StringResponse  *string   `json:"string_response,omitempty"`
	NumberResponse  *float64  `json:"number_response,omitempty"`
	BooleanResponse *bool     `json:"boolean_response,omitempty"`
	Comment         *string   `json:"comment,omitempty"`
}

// RecipientCreateCommand adds a person as a recipient of an instance.
type RecipientCreateCommand struct {
	SurveyInstanceID uuid.UUID `json:"survey_instance_id" binding:"required"`
	PersonID         uuid.UUID `json:"person_id" binding:"required"`
}

// RecipientUpdateCommand swaps the person behind an existing recipient row.
type RecipientUpdateCommand struct {
	SurveyInstanceID    uuid.UUID `json:"survey_instance_id" binding:"required"`
	InstanceRecipientID uuid.UUID `json:"instance_recipient_id" binding:"required"`
	PersonID            uuid.UUID `json:"person_id" binding:"required"`
}
