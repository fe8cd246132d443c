package changelog

import (
	"time"

	"github.com/google/uuid"
)

type Operation string

const (
	OperationAdd    Operation = "ADD"
	OperationUpdate Operation = "UPDATE"
	OperationRemove Operation = "REMOVE"
)

// Entry is one free-text audit record hung off a parent entity.
type Entry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Operation  Operation `json:"operation" db:"operation"`
	UserID     string    `json:"user_id" db:"user_id"`
	ParentKind string    `json:"parent_kind" db:"parent_kind"`
	ParentID   uuid.UUID `json:"parent_id" db:"parent_id"`
	ChildKind  *string   `json:"child_kind,omitempty" db:"child_kind"`
	Message    string    `json:"message" db:"message"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Entity kinds referenced by survey lifecycle entries.
const (
	KindSurveyInstance = "SURVEY_INSTANCE"
	KindSurveyQuestion = "SURVEY_QUESTION"
	KindPerson         = "PERSON"
)
