package question

import "github.com/google/uuid"

// Question is one prompt within a survey template. The set applicable to an
// instance can change after the instance was issued; completion is where
// stored answers get reconciled against the current set.
type Question struct {
	ID               uuid.UUID `json:"id" db:"id"`
	SurveyTemplateID uuid.UUID `json:"survey_template_id" db:"survey_template_id"`
	SectionName      *string   `json:"section_name,omitempty" db:"section_name"`
	QuestionText     string    `json:"question_text" db:"question_text"`
	HelpText         *string   `json:"help_text,omitempty" db:"help_text"`
	FieldType        string    `json:"field_type" db:"field_type"`
	IsMandatory      bool      `json:"is_mandatory" db:"is_mandatory"`
	Position         int       `json:"position" db:"position"`
}
