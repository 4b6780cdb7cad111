package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionTypeMultipleChoice = "multiple-choice"
	QuestionTypeTrueFalse      = "true-false"
	QuestionTypeShortAnswer    = "short-answer"
)

// Question holds an immutable question definition. CorrectAnswer is JSON: a
// string for single-answer questions, an array for the legacy multi-answer
// shape. The variant is fixed at authoring time and decoded by the scoring
// package.
type Question struct {
	QuestionID    uuid.UUID        `json:"question_id" gorm:"column:question_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	StageID       uuid.UUID        `json:"stage_id" gorm:"type:uuid;not null;index"`
	QuestionText  string           `json:"question_text" gorm:"type:text;not null"`
	QuestionType  string           `json:"question_type" gorm:"not null"`
	CorrectAnswer datatypes.JSON   `json:"correct_answer" gorm:"not null"`
	Explanation   string           `json:"explanation,omitempty" gorm:"type:text"`
	Points        int              `json:"points" gorm:"not null"`
	Options       []QuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `json:"-" gorm:"index"`
}
