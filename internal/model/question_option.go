package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionOption is one multiple-choice option. Misconception text is shown
// only when this option was selected and is wrong.
type QuestionOption struct {
	OptionID      uuid.UUID `json:"option_id" gorm:"column:option_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	QuestionID    uuid.UUID `json:"question_id" gorm:"type:uuid;not null;index"`
	OptionLetter  string    `json:"option_letter" gorm:"not null"`
	OptionText    string    `json:"option_text" gorm:"type:text;not null"`
	IsCorrect     bool      `json:"is_correct" gorm:"not null;default:false"`
	Misconception string    `json:"misconception,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
