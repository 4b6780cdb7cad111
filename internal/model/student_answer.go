package model

import (
	"time"

	"github.com/google/uuid"
)

// StudentAnswer is one persisted answer. The (SessionID, QuestionID) unique
// index makes re-submission an upsert rather than a duplicate row. IsCorrect
// is stamped by the scoring engine at submission time, never taken from the
// client.
type StudentAnswer struct {
	AnswerID       uuid.UUID `json:"answer_id" gorm:"column:answer_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID      uuid.UUID `json:"session_id" gorm:"type:uuid;not null;uniqueIndex:idx_answers_session_question"`
	QuestionID     uuid.UUID `json:"question_id" gorm:"type:uuid;not null;uniqueIndex:idx_answers_session_question"`
	SelectedAnswer string    `json:"selected_answer" gorm:"type:text;not null"`
	IsCorrect      bool      `json:"is_correct" gorm:"not null"`
	AnsweredAt     time.Time `json:"answered_at" gorm:"not null"`
}
