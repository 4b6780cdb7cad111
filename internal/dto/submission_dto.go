package dto

import (
	"time"

	"github.com/google/uuid"
)

// AnswerSubmissionDTO carries one submitted answer. The wire shape keeps the
// is_correct field for compatibility with older clients, but the server
// recomputes correctness from the answer key and ignores it.
type AnswerSubmissionDTO struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedAnswer string    `json:"selected_answer"`
	Selected       []string  `json:"selected,omitempty"` // multi-answer questions
	IsCorrect      *bool     `json:"is_correct,omitempty"`
}

type SubmitStageDTO struct {
	StudentID uuid.UUID             `json:"student_id" binding:"required"`
	ExamID    uuid.UUID             `json:"exam_id" binding:"required"`
	StageID   uuid.UUID             `json:"stage_id" binding:"required"`
	Answers   []AnswerSubmissionDTO `json:"answers" binding:"dive"`
}

type BeginStageDTO struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
	ExamID    uuid.UUID `json:"exam_id" binding:"required"`
	StageID   uuid.UUID `json:"stage_id" binding:"required"`
}

type BeginStageResponseDTO struct {
	SessionID        uuid.UUID `json:"session_id"`
	StageOrder       int       `json:"stage_order"`
	CountdownSeconds int       `json:"countdown_seconds"`
	Resumed          bool      `json:"resumed"`
	StartTime        time.Time `json:"start_time"`
}

// StageResultDTO is the scoring engine's verdict for a completed submission.
type StageResultDTO struct {
	SessionID      uuid.UUID `json:"session_id"`
	StageID        uuid.UUID `json:"stage_id"`
	StageOrder     int       `json:"stage_order"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	EarnedPoints   int       `json:"earned_points"`
	TotalPoints    int       `json:"total_points"`
	Percentage     int       `json:"percentage"`
	PassingScore   int       `json:"passing_score"`
	Passed         bool      `json:"passed"`
	CompletedAt    time.Time `json:"completed_at"`
}

type SessionDTO struct {
	SessionID    uuid.UUID  `json:"session_id"`
	StudentID    uuid.UUID  `json:"student_id"`
	ExamID       uuid.UUID  `json:"exam_id"`
	CurrentStage int        `json:"current_stage"`
	Status       string     `json:"status"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

// ReviewOptionDTO includes correctness and misconception text; review is the
// one surface where those leave the server.
type ReviewOptionDTO struct {
	OptionID      uuid.UUID `json:"option_id"`
	OptionLetter  string    `json:"option_letter"`
	OptionText    string    `json:"option_text"`
	IsCorrect     bool      `json:"is_correct"`
	Misconception string    `json:"misconception,omitempty"`
}

type ReviewAnswerDTO struct {
	QuestionID     uuid.UUID         `json:"question_id"`
	QuestionText   string            `json:"question_text"`
	CorrectAnswer  []string          `json:"correct_answer"`
	Explanation    string            `json:"explanation,omitempty"`
	Points         int               `json:"points"`
	SelectedAnswer string            `json:"selected_answer"`
	IsCorrect      bool              `json:"is_correct"`
	AnsweredAt     time.Time         `json:"answered_at"`
	Options        []ReviewOptionDTO `json:"options,omitempty"`
}

type ReviewDTO struct {
	Session SessionDTO        `json:"session"`
	Answers []ReviewAnswerDTO `json:"answers"`
}
