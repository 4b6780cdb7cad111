package dto

import (
	"time"

	"github.com/google/uuid"
)

// ExamSummaryDTO is one row of the published-exam listing.
type ExamSummaryDTO struct {
	ExamID           uuid.UUID `json:"exam_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	InstructorName   string    `json:"instructor_name"`
	StageCount       int       `json:"stage_count"`
	TotalTimeMinutes int       `json:"total_time_minutes"`
	CreatedAt        time.Time `json:"created_at"`
}

type StageSummaryDTO struct {
	StageID      uuid.UUID `json:"stage_id"`
	ExamID       uuid.UUID `json:"exam_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	StageOrder   int       `json:"stage_order"`
	PassingScore int       `json:"passing_score"`
	TimeLimit    int       `json:"time_limit"`
}

type ExamDetailDTO struct {
	ExamID      uuid.UUID         `json:"exam_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	CreatedBy   uuid.UUID         `json:"created_by"`
	IsPublished bool              `json:"is_published"`
	Stages      []StageSummaryDTO `json:"stages"`
	CreatedAt   time.Time         `json:"created_at"`
}

// OptionDTO is an option as shown while taking a stage. Correctness and
// misconception text stay server-side until review.
type OptionDTO struct {
	OptionID     uuid.UUID `json:"option_id"`
	OptionLetter string    `json:"option_letter"`
	OptionText   string    `json:"option_text"`
}

// QuestionDTO is a question as shown while taking a stage; the answer key and
// explanation are deliberately absent.
type QuestionDTO struct {
	QuestionID   uuid.UUID   `json:"question_id"`
	QuestionText string      `json:"question_text"`
	QuestionType string      `json:"question_type"`
	Points       int         `json:"points"`
	Options      []OptionDTO `json:"options,omitempty"`
}

type StageDetailDTO struct {
	StageID          uuid.UUID     `json:"stage_id"`
	ExamID           uuid.UUID     `json:"exam_id"`
	Name             string        `json:"name"`
	Description      string        `json:"description,omitempty"`
	StageOrder       int           `json:"stage_order"`
	PassingScore     int           `json:"passing_score"`
	TimeLimit        int           `json:"time_limit"`
	CountdownSeconds int           `json:"countdown_seconds"`
	Questions        []QuestionDTO `json:"questions"`
}
