package dto

import "github.com/google/uuid"

// Stage statuses as shown on the exam details screen.
const (
	StageStatusLocked     = "locked"
	StageStatusAvailable  = "available"
	StageStatusInProgress = "in_progress"
	StageStatusPassed     = "passed"
	StageStatusFailed     = "failed"
)

type StageProgressDTO struct {
	StageID    uuid.UUID `json:"stage_id"`
	StageOrder int       `json:"stage_order"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	BestScore  int       `json:"best_score"`
	Accessible bool      `json:"accessible"`
}

// ExamProgressDTO rolls per-stage outcomes up into the exam-level progress
// bar; Completed mirrors the UI badge shown at 100%.
type ExamProgressDTO struct {
	ExamID          uuid.UUID          `json:"exam_id"`
	StudentID       uuid.UUID          `json:"student_id"`
	ProgressPercent int                `json:"progress_percent"`
	Completed       bool               `json:"completed"`
	Stages          []StageProgressDTO `json:"stages"`
}
