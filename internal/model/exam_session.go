package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
)

// ExamSession is one student's attempt at a single stage (CurrentStage holds
// the stage order). At most one in_progress session may exist per
// (student, exam, stage order); a partial unique index enforces it.
type ExamSession struct {
	SessionID    uuid.UUID       `json:"session_id" gorm:"column:session_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	StudentID    uuid.UUID       `json:"student_id" gorm:"type:uuid;not null;index"`
	ExamID       uuid.UUID       `json:"exam_id" gorm:"type:uuid;not null;index"`
	CurrentStage int             `json:"current_stage" gorm:"not null"`
	Status       string          `json:"status" gorm:"not null;default:'in_progress'"`
	StartTime    time.Time       `json:"start_time" gorm:"autoCreateTime"`
	EndTime      *time.Time      `json:"end_time,omitempty"`
	Answers      []StudentAnswer `json:"answers,omitempty" gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
