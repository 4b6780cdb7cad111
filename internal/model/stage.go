package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stage is one ordered, timed sub-exam. StageOrder is dense and 1-based
// within an exam; order 1 is always accessible.
type Stage struct {
	StageID      uuid.UUID      `json:"stage_id" gorm:"column:stage_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	ExamID       uuid.UUID      `json:"exam_id" gorm:"type:uuid;not null;uniqueIndex:idx_stages_exam_order"`
	Name         string         `json:"name" gorm:"not null"`
	Description  string         `json:"description,omitempty"`
	StageOrder   int            `json:"stage_order" gorm:"not null;uniqueIndex:idx_stages_exam_order"`
	PassingScore int            `json:"passing_score" gorm:"not null"` // percentage 0-100
	TimeLimit    int            `json:"time_limit" gorm:"not null"`    // minutes
	Questions    []Question     `json:"questions,omitempty" gorm:"foreignKey:StageID"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
