package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Exam struct {
	ExamID      uuid.UUID      `json:"exam_id" gorm:"column:exam_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description,omitempty"`
	CreatedBy   uuid.UUID      `json:"created_by" gorm:"type:uuid;not null;index"`
	IsPublished bool           `json:"is_published" gorm:"not null;default:false"`
	Stages      []Stage        `json:"stages,omitempty" gorm:"foreignKey:ExamID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
