package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/internal/model"
)

// ExamListing is an exam row joined with the aggregates the catalog shows.
type ExamListing struct {
	model.Exam
	InstructorName   string
	StageCount       int
	TotalTimeMinutes int
}

type ExamRepository interface {
	Create(exam *model.Exam) error
	Update(exam *model.Exam) error
	FindByID(id uuid.UUID) (*model.Exam, error)
	FindByIDWithStages(id uuid.UUID) (*model.Exam, error)
	FindPublished() ([]ExamListing, error)
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(exam *model.Exam) error {
	// Associated stages, questions and options are created in one go.
	return r.db.Create(exam).Error
}

func (r *examRepository) Update(exam *model.Exam) error {
	return r.db.Save(exam).Error
}

func (r *examRepository) FindByID(id uuid.UUID) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.First(&exam, "exam_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByIDWithStages(id uuid.UUID) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.Preload("Stages", func(db *gorm.DB) *gorm.DB {
		return db.Order("stages.stage_order ASC")
	}).First(&exam, "exam_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindPublished() ([]ExamListing, error) {
	var results []ExamListing
	err := r.db.Model(&model.Exam{}).
		Select(`exams.*,
			users.name AS instructor_name,
			(SELECT COUNT(*) FROM stages WHERE stages.exam_id = exams.exam_id AND stages.deleted_at IS NULL) AS stage_count,
			(SELECT COALESCE(SUM(stages.time_limit), 0) FROM stages WHERE stages.exam_id = exams.exam_id AND stages.deleted_at IS NULL) AS total_time_minutes`).
		Joins("JOIN users ON users.user_id = exams.created_by").
		Where("exams.is_published = ?", true).
		Order("exams.created_at DESC").
		Scan(&results).Error
	return results, err
}
