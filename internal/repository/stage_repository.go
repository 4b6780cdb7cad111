package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/internal/model"
)

type StageRepository interface {
	FindByID(id uuid.UUID) (*model.Stage, error)
	FindByIDWithQuestions(id uuid.UUID) (*model.Stage, error)
	FindByExamIDWithQuestions(examID uuid.UUID) ([]model.Stage, error)
}

type stageRepository struct {
	db *gorm.DB
}

func NewStageRepository(db *gorm.DB) StageRepository {
	return &stageRepository{db: db}
}

func (r *stageRepository) FindByID(id uuid.UUID) (*model.Stage, error) {
	var stage model.Stage
	err := r.db.First(&stage, "stage_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

func (r *stageRepository) FindByIDWithQuestions(id uuid.UUID) (*model.Stage, error) {
	var stage model.Stage
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.created_at ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.option_letter ASC")
		}).
		First(&stage, "stage_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

func (r *stageRepository) FindByExamIDWithQuestions(examID uuid.UUID) ([]model.Stage, error) {
	var stages []model.Stage
	err := r.db.
		Preload("Questions").
		Where("exam_id = ?", examID).
		Order("stage_order ASC").
		Find(&stages).Error
	return stages, err
}
