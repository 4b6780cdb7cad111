package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medassess/stagewise/internal/model"
)

type AnswerRepository interface {
	FindBySession(sessionID uuid.UUID) ([]model.StudentAnswer, error)
	CountBySession(sessionID uuid.UUID) (int64, error)
	// UpsertAll inserts or overwrites answers keyed on (session_id, question_id).
	// tx may be a transaction handle; pass nil to use the repository's own db.
	UpsertAll(tx *gorm.DB, answers []model.StudentAnswer) error
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) FindBySession(sessionID uuid.UUID) ([]model.StudentAnswer, error) {
	var answers []model.StudentAnswer
	err := r.db.Where("session_id = ?", sessionID).Order("answered_at ASC").Find(&answers).Error
	return answers, err
}

func (r *answerRepository) CountBySession(sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.StudentAnswer{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

func (r *answerRepository) UpsertAll(tx *gorm.DB, answers []model.StudentAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"selected_answer", "is_correct", "answered_at",
		}),
	}).Create(&answers).Error
}
