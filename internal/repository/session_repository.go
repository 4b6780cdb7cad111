package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/internal/model"
)

// SessionRepository persists exam sessions. Create, FindActive and
// MarkCompleted accept a transaction handle because a stage submission spans
// all three in one transaction; pass nil to use the repository's own db.
type SessionRepository interface {
	Create(tx *gorm.DB, session *model.ExamSession) error
	FindActive(tx *gorm.DB, studentID, examID uuid.UUID, stageOrder int) (*model.ExamSession, error)
	MarkCompleted(tx *gorm.DB, sessionID uuid.UUID, endedAt time.Time) error
	FindByStudentAndExam(studentID, examID uuid.UUID) ([]model.ExamSession, error)
	FindCompletedWithAnswers(studentID, examID uuid.UUID) ([]model.ExamSession, error)
	FindLatestCompleted(studentID, examID uuid.UUID) (*model.ExamSession, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sessionRepository) Create(tx *gorm.DB, session *model.ExamSession) error {
	return r.conn(tx).Create(session).Error
}

// FindActive returns the single in_progress session for a (student, exam,
// stage order) tuple; gorm.ErrRecordNotFound when there is none.
func (r *sessionRepository) FindActive(tx *gorm.DB, studentID, examID uuid.UUID, stageOrder int) (*model.ExamSession, error) {
	var session model.ExamSession
	err := r.conn(tx).
		Where("student_id = ? AND exam_id = ? AND current_stage = ? AND status = ?",
			studentID, examID, stageOrder, model.SessionInProgress).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) MarkCompleted(tx *gorm.DB, sessionID uuid.UUID, endedAt time.Time) error {
	return r.conn(tx).Model(&model.ExamSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":   model.SessionCompleted,
			"end_time": endedAt,
		}).Error
}

func (r *sessionRepository) FindByStudentAndExam(studentID, examID uuid.UUID) ([]model.ExamSession, error) {
	var sessions []model.ExamSession
	err := r.db.
		Where("student_id = ? AND exam_id = ?", studentID, examID).
		Order("start_time DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) FindCompletedWithAnswers(studentID, examID uuid.UUID) ([]model.ExamSession, error) {
	var sessions []model.ExamSession
	err := r.db.
		Preload("Answers").
		Where("student_id = ? AND exam_id = ? AND status = ?", studentID, examID, model.SessionCompleted).
		Order("end_time DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) FindLatestCompleted(studentID, examID uuid.UUID) (*model.ExamSession, error) {
	var session model.ExamSession
	err := r.db.
		Where("student_id = ? AND exam_id = ? AND status = ?", studentID, examID, model.SessionCompleted).
		Order("end_time DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}
