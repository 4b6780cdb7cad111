package service

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/medassess/stagewise/internal/dto"
	"github.com/medassess/stagewise/internal/model"
	"github.com/medassess/stagewise/internal/repository"
)

// ProgressService rolls per-stage outcomes up to the exam level.
type ProgressService interface {
	ExamProgressPercent(studentID, examID uuid.UUID) (int, error)
	ExamProgress(studentID, examID uuid.UUID) (*dto.ExamProgressDTO, error)
	SessionsForExam(studentID, examID uuid.UUID) ([]dto.SessionDTO, error)
}

type progressService struct {
	stageRepo   repository.StageRepository
	sessionRepo repository.SessionRepository
}

func NewProgressService(stageRepo repository.StageRepository, sessionRepo repository.SessionRepository) ProgressService {
	return &progressService{stageRepo: stageRepo, sessionRepo: sessionRepo}
}

func (s *progressService) ExamProgressPercent(studentID, examID uuid.UUID) (int, error) {
	stages, outcomes, err := s.loadOutcomes(studentID, examID)
	if err != nil {
		return 0, err
	}
	return progressPercent(stages, outcomes), nil
}

func (s *progressService) ExamProgress(studentID, examID uuid.UUID) (*dto.ExamProgressDTO, error) {
	stages, outcomes, err := s.loadOutcomes(studentID, examID)
	if err != nil {
		return nil, err
	}

	allSessions, err := s.sessionRepo.FindByStudentAndExam(studentID, examID)
	if err != nil {
		return nil, fmt.Errorf("error loading sessions for student %s: %w", studentID, err)
	}
	inProgress := make(map[int]bool)
	for _, session := range allSessions {
		if session.Status == model.SessionInProgress {
			inProgress[session.CurrentStage] = true
		}
	}

	percent := progressPercent(stages, outcomes)
	resp := &dto.ExamProgressDTO{
		ExamID:          examID,
		StudentID:       studentID,
		ProgressPercent: percent,
		Completed:       percent == 100,
		Stages:          make([]dto.StageProgressDTO, 0, len(stages)),
	}

	open := accessiblePrefix(stages, outcomes)
	for _, stage := range stages {
		out := outcomes[stage.StageOrder]
		accessible := open[stage.StageOrder]

		status := dto.StageStatusLocked
		switch {
		case out.completed && out.passed:
			status = dto.StageStatusPassed
		case out.completed:
			status = dto.StageStatusFailed
		case inProgress[stage.StageOrder]:
			status = dto.StageStatusInProgress
		case accessible:
			status = dto.StageStatusAvailable
		}

		resp.Stages = append(resp.Stages, dto.StageProgressDTO{
			StageID:    stage.StageID,
			StageOrder: stage.StageOrder,
			Name:       stage.Name,
			Status:     status,
			BestScore:  out.bestScore,
			Accessible: accessible,
		})
	}
	return resp, nil
}

func (s *progressService) SessionsForExam(studentID, examID uuid.UUID) ([]dto.SessionDTO, error) {
	sessions, err := s.sessionRepo.FindByStudentAndExam(studentID, examID)
	if err != nil {
		log.Error().Err(err).Str("studentID", studentID.String()).Str("examID", examID.String()).
			Msg("SessionsForExam: repository error")
		return nil, fmt.Errorf("error fetching sessions: %w", err)
	}

	dtos := make([]dto.SessionDTO, 0, len(sessions))
	for _, session := range sessions {
		var row dto.SessionDTO
		if err := copier.Copy(&row, &session); err != nil {
			return nil, fmt.Errorf("error preparing session response: %w", err)
		}
		dtos = append(dtos, row)
	}
	return dtos, nil
}

func (s *progressService) loadOutcomes(studentID, examID uuid.UUID) ([]model.Stage, map[int]stageOutcome, error) {
	stages, err := s.stageRepo.FindByExamIDWithQuestions(examID)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading stages for exam %s: %w", examID, err)
	}
	sessions, err := s.sessionRepo.FindCompletedWithAnswers(studentID, examID)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading sessions for student %s: %w", studentID, err)
	}
	return stages, stageOutcomes(stages, sessions), nil
}

// progressPercent is round(100 * passed stages / total stages); 0 for an exam
// with no stages.
func progressPercent(stages []model.Stage, outcomes map[int]stageOutcome) int {
	if len(stages) == 0 {
		return 0
	}
	passed := 0
	for _, stage := range stages {
		if outcomes[stage.StageOrder].passed {
			passed++
		}
	}
	return int(math.Round(float64(passed) / float64(len(stages)) * 100))
}
