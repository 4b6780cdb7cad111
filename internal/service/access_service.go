package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medassess/stagewise/internal/model"
	"github.com/medassess/stagewise/internal/repository"
)

// AccessService is the stage-access gate: stage 1 is always open, every later
// stage opens once its immediate predecessor has a passing completed session.
type AccessService interface {
	CanAccess(studentID, examID uuid.UUID, stageOrder int) (bool, error)
	AccessibleStages(studentID, examID uuid.UUID) ([]int, error)
}

type accessService struct {
	stageRepo   repository.StageRepository
	sessionRepo repository.SessionRepository
}

func NewAccessService(stageRepo repository.StageRepository, sessionRepo repository.SessionRepository) AccessService {
	return &accessService{stageRepo: stageRepo, sessionRepo: sessionRepo}
}

func (s *accessService) CanAccess(studentID, examID uuid.UUID, stageOrder int) (bool, error) {
	if stageOrder <= 1 {
		return true, nil
	}

	stages, err := s.stageRepo.FindByExamIDWithQuestions(examID)
	if err != nil {
		log.Error().Err(err).Str("examID", examID.String()).Msg("CanAccess: failed to load stages")
		return false, fmt.Errorf("error loading stages for exam %s: %w", examID, err)
	}

	// A missing predecessor (legacy order gap) is fail-open: the gate papers
	// over authoring gaps rather than locking students out.
	prev := stageByOrder(stages, stageOrder-1)
	if prev == nil {
		return true, nil
	}

	sessions, err := s.sessionRepo.FindCompletedWithAnswers(studentID, examID)
	if err != nil {
		return false, fmt.Errorf("error loading sessions for student %s: %w", studentID, err)
	}

	outcomes := stageOutcomes(stages, sessions)
	return outcomes[prev.StageOrder].passed, nil
}

func (s *accessService) AccessibleStages(studentID, examID uuid.UUID) ([]int, error) {
	stages, err := s.stageRepo.FindByExamIDWithQuestions(examID)
	if err != nil {
		return nil, fmt.Errorf("error loading stages for exam %s: %w", examID, err)
	}
	if len(stages) == 0 {
		return []int{}, nil
	}

	sessions, err := s.sessionRepo.FindCompletedWithAnswers(studentID, examID)
	if err != nil {
		return nil, fmt.Errorf("error loading sessions for student %s: %w", studentID, err)
	}

	outcomes := stageOutcomes(stages, sessions)

	open := accessiblePrefix(stages, outcomes)
	accessible := make([]int, 0, len(open))
	for _, stage := range stages {
		if open[stage.StageOrder] {
			accessible = append(accessible, stage.StageOrder)
		}
	}
	return accessible, nil
}

// accessiblePrefix walks stages in order: every passed stage stays open and
// opens the next one; the first not-yet-passed stage is open to attempt and
// nothing beyond it is. stages must be sorted by StageOrder.
//
// Unlike CanAccess, the walk never skips past an unpassed stage, even when a
// later stage's immediate predecessor order is missing: for orders {1,3}
// with 1 unpassed, CanAccess(3) fails open but 3 is not in the prefix. Both
// behaviors are deliberate; keep them independent.
func accessiblePrefix(stages []model.Stage, outcomes map[int]stageOutcome) map[int]bool {
	open := make(map[int]bool, len(stages))
	for _, stage := range stages {
		open[stage.StageOrder] = true
		if !outcomes[stage.StageOrder].passed {
			break
		}
	}
	return open
}
