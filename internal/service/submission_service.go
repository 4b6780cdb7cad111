package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/internal/dto"
	"github.com/medassess/stagewise/internal/model"
	"github.com/medassess/stagewise/internal/repository"
	"github.com/medassess/stagewise/internal/scoring"
)

// SubmissionService owns the lifecycle of a stage attempt: begin-or-resume,
// answer persistence, completion marking, and review of the latest completed
// attempt.
type SubmissionService interface {
	BeginOrResume(req dto.BeginStageDTO) (*dto.BeginStageResponseDTO, error)
	SubmitStage(req dto.SubmitStageDTO) (*dto.StageResultDTO, error)
	Review(studentID, examID, stageID uuid.UUID) (*dto.ReviewDTO, error)
}

type submissionService struct {
	stageRepo   repository.StageRepository
	sessionRepo repository.SessionRepository
	answerRepo  repository.AnswerRepository
	accessSvc   AccessService
	transactor  repository.Transactor // one transaction spans session find-or-create, upsert, completion
}

func NewSubmissionService(
	stageRepo repository.StageRepository,
	sessionRepo repository.SessionRepository,
	answerRepo repository.AnswerRepository,
	accessSvc AccessService,
	transactor repository.Transactor,
) SubmissionService {
	return &submissionService{
		stageRepo:   stageRepo,
		sessionRepo: sessionRepo,
		answerRepo:  answerRepo,
		accessSvc:   accessSvc,
		transactor:  transactor,
	}
}

func (s *submissionService) BeginOrResume(req dto.BeginStageDTO) (*dto.BeginStageResponseDTO, error) {
	stage, err := s.resolveStage(req.StageID, req.ExamID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(req.StudentID, req.ExamID, stage.StageOrder); err != nil {
		return nil, err
	}

	resumed := true
	session, err := s.sessionRepo.FindActive(nil, req.StudentID, req.ExamID, stage.StageOrder)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		resumed = false
		session = &model.ExamSession{
			StudentID:    req.StudentID,
			ExamID:       req.ExamID,
			CurrentStage: stage.StageOrder,
			Status:       model.SessionInProgress,
			StartTime:    time.Now(),
		}
		createErr := s.sessionRepo.Create(nil, session)
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			// Lost the create race against a concurrent begin: the unique
			// index rejected a second in_progress session, so resume the one
			// that won.
			session, err = s.sessionRepo.FindActive(nil, req.StudentID, req.ExamID, stage.StageOrder)
			if err != nil {
				return nil, fmt.Errorf("error looking up active session: %w", err)
			}
			resumed = true
		} else if createErr != nil {
			log.Error().Err(createErr).Str("studentID", req.StudentID.String()).
				Int("stageOrder", stage.StageOrder).Msg("BeginOrResume: failed to create session")
			return nil, fmt.Errorf("failed to create session: %w", createErr)
		}
	} else if err != nil {
		return nil, fmt.Errorf("error looking up active session: %w", err)
	}

	// Elapsed time is not persisted: a resumed attempt restarts the countdown
	// from the stage's full duration.
	return &dto.BeginStageResponseDTO{
		SessionID:        session.SessionID,
		StageOrder:       stage.StageOrder,
		CountdownSeconds: stage.TimeLimit * 60,
		Resumed:          resumed,
		StartTime:        session.StartTime,
	}, nil
}

func (s *submissionService) SubmitStage(req dto.SubmitStageDTO) (*dto.StageResultDTO, error) {
	stage, err := s.stageRepo.FindByIDWithQuestions(req.StageID)
	if err != nil {
		log.Warn().Err(err).Str("stageID", req.StageID.String()).Msg("SubmitStage: stage not found")
		return nil, fmt.Errorf("stage not found with ID %s: %w", req.StageID, err)
	}
	if stage.ExamID != req.ExamID {
		return nil, ErrStageExamMismatch
	}
	if err := s.requireAccess(req.StudentID, req.ExamID, stage.StageOrder); err != nil {
		return nil, err
	}

	questions := scoring.FromModels(stage.Questions)
	known := make(map[uuid.UUID]scoring.Question, len(questions))
	for _, q := range questions {
		known[q.ID] = q
	}

	// Correctness is recomputed here from the stored answer key; the
	// client-supplied is_correct flag is never consulted.
	submitted := make(map[uuid.UUID]scoring.Selection, len(req.Answers))
	for _, a := range req.Answers {
		if _, ok := known[a.QuestionID]; !ok {
			log.Warn().Str("questionID", a.QuestionID.String()).Str("stageID", req.StageID.String()).
				Msg("SubmitStage: answer for a question not in this stage, skipping")
			continue
		}
		if len(a.Selected) > 0 {
			submitted[a.QuestionID] = scoring.NewSelection(a.Selected...)
		} else {
			submitted[a.QuestionID] = scoring.NewSelection(a.SelectedAnswer)
		}
	}

	result := scoring.Score(questions, submitted, stage.PassingScore)
	now := time.Now()

	var sessionID uuid.UUID
	err = s.transactor.Transaction(func(tx *gorm.DB) error {
		session, findErr := s.sessionRepo.FindActive(tx, req.StudentID, req.ExamID, stage.StageOrder)
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			session = &model.ExamSession{
				StudentID:    req.StudentID,
				ExamID:       req.ExamID,
				CurrentStage: stage.StageOrder,
				Status:       model.SessionInProgress,
				StartTime:    now,
			}
			if createErr := s.sessionRepo.Create(tx, session); createErr != nil {
				return fmt.Errorf("failed to create session: %w", createErr)
			}
		} else if findErr != nil {
			return fmt.Errorf("error looking up active session: %w", findErr)
		}
		sessionID = session.SessionID

		answers := make([]model.StudentAnswer, 0, len(submitted))
		for questionID, sel := range submitted {
			answers = append(answers, model.StudentAnswer{
				SessionID:      sessionID,
				QuestionID:     questionID,
				SelectedAnswer: sel.Encode(),
				IsCorrect:      scoring.Correct(known[questionID].Key, sel),
				AnsweredAt:     now,
			})
		}
		if upsertErr := s.answerRepo.UpsertAll(tx, answers); upsertErr != nil {
			return fmt.Errorf("failed to save answers: %w", upsertErr)
		}

		return s.sessionRepo.MarkCompleted(tx, sessionID, now)
	})
	if err != nil {
		// The transaction rolled back whole: the session is still in_progress
		// and the submission can be retried safely.
		log.Error().Err(err).Str("stageID", req.StageID.String()).Msg("SubmitStage: transaction failed")
		return nil, err
	}

	log.Info().Str("sessionID", sessionID.String()).Int("percentage", result.Percentage).
		Bool("passed", result.Passed).Msg("Stage attempt completed")

	return &dto.StageResultDTO{
		SessionID:      sessionID,
		StageID:        stage.StageID,
		StageOrder:     stage.StageOrder,
		CorrectCount:   result.CorrectCount,
		TotalQuestions: result.TotalQuestions,
		EarnedPoints:   result.EarnedPoints,
		TotalPoints:    result.TotalPoints,
		Percentage:     result.Percentage,
		PassingScore:   stage.PassingScore,
		Passed:         result.Passed,
		CompletedAt:    now,
	}, nil
}

func (s *submissionService) Review(studentID, examID, stageID uuid.UUID) (*dto.ReviewDTO, error) {
	session, err := s.sessionRepo.FindLatestCompleted(studentID, examID)
	if err != nil {
		log.Warn().Err(err).Str("studentID", studentID.String()).Str("examID", examID.String()).
			Msg("Review: no completed session")
		return nil, fmt.Errorf("no completed session found: %w", err)
	}

	stage, err := s.stageRepo.FindByIDWithQuestions(stageID)
	if err != nil {
		return nil, fmt.Errorf("stage not found with ID %s: %w", stageID, err)
	}

	answers, err := s.answerRepo.FindBySession(session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("error fetching answers for session %s: %w", session.SessionID, err)
	}
	answerByQuestion := make(map[uuid.UUID]model.StudentAnswer, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a
	}

	resp := &dto.ReviewDTO{Answers: make([]dto.ReviewAnswerDTO, 0, len(stage.Questions))}
	if err := copier.Copy(&resp.Session, session); err != nil {
		return nil, fmt.Errorf("error preparing review response: %w", err)
	}

	for _, question := range stage.Questions {
		answer, ok := answerByQuestion[question.QuestionID]
		if !ok {
			continue
		}
		row := dto.ReviewAnswerDTO{
			QuestionID:     question.QuestionID,
			QuestionText:   question.QuestionText,
			CorrectAnswer:  scoring.ParseKey(question.CorrectAnswer).Values(),
			Explanation:    question.Explanation,
			Points:         question.Points,
			SelectedAnswer: answer.SelectedAnswer,
			IsCorrect:      answer.IsCorrect,
			AnsweredAt:     answer.AnsweredAt,
		}
		for _, opt := range question.Options {
			var optDTO dto.ReviewOptionDTO
			copier.Copy(&optDTO, &opt)
			row.Options = append(row.Options, optDTO)
		}
		resp.Answers = append(resp.Answers, row)
	}
	return resp, nil
}

func (s *submissionService) resolveStage(stageID, examID uuid.UUID) (*model.Stage, error) {
	stage, err := s.stageRepo.FindByID(stageID)
	if err != nil {
		return nil, fmt.Errorf("stage not found with ID %s: %w", stageID, err)
	}
	if stage.ExamID != examID {
		return nil, ErrStageExamMismatch
	}
	return stage, nil
}

func (s *submissionService) requireAccess(studentID, examID uuid.UUID, stageOrder int) error {
	ok, err := s.accessSvc.CanAccess(studentID, examID, stageOrder)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStageLocked
	}
	return nil
}
