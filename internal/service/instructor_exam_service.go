package service

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/medassess/stagewise/internal/dto"
	"github.com/medassess/stagewise/internal/model"
	"github.com/medassess/stagewise/internal/repository"
)

// InstructorExamService handles exam authoring. Exams are created whole
// (stages, questions, options in one payload); metadata and the published
// flag can be updated afterwards. There is no delete path.
type InstructorExamService interface {
	CreateExam(instructorID uuid.UUID, req dto.CreateExamDTO) (*dto.ExamDetailDTO, error)
	UpdateExam(instructorID, examID uuid.UUID, req dto.UpdateExamDTO) (*dto.ExamDetailDTO, error)
}

type instructorExamService struct {
	examRepo repository.ExamRepository
}

func NewInstructorExamService(examRepo repository.ExamRepository) InstructorExamService {
	return &instructorExamService{examRepo: examRepo}
}

func (s *instructorExamService) CreateExam(instructorID uuid.UUID, req dto.CreateExamDTO) (*dto.ExamDetailDTO, error) {
	if err := validateStageOrders(req.Stages); err != nil {
		return nil, err
	}

	exam := model.Exam{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   instructorID,
		IsPublished: req.IsPublished,
	}

	for _, stageReq := range req.Stages {
		stage := model.Stage{
			Name:         stageReq.Name,
			Description:  stageReq.Description,
			StageOrder:   stageReq.StageOrder,
			PassingScore: stageReq.PassingScore,
			TimeLimit:    stageReq.TimeLimit,
		}
		for _, questionReq := range stageReq.Questions {
			question, err := buildQuestion(stageReq.StageOrder, questionReq)
			if err != nil {
				return nil, err
			}
			stage.Questions = append(stage.Questions, question)
		}
		exam.Stages = append(exam.Stages, stage)
	}

	if err := s.examRepo.Create(&exam); err != nil {
		log.Error().Err(err).Str("instructorID", instructorID.String()).Msg("CreateExam: failed to create exam")
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}
	log.Info().Str("examID", exam.ExamID.String()).Int("stages", len(exam.Stages)).Msg("Exam created")

	var resp dto.ExamDetailDTO
	if err := copier.Copy(&resp, &exam); err != nil {
		return nil, fmt.Errorf("error preparing exam response: %w", err)
	}
	return &resp, nil
}

func (s *instructorExamService) UpdateExam(instructorID, examID uuid.UUID, req dto.UpdateExamDTO) (*dto.ExamDetailDTO, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		return nil, fmt.Errorf("exam not found with ID %s: %w", examID, err)
	}
	if exam.CreatedBy != instructorID {
		return nil, ErrNotOwner
	}

	exam.Name = req.Name
	exam.Description = req.Description
	if req.IsPublished != nil {
		exam.IsPublished = *req.IsPublished
	}
	if err := s.examRepo.Update(exam); err != nil {
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}

	var resp dto.ExamDetailDTO
	if err := copier.Copy(&resp, exam); err != nil {
		return nil, fmt.Errorf("error preparing exam response: %w", err)
	}
	return &resp, nil
}

// validateStageOrders requires a dense 1..N ordering. Gaps are papered over
// at access time for legacy data, but new exams don't get to create them.
func validateStageOrders(stages []dto.CreateStageDTO) error {
	seen := make(map[int]bool, len(stages))
	for _, stage := range stages {
		if seen[stage.StageOrder] {
			return fmt.Errorf("%w: duplicate stage_order %d", ErrInvalidExamStructure, stage.StageOrder)
		}
		seen[stage.StageOrder] = true
	}
	for order := 1; order <= len(stages); order++ {
		if !seen[order] {
			return fmt.Errorf("%w: stage orders must be dense starting at 1; missing order %d", ErrInvalidExamStructure, order)
		}
	}
	return nil
}

func buildQuestion(stageOrder int, req dto.CreateQuestionDTO) (model.Question, error) {
	hasSingle := req.CorrectAnswer != ""
	hasMulti := len(req.CorrectAnswers) > 0
	if hasSingle == hasMulti {
		return model.Question{}, fmt.Errorf(
			"%w: question %q in stage %d must set exactly one of correct_answer or correct_answers",
			ErrInvalidExamStructure, req.QuestionText, stageOrder)
	}

	var key interface{} = req.CorrectAnswer
	if hasMulti {
		key = req.CorrectAnswers
	}
	rawKey, err := json.Marshal(key)
	if err != nil {
		return model.Question{}, fmt.Errorf("failed to encode answer key: %w", err)
	}

	question := model.Question{
		QuestionText:  req.QuestionText,
		QuestionType:  req.QuestionType,
		CorrectAnswer: datatypes.JSON(rawKey),
		Explanation:   req.Explanation,
		Points:        req.Points,
	}

	correctOptions := 0
	for _, optionReq := range req.Options {
		question.Options = append(question.Options, model.QuestionOption{
			OptionLetter:  optionReq.OptionLetter,
			OptionText:    optionReq.OptionText,
			IsCorrect:     optionReq.IsCorrect,
			Misconception: optionReq.Misconception,
		})
		if optionReq.IsCorrect {
			correctOptions++
		}
	}

	if req.QuestionType == model.QuestionTypeMultipleChoice && hasSingle && correctOptions != 1 {
		return model.Question{}, fmt.Errorf(
			"%w: multiple-choice question %q must mark exactly one option correct, got %d",
			ErrInvalidExamStructure, req.QuestionText, correctOptions)
	}
	return question, nil
}
