package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/medassess/stagewise/internal/dto"
	"github.com/medassess/stagewise/internal/repository"
)

// StudentExamService serves the read-only catalog: published exams, exam
// details with ordered stages, and a stage with its questions and options.
type StudentExamService interface {
	GetPublishedExams() ([]dto.ExamSummaryDTO, error)
	GetExamDetails(examID uuid.UUID) (*dto.ExamDetailDTO, error)
	GetStageDetails(stageID uuid.UUID) (*dto.StageDetailDTO, error)
}

type studentExamService struct {
	examRepo  repository.ExamRepository
	stageRepo repository.StageRepository
}

func NewStudentExamService(examRepo repository.ExamRepository, stageRepo repository.StageRepository) StudentExamService {
	return &studentExamService{examRepo: examRepo, stageRepo: stageRepo}
}

func (s *studentExamService) GetPublishedExams() ([]dto.ExamSummaryDTO, error) {
	listings, err := s.examRepo.FindPublished()
	if err != nil {
		log.Error().Err(err).Msg("GetPublishedExams: repository error")
		return nil, fmt.Errorf("error fetching exams: %w", err)
	}

	dtos := make([]dto.ExamSummaryDTO, 0, len(listings))
	for _, listing := range listings {
		dtos = append(dtos, dto.ExamSummaryDTO{
			ExamID:           listing.ExamID,
			Name:             listing.Name,
			Description:      listing.Description,
			InstructorName:   listing.InstructorName,
			StageCount:       listing.StageCount,
			TotalTimeMinutes: listing.TotalTimeMinutes,
			CreatedAt:        listing.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *studentExamService) GetExamDetails(examID uuid.UUID) (*dto.ExamDetailDTO, error) {
	exam, err := s.examRepo.FindByIDWithStages(examID)
	if err != nil {
		log.Warn().Err(err).Str("examID", examID.String()).Msg("GetExamDetails: exam not found")
		return nil, fmt.Errorf("exam not found with ID %s: %w", examID, err)
	}

	var resp dto.ExamDetailDTO
	if err := copier.Copy(&resp, exam); err != nil {
		return nil, fmt.Errorf("error preparing exam details response: %w", err)
	}
	return &resp, nil
}

func (s *studentExamService) GetStageDetails(stageID uuid.UUID) (*dto.StageDetailDTO, error) {
	stage, err := s.stageRepo.FindByIDWithQuestions(stageID)
	if err != nil {
		log.Warn().Err(err).Str("stageID", stageID.String()).Msg("GetStageDetails: stage not found")
		return nil, fmt.Errorf("stage not found with ID %s: %w", stageID, err)
	}

	resp := dto.StageDetailDTO{
		StageID:          stage.StageID,
		ExamID:           stage.ExamID,
		Name:             stage.Name,
		Description:      stage.Description,
		StageOrder:       stage.StageOrder,
		PassingScore:     stage.PassingScore,
		TimeLimit:        stage.TimeLimit,
		CountdownSeconds: stage.TimeLimit * 60,
		Questions:        make([]dto.QuestionDTO, 0, len(stage.Questions)),
	}

	// The answer key and explanation never appear on the taking surface:
	// scoring happens server-side, so the client has no use for them.
	for _, question := range stage.Questions {
		q := dto.QuestionDTO{
			QuestionID:   question.QuestionID,
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			Points:       question.Points,
		}
		for _, opt := range question.Options {
			q.Options = append(q.Options, dto.OptionDTO{
				OptionID:     opt.OptionID,
				OptionLetter: opt.OptionLetter,
				OptionText:   opt.OptionText,
			})
		}
		resp.Questions = append(resp.Questions, q)
	}
	return &resp, nil
}
