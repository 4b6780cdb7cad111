package instructor

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/internal/dto"
	"github.com/medassess/stagewise/internal/middleware"
	"github.com/medassess/stagewise/internal/service"
)

type InstructorExamController struct {
	examService service.InstructorExamService
}

func NewInstructorExamController(es service.InstructorExamService) *InstructorExamController {
	return &InstructorExamController{examService: es}
}

// CreateExam godoc
// @Summary (Instructor) Create an exam
// @Description Create an exam with its stages, questions and options in one request. Stage orders must be dense starting at 1.
// @Tags Instructor - Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam_data body dto.CreateExamDTO true "Exam with stages, questions and options"
// @Success 201 {object} dto.ExamDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /instructor/exams [post]
func (c *InstructorExamController) CreateExam(ctx *gin.Context) {
	instructorID, ok := middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing authenticated user"})
		return
	}

	var req dto.CreateExamDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateExam: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	log.Info().Str("instructorID", instructorID.String()).Str("name", req.Name).Int("stageCount", len(req.Stages)).Msg("Creating exam")

	exam, err := c.examService.CreateExam(instructorID, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidExamStructure) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Str("instructorID", instructorID.String()).Msg("CreateExam: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create exam", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, exam)
}

// UpdateExam godoc
// @Summary (Instructor) Update exam metadata
// @Description Update name, description or published flag of an exam the instructor owns.
// @Tags Instructor - Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam_id path string true "Exam ID (UUID)"
// @Param exam_data body dto.UpdateExamDTO true "Fields to update"
// @Success 200 {object} dto.ExamDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Exam belongs to a different instructor"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /instructor/exams/{exam_id} [put]
func (c *InstructorExamController) UpdateExam(ctx *gin.Context) {
	instructorID, ok := middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing authenticated user"})
		return
	}

	examID, err := uuid.Parse(ctx.Param("exam_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid exam_id format"})
		return
	}

	var req dto.UpdateExamDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	exam, err := c.examService.UpdateExam(instructorID, examID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotOwner):
			ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: "Exam belongs to a different instructor"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Exam not found"})
		default:
			log.Error().Err(err).Str("examID", examID.String()).Msg("UpdateExam: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to update exam", Details: []string{err.Error()}})
		}
		return
	}
	ctx.JSON(http.StatusOK, exam)
}
