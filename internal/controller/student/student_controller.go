package student

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/internal/dto"
	"github.com/medassess/stagewise/internal/service"
)

type StudentExamController struct {
	examService       service.StudentExamService
	progressService   service.ProgressService
	accessService     service.AccessService
	submissionService service.SubmissionService
}

func NewStudentExamController(
	es service.StudentExamService,
	ps service.ProgressService,
	as service.AccessService,
	ss service.SubmissionService,
) *StudentExamController {
	return &StudentExamController{
		examService:       es,
		progressService:   ps,
		accessService:     as,
		submissionService: ss,
	}
}

func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}

// GetExams godoc
// @Summary (Student) List published exams
// @Description Get all published exams with stage count and total time.
// @Tags Student - Exams
// @Produce json
// @Success 200 {array} dto.ExamSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams [get]
func (c *StudentExamController) GetExams(ctx *gin.Context) {
	exams, err := c.examService.GetPublishedExams()
	if err != nil {
		log.Error().Err(err).Msg("GetExams: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve exams", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// GetExamDetails godoc
// @Summary (Student) Get exam details
// @Description Get an exam with its stages ordered by stage order. Question bodies are not included.
// @Tags Student - Exams
// @Produce json
// @Param exam_id path string true "Exam ID (UUID)"
// @Success 200 {object} dto.ExamDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid exam ID format"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/details/{exam_id} [get]
func (c *StudentExamController) GetExamDetails(ctx *gin.Context) {
	examID, ok := parseUUIDParam(ctx, "exam_id")
	if !ok {
		return
	}
	details, err := c.examService.GetExamDetails(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Exam not found"})
			return
		}
		log.Error().Err(err).Str("examID", examID.String()).Msg("GetExamDetails: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve exam", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, details)
}

// GetStageDetails godoc
// @Summary (Student) Get a stage with its questions
// @Description Get a stage including questions and options. Answer keys and option correctness are stripped.
// @Tags Student - Exams
// @Produce json
// @Param stage_id path string true "Stage ID (UUID)"
// @Success 200 {object} dto.StageDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid stage ID format"
// @Failure 404 {object} dto.ErrorResponse "Stage not found"
// @Router /exams/stages/{stage_id} [get]
func (c *StudentExamController) GetStageDetails(ctx *gin.Context) {
	stageID, ok := parseUUIDParam(ctx, "stage_id")
	if !ok {
		return
	}
	stage, err := c.examService.GetStageDetails(stageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Stage not found"})
			return
		}
		log.Error().Err(err).Str("stageID", stageID.String()).Msg("GetStageDetails: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve stage", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, stage)
}

// GetExamProgress godoc
// @Summary (Student) Get session rows for an exam
// @Description Get all exam sessions a student has for an exam, newest first.
// @Tags Student - Progress
// @Produce json
// @Param exam_id path string true "Exam ID (UUID)"
// @Param student_id path string true "Student ID (UUID)"
// @Success 200 {array} dto.SessionDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams/{exam_id}/progress/{student_id} [get]
func (c *StudentExamController) GetExamProgress(ctx *gin.Context) {
	examID, ok := parseUUIDParam(ctx, "exam_id")
	if !ok {
		return
	}
	studentID, ok := parseUUIDParam(ctx, "student_id")
	if !ok {
		return
	}
	sessions, err := c.progressService.SessionsForExam(studentID, examID)
	if err != nil {
		log.Error().Err(err).Str("examID", examID.String()).Str("studentID", studentID.String()).Msg("GetExamProgress: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve progress", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, sessions)
}

// GetExamAccess godoc
// @Summary (Student) Get stage access and progress for an exam
// @Description Get per-stage status (locked, available, in_progress, passed, failed) and the overall progress percentage.
// @Tags Student - Progress
// @Produce json
// @Param exam_id path string true "Exam ID (UUID)"
// @Param student_id path string true "Student ID (UUID)"
// @Success 200 {object} dto.ExamProgressDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{exam_id}/access/{student_id} [get]
func (c *StudentExamController) GetExamAccess(ctx *gin.Context) {
	examID, ok := parseUUIDParam(ctx, "exam_id")
	if !ok {
		return
	}
	studentID, ok := parseUUIDParam(ctx, "student_id")
	if !ok {
		return
	}
	progress, err := c.progressService.ExamProgress(studentID, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Exam not found"})
			return
		}
		log.Error().Err(err).Str("examID", examID.String()).Str("studentID", studentID.String()).Msg("GetExamAccess: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve stage access", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, progress)
}

// BeginStage godoc
// @Summary (Student) Begin or resume a stage attempt
// @Description Find the in-progress session for the stage or create one. The countdown restarts from the full time limit on resume.
// @Tags Student - Attempts
// @Accept json
// @Produce json
// @Param begin_data body dto.BeginStageDTO true "Student, exam and stage identifiers"
// @Success 200 {object} dto.BeginStageResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Stage is locked"
// @Failure 404 {object} dto.ErrorResponse "Stage not found"
// @Router /exams/begin-stage [post]
func (c *StudentExamController) BeginStage(ctx *gin.Context) {
	var req dto.BeginStageDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.submissionService.BeginOrResume(req)
	if err != nil {
		c.writeSubmissionError(ctx, err, "BeginStage")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitStage godoc
// @Summary (Student) Submit answers for a stage
// @Description Score the submitted answers server-side, persist them and complete the session. Client-reported correctness is ignored.
// @Tags Student - Attempts
// @Accept json
// @Produce json
// @Param submission_data body dto.SubmitStageDTO true "Student, exam, stage and answers"
// @Success 200 {object} dto.StageResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or stage does not belong to exam"
// @Failure 403 {object} dto.ErrorResponse "Stage is locked"
// @Failure 404 {object} dto.ErrorResponse "Stage not found"
// @Failure 500 {object} dto.ErrorResponse "Error processing submission"
// @Router /exams/submit-stage [post]
func (c *StudentExamController) SubmitStage(ctx *gin.Context) {
	var req dto.SubmitStageDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitStage: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	log.Info().
		Str("studentID", req.StudentID.String()).
		Str("stageID", req.StageID.String()).
		Int("answerCount", len(req.Answers)).
		Msg("Received stage submission")

	result, err := c.submissionService.SubmitStage(req)
	if err != nil {
		c.writeSubmissionError(ctx, err, "SubmitStage")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetReview godoc
// @Summary (Student) Review the latest completed attempt for a stage
// @Description Get the student's answers for the stage, with per-question correctness, the correct answers and the full option list.
// @Tags Student - Attempts
// @Produce json
// @Param student_id query string true "Student ID (UUID)"
// @Param exam_id query string true "Exam ID (UUID)"
// @Param stage_id query string true "Stage ID (UUID)"
// @Success 200 {object} dto.ReviewDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid or missing query parameters"
// @Failure 404 {object} dto.ErrorResponse "No completed attempt found"
// @Router /exams/review [get]
func (c *StudentExamController) GetReview(ctx *gin.Context) {
	studentID, err := uuid.Parse(ctx.Query("student_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid student_id query parameter"})
		return
	}
	examID, err := uuid.Parse(ctx.Query("exam_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid exam_id query parameter"})
		return
	}
	stageID, err := uuid.Parse(ctx.Query("stage_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid stage_id query parameter"})
		return
	}

	review, err := c.submissionService.Review(studentID, examID, stageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "No completed attempt found for this stage"})
			return
		}
		log.Error().Err(err).Str("stageID", stageID.String()).Msg("GetReview: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve review", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, review)
}

func (c *StudentExamController) writeSubmissionError(ctx *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, service.ErrStageLocked):
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: "Stage is locked; pass the previous stage first"})
	case errors.Is(err, service.ErrStageExamMismatch):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Stage does not belong to the given exam"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Stage not found"})
	default:
		log.Error().Err(err).Msg(op + ": Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to process stage attempt", Details: []string{err.Error()}})
	}
}
