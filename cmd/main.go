package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/config"
	"github.com/medassess/stagewise/database"
	authctrl "github.com/medassess/stagewise/internal/controller/auth"
	instructorctrl "github.com/medassess/stagewise/internal/controller/instructor"
	studentctrl "github.com/medassess/stagewise/internal/controller/student"
	"github.com/medassess/stagewise/internal/logger"
	"github.com/medassess/stagewise/internal/middleware"
	"github.com/medassess/stagewise/internal/model"
	"github.com/medassess/stagewise/internal/repository"
	"github.com/medassess/stagewise/internal/service"
)

// @title Staged Assessment API
// @version 1.0
// @description API for staged exams: students unlock each stage by passing the previous one, submissions are scored server-side.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories Layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewExamRepository,
			repository.NewStageRepository,
			repository.NewSessionRepository,
			repository.NewAnswerRepository,
			repository.NewTransactor,
		),

		// Services Layer
		fx.Provide(
			service.NewAuthService,
			service.NewStudentExamService,
			service.NewInstructorExamService,
			service.NewAccessService,
			service.NewProgressService,
			service.NewSubmissionService,
		),

		// API Controllers Layer
		fx.Provide(
			authctrl.NewAuthController,
			studentctrl.NewStudentExamController,
			instructorctrl.NewInstructorExamController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.DebugMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	authCtrl *authctrl.AuthController,
	studentCtrl *studentctrl.StudentExamController,
	instructorCtrl *instructorctrl.InstructorExamController,
) {
	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authCtrl.Register)
		authGroup.POST("/login", authCtrl.Login)
	}

	examsGroup := api.Group("/exams")
	{
		examsGroup.GET("", studentCtrl.GetExams)
		examsGroup.GET("/details/:exam_id", studentCtrl.GetExamDetails)
		examsGroup.GET("/stages/:stage_id", studentCtrl.GetStageDetails)
		examsGroup.GET("/:exam_id/progress/:student_id", studentCtrl.GetExamProgress)
		examsGroup.GET("/:exam_id/access/:student_id", studentCtrl.GetExamAccess)
		examsGroup.POST("/begin-stage", studentCtrl.BeginStage)
		examsGroup.POST("/submit-stage", studentCtrl.SubmitStage)
		examsGroup.GET("/review", studentCtrl.GetReview)
	}

	instructorGroup := api.Group("/instructor",
		middleware.RequireAuth(cfg),
		middleware.RequireRole(model.RoleInstructor),
	)
	{
		instructorGroup.POST("/exams", instructorCtrl.CreateExam)
		instructorGroup.PUT("/exams/:exam_id", instructorCtrl.UpdateExam)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Staged assessment API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Exam{},
		&model.Stage{},
		&model.Question{},
		&model.QuestionOption{},
		&model.ExamSession{},
		&model.StudentAnswer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	// One in_progress session per (student, exam, stage); AutoMigrate cannot
	// express a partial index so it is created directly.
	err = db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_active
		 ON exam_sessions (student_id, exam_id, current_stage)
		 WHERE status = 'in_progress'`,
	).Error
	if err != nil {
		log.Error().Err(err).Msg("Failed to create active-session index")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
