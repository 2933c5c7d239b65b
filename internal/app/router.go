package app

import (
	"lang_exam_backend/docs"
	"lang_exam_backend/internal/config"
	"lang_exam_backend/internal/middleware"
	"lang_exam_backend/internal/model"

	"lang_exam_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// 考生/通用 授权接口
		a.registerLearnerRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 已发布试卷
	rg.GET("/exams", c.exam.ListPublishedExams)
	rg.GET("/exams/:id", c.exam.GetLearnerExam)

	// 答题
	rg.POST("/attempts", c.attempt.StartAttempt)
	rg.GET("/attempts", c.attempt.ListAttempts)
	rg.PUT("/attempts/:id/answers", c.attempt.SaveAnswer)
	rg.POST("/attempts/:id/submit", c.attempt.SubmitAttempt)
	rg.GET("/attempts/:id/result", c.attempt.GetResult)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		// 试卷管理
		teacher.POST("/exams", c.exam.CreateExam)
		teacher.GET("/exams", c.exam.ListExams)
		teacher.GET("/exams/:id", c.exam.GetExam)
		teacher.PUT("/exams/:id", c.exam.UpdateExam)
		teacher.DELETE("/exams/:id", c.exam.DeleteExam)
		teacher.GET("/exams/:id/validate", c.exam.ValidateExam)
		teacher.POST("/exams/:id/publish", c.exam.PublishExam)
		teacher.POST("/exams/:id/unpublish", c.exam.UnpublishExam)

		// 分区管理
		teacher.POST("/exams/:id/sections", c.exam.CreateSection)
		teacher.DELETE("/sections/:sectionId", c.exam.DeleteSection)

		// 题目管理
		teacher.POST("/sections/:sectionId/questions", c.exam.CreateQuestion)
		teacher.PUT("/questions/:questionId", c.exam.UpdateQuestion)
		teacher.DELETE("/questions/:questionId", c.exam.DeleteQuestion)
		teacher.GET("/question-types", c.exam.ListQuestionTypes)

		// 判卷管理
		teacher.POST("/attempts/:id/rescore", c.attempt.RescoreAttempt)
		teacher.PUT("/attempts/:id/answers/:answerId/score", c.attempt.ManualScore)
	}
}
