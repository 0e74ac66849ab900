package app

import (
	"lms_console_backend/docs"
	"lms_console_backend/pkg/monitoring"
	"lms_console_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	registerAdminRoutes(router.Group("/api/admin", security.NoStore()), c)
}

// registerAdminRoutes 控制台接口，认证由网关负责
func registerAdminRoutes(admin *gin.RouterGroup, c *controllers) {
	admin.GET("/courses", c.course.ListCourses)

	assessments := admin.Group("/assessments")
	{
		assessments.GET("", c.assessment.ListAssessments)
		assessments.POST("", c.assessment.CreateAssessment)
		assessments.GET("/board", c.assessment.GetBoard)
		assessments.GET("/stats", c.assessment.GetStats)

		// 批量导入
		assessments.POST("/import", security.BodyLimit(c.importer.BodyLimit), c.importer.Import)
		assessments.GET("/import/template", c.importer.Template)
		assessments.GET("/imports/:batch", c.importer.DownloadArchive)
		assessments.DELETE("/imports/:batch", c.importer.DeleteArchive)

		assessments.GET("/:id", c.assessment.GetAssessment)
		assessments.PUT("/:id", c.assessment.UpdateAssessment)
		assessments.DELETE("/:id", c.assessment.DeleteAssessment)
		assessments.DELETE("/:id/questions", c.assessment.ClearQuestions)
		assessments.DELETE("/:id/rubric", c.assessment.ClearRubric)

		assessments.POST("/:id/grade", c.grading.Grade)

		assessments.GET("/:id/submissions", c.submission.ListSubmissions)
		assessments.POST("/:id/submissions", c.submission.Submit)
		assessments.GET("/:id/submissions/export", c.submission.ExportSubmissions)
	}
}
