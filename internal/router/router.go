package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/college-enrolment-api/internal/handler"
	"github.com/noah-isme/college-enrolment-api/internal/middleware"
	"github.com/noah-isme/college-enrolment-api/internal/service"
	"github.com/noah-isme/college-enrolment-api/pkg/config"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler   *handler.StudentHandler
	CatalogHandler   *handler.CatalogHandler
	EnrolmentHandler *handler.EnrolmentHandler
	AuditHandler     *handler.AuditHandler
	ReportHandler    *handler.ReportHandler
	AnalyticsHandler *handler.AnalyticsHandler
	MetricsHandler   *handler.MetricsHandler
	Metrics          *service.MetricsService
	Tokens           middleware.TokenValidator
}

// Register wires the HTTP routes into the gin engine.
func Register(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	if deps.MetricsHandler != nil {
		r.GET("/health", deps.MetricsHandler.Health)
		r.GET("/ready", deps.MetricsHandler.Ready)
		r.GET("/metrics", deps.MetricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	if deps.Metrics != nil {
		api.Use(middleware.Metrics(deps.Metrics))
	}
	if deps.Tokens != nil {
		api.Use(middleware.OptionalJWT(deps.Tokens))
	}

	// Mutations only demand a token when AUTH_REQUIRED is set.
	write := func(c *gin.Context) { c.Next() }
	if cfg.Auth.Required && deps.Tokens != nil {
		write = middleware.JWT(deps.Tokens)
	}

	if h := deps.StudentHandler; h != nil {
		students := api.Group("/students")
		students.GET("", h.List)
		students.GET("/:id", h.Get)
		students.POST("", write, h.Create)
	}

	if h := deps.CatalogHandler; h != nil {
		api.GET("/courses", h.ListCourses)
		api.POST("/courses", write, h.CreateCourse)

		offerings := api.Group("/offerings")
		offerings.GET("", h.ListOfferings)
		offerings.POST("", write, h.CreateOffering)
		offerings.GET("/:id/timetable", h.ListTimetable)
		offerings.POST("/:id/timetable", write, h.AddTimetableSlot)
	}

	if h := deps.EnrolmentHandler; h != nil {
		enrolments := api.Group("/enrolments", write)
		enrolments.POST("", h.Enrol)
		enrolments.POST("/:id/withdraw", h.Withdraw)
	}

	if h := deps.AuditHandler; h != nil {
		api.GET("/audit-logs", h.List)
	}

	if h := deps.ReportHandler; h != nil {
		reports := api.Group("/reports")
		reports.GET("/course-capacity", h.CourseCapacity)
		reports.GET("/course-capacity/export", h.ExportCourseCapacity)
	}

	if h := deps.AnalyticsHandler; h != nil {
		ai := api.Group("/ai", h.RequireEnabled())
		ai.GET("/outcomes/pass-rate", h.PassRate)
		ai.GET("/outcomes/average-grade", h.AverageGrade)
		ai.GET("/demand-forecast", h.DemandForecast)
		ai.GET("/success-signals", h.SuccessSignals)
		ai.GET("/anomalies", h.Anomalies)
		ai.GET("/excellence", h.Excellence)
	}
}
