package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/handler"
	"github.com/coursemate/coursemate-api/internal/middleware"
	"github.com/coursemate/coursemate-api/internal/service"
	"github.com/coursemate/coursemate-api/pkg/config"
	"github.com/coursemate/coursemate-api/pkg/logger"
	corsmiddleware "github.com/coursemate/coursemate-api/pkg/middleware/cors"
	reqidmiddleware "github.com/coursemate/coursemate-api/pkg/middleware/requestid"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Taxonomy   *handler.TaxonomyHandler
	Students   *handler.StudentHandler
	Professors *handler.ProfessorHandler
	Materials  *handler.MaterialHandler
	Quizzes    *handler.QuizHandler
	Stats      *handler.StatsHandler
	Metrics    *handler.MetricsHandler
}

// New assembles the gin engine with middleware and all routes.
func New(cfg *config.Config, logr *zap.Logger, h Handlers, professors *service.ProfessorService, metrics *service.MetricsService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/universities", h.Taxonomy.ListUniversities)
		api.GET("/universities/:id/majors", h.Taxonomy.ListMajors)
		api.GET("/courses", h.Taxonomy.ListCourses)

		api.POST("/students/register", h.Students.Register)

		api.POST("/quizzes", h.Quizzes.Generate)
		api.POST("/quizzes/:id/answers", h.Quizzes.Submit)
		api.GET("/quizzes/history", h.Quizzes.History)

		// Upload authenticates inside the handler so the professor code can
		// arrive as a multipart field as well as a header.
		api.POST("/materials", h.Materials.Upload)

		materials := api.Group("/materials", middleware.ProfessorAuth(professors))
		{
			materials.GET("/mine", h.Materials.ListMine)
			materials.DELETE("/:id", h.Materials.Delete)
		}

		admin := api.Group("/admin", middleware.AdminAuth(cfg.Telegram.AdminCode))
		{
			admin.POST("/universities", h.Taxonomy.CreateUniversity)
			admin.PUT("/universities/:id", h.Taxonomy.RenameUniversity)
			admin.POST("/majors", h.Taxonomy.CreateMajor)
			admin.POST("/courses", h.Taxonomy.CreateCourse)
			admin.DELETE("/courses/:id", h.Taxonomy.DeleteCourse)

			admin.GET("/students/pending", h.Students.ListPending)
			admin.POST("/students/:id/approve", h.Students.Approve)
			admin.DELETE("/students/:id", h.Students.Reject)

			admin.GET("/professors", h.Professors.List)
			admin.POST("/professors", h.Professors.Create)
			admin.PUT("/professors/:id/course", h.Professors.Reassign)

			admin.GET("/stats", h.Stats.Totals)
			admin.GET("/exports/attempts.csv", h.Stats.ExportCSV)
			admin.GET("/exports/attempts.pdf", h.Stats.ExportPDF)
		}
	}

	return r
}
