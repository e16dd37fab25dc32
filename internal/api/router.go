package api

import (
	"github.com/gin-gonic/gin"

	"github.com/timmy/socialkit/internal/api/handler"
	"github.com/timmy/socialkit/internal/api/middleware"
	"github.com/timmy/socialkit/internal/service"
)

// Dependencies are the services the HTTP layer is built on.
// Templates and Exporter are optional.
type Dependencies struct {
	Sessions  *service.SessionManager
	Templates handler.TemplateSource
	Exporter  *service.KitExporter
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps Dependencies, mode string, cors middleware.CORSConfig) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = service.MaxSourceBytes + (1 << 20)

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler(deps.Sessions, deps.Exporter != nil)
	catalogHandler := handler.NewCatalogHandler(deps.Templates)
	sessionHandler := handler.NewSessionHandler(deps.Sessions, deps.Templates, deps.Exporter)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/platforms", catalogHandler.ListPlatforms)
		v1.GET("/templates", catalogHandler.ListTemplates)

		v1.POST("/sessions", sessionHandler.Create)

		sessions := v1.Group("/sessions/:id")
		sessions.GET("", sessionHandler.Get)
		sessions.DELETE("", sessionHandler.Delete)

		// Inputs
		sessions.POST("/source", sessionHandler.UploadSource)
		sessions.DELETE("/source", sessionHandler.ClearSource)
		sessions.POST("/template", sessionHandler.LoadTemplate)
		sessions.PUT("/brief", sessionHandler.SetBrief)
		sessions.PUT("/theme", sessionHandler.SetTheme)
		sessions.POST("/platforms/all", sessionHandler.SelectAll)
		sessions.POST("/platforms/:pid/toggle", sessionHandler.TogglePlatform)

		// Batch
		sessions.POST("/generate", sessionHandler.Generate)
		sessions.GET("/status", sessionHandler.Status)
		sessions.GET("/events", sessionHandler.Events)
		sessions.POST("/reset", sessionHandler.Reset)

		// Results
		results := sessions.Group("/results/:rid")
		results.POST("/regenerate", sessionHandler.Regenerate)
		results.GET("/download", sessionHandler.Download)
		results.GET("/caption", sessionHandler.Caption)
		results.POST("/export", sessionHandler.Export)
	}

	return r
}
