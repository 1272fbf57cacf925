package api

import (
	"github.com/gin-gonic/gin"

	"github.com/draftline/draftline/internal/api/handler"
	"github.com/draftline/draftline/internal/api/middleware"
	"github.com/draftline/draftline/internal/events"
	"github.com/draftline/draftline/internal/logger"
	"github.com/draftline/draftline/internal/progress"
	"github.com/draftline/draftline/internal/repository"
	"github.com/draftline/draftline/internal/service"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Orchestrator *service.Orchestrator
	Approvals    *service.ApprovalService
	Tracker      *progress.Tracker
	Bus          *events.Bus
	Projects     *repository.ProjectRepository
	Items        *repository.WorkItemRepository
	Jobs         *repository.JobRepository
	Logger       *logger.Logger
	Mode         string
	CORS         middleware.CORSConfig
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps RouterDeps) *gin.Engine {
	// Set Gin mode
	switch deps.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	generateHandler := handler.NewGenerateHandler(deps.Orchestrator, deps.Tracker, deps.Jobs, deps.Logger)
	approvalHandler := handler.NewApprovalHandler(deps.Approvals, deps.Logger)
	projectHandler := handler.NewProjectHandler(deps.Projects, deps.Items, deps.Logger)
	eventsHandler := handler.NewEventsHandler(deps.Bus, deps.Logger)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Projects
		v1.POST("/projects", projectHandler.CreateProject)
		v1.GET("/projects", projectHandler.ListProjects)
		v1.GET("/projects/:project", projectHandler.GetProject)

		// Per-project event stream
		v1.GET("/projects/:project/events", eventsHandler.Stream)

		// Phase-scoped operations
		phases := v1.Group("/projects/:project/phases/:phase")
		{
			phases.POST("/generate", generateHandler.TriggerGenerate)
			phases.GET("/status", generateHandler.GetStatus)
			phases.GET("/jobs", generateHandler.ListJobs)

			phases.POST("/items", projectHandler.AddItems)
			phases.GET("/items", projectHandler.ListItems)

			phases.GET("/records", approvalHandler.ListRecords)
			phases.POST("/approve-all", approvalHandler.ApproveAll)
			phases.POST("/reject-all", approvalHandler.RejectAll)
		}

		// Record decisions
		v1.POST("/records/:id/approve", approvalHandler.Approve)
		v1.POST("/records/:id/reject", approvalHandler.Reject)
		v1.POST("/records/:id/modify", approvalHandler.Modify)
	}

	return r
}
