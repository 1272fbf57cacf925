package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/draftline/draftline/internal/domain"
	"github.com/draftline/draftline/internal/logger"
	"github.com/draftline/draftline/internal/progress"
	"github.com/draftline/draftline/internal/repository"
	"github.com/draftline/draftline/internal/service"
)

// GenerateHandler handles generation job endpoints.
type GenerateHandler struct {
	orchestrator *service.Orchestrator
	tracker      *progress.Tracker
	jobs         *repository.JobRepository
	logger       *logger.Logger
}

// NewGenerateHandler creates a new generate handler.
// Parameters:
//   - orchestrator: generation orchestrator instance.
//   - tracker: in-memory progress tracker.
//   - jobs: durable job row repository.
//   - log: logger instance.
// Returns:
//   - *GenerateHandler: initialized handler.
func NewGenerateHandler(orchestrator *service.Orchestrator, tracker *progress.Tracker, jobs *repository.JobRepository, log *logger.Logger) *GenerateHandler {
	return &GenerateHandler{
		orchestrator: orchestrator,
		tracker:      tracker,
		jobs:         jobs,
		logger:       log,
	}
}

// GenerateRequest represents the trigger API request body. All fields are
// optional; the zero value runs the default policy.
type GenerateRequest struct {
	Force            bool `json:"force"`
	SkipExisting     bool `json:"skip_existing"`
	IncludeProcessed bool `json:"include_processed"`
	BatchSize        int  `json:"batch_size" binding:"omitempty,min=0,max=10000"`
	Workers          int  `json:"workers" binding:"omitempty,min=0,max=32"`
}

// TriggerGenerate handles POST /api/v1/projects/:project/phases/:phase/generate.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *GenerateHandler) TriggerGenerate(c *gin.Context) {
	ctx := c.Request.Context()

	phase, err := domain.ParsePhase(c.Param("phase"))
	if err != nil {
		writeError(c, err)
		return
	}
	projectID := c.Param("project")

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		logger.CtxWarn(ctx, "Invalid generate request: client_ip=%s, error=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.CtxInfo(ctx, "Received generate request: project=%s, phase=%s, force=%v, skip_existing=%v, include_processed=%v, client_ip=%s",
		projectID, phase, req.Force, req.SkipExisting, req.IncludeProcessed, c.ClientIP())

	result, err := h.orchestrator.Start(ctx, projectID, phase, service.RunOptions{
		Force:            req.Force,
		SkipExisting:     req.SkipExisting,
		IncludeProcessed: req.IncludeProcessed,
		BatchSize:        req.BatchSize,
		Workers:          req.Workers,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, result)
}

// GetStatus handles GET /api/v1/projects/:project/phases/:phase/status.
// A key with no recorded run reports the idle lifecycle with zero counters.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *GenerateHandler) GetStatus(c *gin.Context) {
	phase, err := domain.ParsePhase(c.Param("phase"))
	if err != nil {
		writeError(c, err)
		return
	}
	projectID := c.Param("project")

	state, ok := h.tracker.Snapshot(progress.Key(projectID, phase))
	if !ok {
		state = progress.State{
			ProjectID: projectID,
			Phase:     phase,
			Lifecycle: domain.LifecycleIdle,
		}
	}

	c.JSON(http.StatusOK, state)
}

// ListJobs handles GET /api/v1/projects/:project/phases/:phase/jobs.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *GenerateHandler) ListJobs(c *gin.Context) {
	phase, err := domain.ParsePhase(c.Param("phase"))
	if err != nil {
		writeError(c, err)
		return
	}
	projectID := c.Param("project")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 200 {
		limit = 20
	}

	jobs, err := h.jobs.ListByPhase(c.Request.Context(), projectID, phase, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

// parseListWindow reads limit/offset query params with list defaults.
func parseListWindow(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
