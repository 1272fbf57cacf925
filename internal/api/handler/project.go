package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/draftline/draftline/internal/domain"
	"github.com/draftline/draftline/internal/logger"
	"github.com/draftline/draftline/internal/repository"
)

// ProjectHandler handles project and work-item endpoints.
type ProjectHandler struct {
	projects *repository.ProjectRepository
	items    *repository.WorkItemRepository
	logger   *logger.Logger
}

// NewProjectHandler creates a new project handler.
// Parameters:
//   - projects: project repository.
//   - items: work-item repository.
//   - log: logger instance.
// Returns:
//   - *ProjectHandler: initialized handler.
func NewProjectHandler(projects *repository.ProjectRepository, items *repository.WorkItemRepository, log *logger.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		items:    items,
		logger:   log,
	}
}

// CreateProjectRequest represents the project creation request body.
type CreateProjectRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required"`
	BrandVoice  string `json:"brand_voice"`
	Promotional bool   `json:"promotional"`
}

// AddItemsRequest represents the bulk work-item request body.
type AddItemsRequest struct {
	Items []AddItem `json:"items" binding:"required,min=1,max=1000,dive"`
}

// AddItem is one work item in a bulk add.
type AddItem struct {
	Ref     string `json:"ref" binding:"required"`
	Payload string `json:"payload"`
}

// CreateProject handles POST /api/v1/projects.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	project := &domain.Project{
		ID:          req.ID,
		Name:        req.Name,
		BrandVoice:  req.BrandVoice,
		Promotional: req.Promotional,
	}
	if err := h.projects.Create(ctx, project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project: " + err.Error()})
		return
	}

	logger.CtxInfo(ctx, "Project created: project=%s, name=%s, promotional=%v",
		project.ID, project.Name, project.Promotional)
	c.JSON(http.StatusCreated, project)
}

// GetProject handles GET /api/v1/projects/:project.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projects.GetByID(c.Request.Context(), c.Param("project"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// ListProjects handles GET /api/v1/projects.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	limit, offset := parseListWindow(c)
	projects, err := h.projects.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "count": len(projects)})
}

// AddItems handles POST /api/v1/projects/:project/phases/:phase/items.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ProjectHandler) AddItems(c *gin.Context) {
	ctx := c.Request.Context()

	phase, err := domain.ParsePhase(c.Param("phase"))
	if err != nil {
		writeError(c, err)
		return
	}
	projectID := c.Param("project")

	// Items attach to an existing project only.
	if _, err := h.projects.GetByID(ctx, projectID); err != nil {
		writeError(c, err)
		return
	}

	var req AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]domain.WorkItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.WorkItem{
			ID:        uuid.New().String(),
			ProjectID: projectID,
			Phase:     phase,
			Ref:       it.Ref,
			Payload:   it.Payload,
		})
	}

	if err := h.items.BulkCreate(ctx, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add items: " + err.Error()})
		return
	}

	logger.With(logger.Fields{
		logger.FieldCount: len(items),
	}).Info(ctx, "Work items added: project=%s, phase=%s", projectID, phase)
	c.JSON(http.StatusCreated, gin.H{"added": len(items)})
}

// ListItems handles GET /api/v1/projects/:project/phases/:phase/items.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ProjectHandler) ListItems(c *gin.Context) {
	phase, err := domain.ParsePhase(c.Param("phase"))
	if err != nil {
		writeError(c, err)
		return
	}
	projectID := c.Param("project")

	items, err := h.items.ListByPhase(c.Request.Context(), projectID, phase)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list items: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}
