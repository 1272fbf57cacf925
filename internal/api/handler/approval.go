package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/draftline/draftline/internal/domain"
	"github.com/draftline/draftline/internal/logger"
	"github.com/draftline/draftline/internal/service"
)

// ApprovalHandler handles draft review endpoints.
type ApprovalHandler struct {
	approvals *service.ApprovalService
	logger    *logger.Logger
}

// NewApprovalHandler creates a new approval handler.
// Parameters:
//   - approvals: approval service instance.
//   - log: logger instance.
// Returns:
//   - *ApprovalHandler: initialized handler.
func NewApprovalHandler(approvals *service.ApprovalService, log *logger.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		approvals: approvals,
		logger:    log,
	}
}

// ModifyRequest represents the modify API request body.
type ModifyRequest struct {
	Body string `json:"body" binding:"required"`
}

// BulkResponse represents the bulk decision API response.
type BulkResponse struct {
	Affected int64 `json:"affected"`
}

// Approve handles POST /api/v1/records/:id/approve.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ApprovalHandler) Approve(c *gin.Context) {
	rec, err := h.approvals.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Reject handles POST /api/v1/records/:id/reject.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ApprovalHandler) Reject(c *gin.Context) {
	rec, err := h.approvals.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Modify handles POST /api/v1/records/:id/modify.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ApprovalHandler) Modify(c *gin.Context) {
	var req ModifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.approvals.Modify(c.Request.Context(), c.Param("id"), req.Body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ApproveAll handles POST /api/v1/projects/:project/phases/:phase/approve-all.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ApprovalHandler) ApproveAll(c *gin.Context) {
	h.bulk(c, domain.RecordStatusApproved)
}

// RejectAll handles POST /api/v1/projects/:project/phases/:phase/reject-all.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ApprovalHandler) RejectAll(c *gin.Context) {
	h.bulk(c, domain.RecordStatusRejected)
}

func (h *ApprovalHandler) bulk(c *gin.Context, to domain.RecordStatus) {
	ctx := c.Request.Context()

	phase, err := domain.ParsePhase(c.Param("phase"))
	if err != nil {
		writeError(c, err)
		return
	}
	projectID := c.Param("project")

	var affected int64
	if to == domain.RecordStatusApproved {
		affected, err = h.approvals.BulkApprove(ctx, projectID, phase)
	} else {
		affected, err = h.approvals.BulkReject(ctx, projectID, phase)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	logger.CtxInfo(ctx, "Bulk decision applied: project=%s, phase=%s, to=%s, affected=%d",
		projectID, phase, to, affected)
	c.JSON(http.StatusOK, BulkResponse{Affected: affected})
}

// ListRecords handles GET /api/v1/projects/:project/phases/:phase/records.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ApprovalHandler) ListRecords(c *gin.Context) {
	phase, err := domain.ParsePhase(c.Param("phase"))
	if err != nil {
		writeError(c, err)
		return
	}
	projectID := c.Param("project")

	var status domain.RecordStatus
	if s := c.Query("status"); s != "" {
		status = domain.RecordStatus(s)
		switch status {
		case domain.RecordStatusPending, domain.RecordStatusApproved, domain.RecordStatusRejected:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + s})
			return
		}
	}

	limit, offset := parseListWindow(c)
	records, err := h.approvals.List(c.Request.Context(), projectID, phase, status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list records: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}
