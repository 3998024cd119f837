package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/scheduler"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type EscalationHandler struct {
	scheduler *scheduler.EscalationScheduler
}

// NewEscalationHandler sets up the routing dependencies for on-demand scans
func NewEscalationHandler(s *scheduler.EscalationScheduler) *EscalationHandler {
	return &EscalationHandler{scheduler: s}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *EscalationHandler) RegisterRoutes(router *gin.RouterGroup) {
	operatorOnly := middleware.RequireRole(model.RoleOperator)

	escalations := router.Group("/api/escalations")
	{
		escalations.POST("/intake/scan", operatorOnly, h.RunIntakeScan)
		escalations.POST("/execution/scan", operatorOnly, h.RunExecutionScan)
	}
}

// RunIntakeScan handles POST /api/escalations/intake/scan
// @Summary      Run the intake breach scan now
// @Description  Reports unassigned requests older than the consideration window; returns the overdue count
// @Tags         escalations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/escalations/intake/scan [post]
func (h *EscalationHandler) RunIntakeScan(c *gin.Context) {
	count, err := h.scheduler.RunIntakeScan(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"overdue": count}))
}

// RunExecutionScan handles POST /api/escalations/execution/scan
// @Summary      Run the execution breach scan now
// @Description  Reports assigned, unfinished requests older than the execution window; returns the overdue count
// @Tags         escalations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/escalations/execution/scan [post]
func (h *EscalationHandler) RunExecutionScan(c *gin.Context) {
	count, err := h.scheduler.RunExecutionScan(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"overdue": count}))
}
