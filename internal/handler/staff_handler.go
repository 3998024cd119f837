package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StaffHandler struct {
	users service.UserService
}

// NewStaffHandler sets up the routing dependencies for staff endpoints
func NewStaffHandler(users service.UserService) *StaffHandler {
	return &StaffHandler{users: users}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *StaffHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := router.Group("/api/staff")
	{
		staff.POST("/workers", middleware.RequireRole(model.RoleManager, model.RoleOperator), h.CreateWorker)
		staff.POST("/managers", middleware.RequireRole(model.RoleOperator), h.CreateManager)
		staff.GET("", middleware.RequireRole(model.RoleManager, model.RoleOperator), h.ListStaff)
	}
}

// CreateWorker handles POST /api/staff/workers
// @Summary      Register a worker
// @Description  Creates a worker account for a building; the submitted location must be within 100 m of the building
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateStaffRequest  true  "Worker data with location"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/staff/workers [post]
func (h *StaffHandler) CreateWorker(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "principal missing"))
		return
	}

	var req service.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.users.CreateWorker(c.Request.Context(), principal, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// CreateManager handles POST /api/staff/managers
// @Summary      Register a manager
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateStaffRequest  true  "Manager data"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/staff/managers [post]
func (h *StaffHandler) CreateManager(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "principal missing"))
		return
	}

	var req service.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.users.CreateManager(c.Request.Context(), principal, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// ListStaff handles GET /api/staff
// @Summary      List staff of a role
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Param        role  query     string  false  "Role to list (default worker)"
// @Success      200   {object}  response.Response
// @Router       /api/staff [get]
func (h *StaffHandler) ListStaff(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "principal missing"))
		return
	}

	users, err := h.users.ListStaff(c.Request.Context(), principal, c.Query("role"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"users": users}))
}
