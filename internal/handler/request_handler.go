package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	requests    service.RequestService
	assignments service.AssignmentService
}

// NewRequestHandler sets up the routing dependencies for request endpoints
func NewRequestHandler(requests service.RequestService, assignments service.AssignmentService) *RequestHandler {
	return &RequestHandler{requests: requests, assignments: assignments}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(model.RoleRequester, model.RoleWorker, model.RoleManager, model.RoleOperator)

	requests := router.Group("/api/requests")
	{
		requests.POST("", middleware.RequireRole(model.RoleRequester), h.CreateRequest)
		requests.GET("", anyRole, h.ListRequests)
		requests.GET("/:id", anyRole, h.GetRequest)
		requests.PATCH("/:id", middleware.RequireRole(model.RoleRequester), h.EditRequest)
		requests.PATCH("/:id/status", anyRole, h.AdvanceStatus)
		requests.PUT("/:id/assign", middleware.RequireRole(model.RoleManager, model.RoleOperator), h.AssignWorker)
	}
}

// CreateRequest handles POST /api/requests
// @Summary      Create a service request
// @Description  Creates a draft service request in the requester's building
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestDTO  true  "Request content"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "principal missing"))
		return
	}

	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	view, err := h.requests.Create(c.Request.Context(), principal, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, view))
}

// ListRequests handles GET /api/requests
// @Summary      List visible requests
// @Description  Lists requests visible to the caller's role; an empty result is reported as 404
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "principal missing"))
		return
	}

	views, err := h.requests.List(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"requests": views}))
}

// GetRequest handles GET /api/requests/:id
// @Summary      Get one request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "principal missing"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	view, err := h.requests.Get(c.Request.Context(), id, principal)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// EditRequest handles PATCH /api/requests/:id
// @Summary      Edit a draft request
// @Description  Updates title/description while the request is still a draft
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Request ID"
// @Param        payload  body      service.EditRequestDTO  true  "Fields to change"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id} [patch]
func (h *RequestHandler) EditRequest(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "principal missing"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	var patch service.EditRequestDTO
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	if patch.Title == nil && patch.Description == nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "The Title and Description fields are empty"))
		return
	}

	view, err := h.requests.Edit(c.Request.Context(), id, principal, patch)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// AdvanceStatus handles PATCH /api/requests/:id/status
// @Summary      Advance a request's status
// @Description  Moves the request one step along draft -> active -> in_progress -> finished
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/requests/{id}/status [patch]
func (h *RequestHandler) AdvanceStatus(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "principal missing"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	view, err := h.requests.AdvanceStatus(c.Request.Context(), id, principal)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

type assignWorkerRequest struct {
	WorkerID string `json:"worker_id" binding:"required"`
}

// AssignWorker handles PUT /api/requests/:id/assign
// @Summary      Assign a worker
// @Description  Binds a worker to an active request; reassignment while active is allowed
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Request ID"
// @Param        payload  body      assignWorkerRequest  true  "Worker"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/assign [put]
func (h *RequestHandler) AssignWorker(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "principal missing"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	var req assignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid worker id"))
		return
	}

	view, err := h.assignments.Assign(c.Request.Context(), id, workerID, principal)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}
