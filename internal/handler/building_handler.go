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

type BuildingHandler struct {
	buildings service.BuildingService
}

// NewBuildingHandler sets up the routing dependencies for building endpoints
func NewBuildingHandler(buildings service.BuildingService) *BuildingHandler {
	return &BuildingHandler{buildings: buildings}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *BuildingHandler) RegisterRoutes(router *gin.RouterGroup) {
	operatorOnly := middleware.RequireRole(model.RoleOperator)

	buildings := router.Group("/api/buildings")
	{
		buildings.POST("", operatorOnly, h.CreateBuilding)
		buildings.GET("", operatorOnly, h.ListBuildings)
		buildings.GET("/:id", operatorOnly, h.GetBuilding)
		buildings.PATCH("/:id", operatorOnly, h.EditBuilding)
	}
}

// CreateBuilding handles POST /api/buildings
// @Summary      Create a building
// @Tags         buildings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateBuildingDTO  true  "Building data"
// @Success      201      {object}  response.Response{data=service.BuildingResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/buildings [post]
func (h *BuildingHandler) CreateBuilding(c *gin.Context) {
	var req service.CreateBuildingDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	building, err := h.buildings.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, building))
}

// ListBuildings handles GET /api/buildings
// @Summary      List buildings
// @Tags         buildings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/buildings [get]
func (h *BuildingHandler) ListBuildings(c *gin.Context) {
	buildings, err := h.buildings.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"buildings": buildings}))
}

// GetBuilding handles GET /api/buildings/:id
// @Summary      Get one building
// @Tags         buildings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Building ID"
// @Success      200  {object}  response.Response{data=service.BuildingResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/buildings/{id} [get]
func (h *BuildingHandler) GetBuilding(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid building id"))
		return
	}

	building, err := h.buildings.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, building))
}

// EditBuilding handles PATCH /api/buildings/:id
// @Summary      Edit a building
// @Tags         buildings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Building ID"
// @Param        payload  body      service.EditBuildingDTO  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.BuildingResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/buildings/{id} [patch]
func (h *BuildingHandler) EditBuilding(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid building id"))
		return
	}

	var patch service.EditBuildingDTO
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	if patch.Name == nil && patch.Description == nil && patch.Square == nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "The Name, Description and Square fields are empty"))
		return
	}

	building, err := h.buildings.Edit(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, building))
}
