package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateBuildingDTO struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat" binding:"required"`
	Lon         float64 `json:"lon" binding:"required"`
	Square      string  `json:"square" binding:"required"`
}

type EditBuildingDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Square      *string `json:"square"`
}

type BuildingResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Square      string  `json:"square"`
	CreatedAt   string  `json:"created_at"`
}

// --- Interface ---

// BuildingService administers the tenant boundary. All operations are
// operator-only, gated at the boundary.
type BuildingService interface {
	Create(ctx context.Context, req CreateBuildingDTO) (*BuildingResponse, error)
	List(ctx context.Context) ([]BuildingResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*BuildingResponse, error)
	Edit(ctx context.Context, id uuid.UUID, patch EditBuildingDTO) (*BuildingResponse, error)
}

type buildingService struct {
	repo repository.BuildingRepository
}

// NewBuildingService returns a new instance of BuildingService
func NewBuildingService(repo repository.BuildingRepository) BuildingService {
	return &buildingService{repo: repo}
}

// --- Implementation ---

func (s *buildingService) Create(ctx context.Context, req CreateBuildingDTO) (*BuildingResponse, error) {
	square, err := decimal.NewFromString(req.Square)
	if err != nil || square.IsNegative() {
		return nil, apperror.Validation("square must be a non-negative number")
	}

	building := &model.Building{
		Name:        req.Name,
		Description: req.Description,
		Lat:         req.Lat,
		Lon:         req.Lon,
		Square:      square,
	}
	if err := s.repo.Create(ctx, building); err != nil {
		return nil, fmt.Errorf("failed to create building: %w", err)
	}
	return mapBuildingResponse(building), nil
}

func (s *buildingService) List(ctx context.Context) ([]BuildingResponse, error) {
	buildings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	if len(buildings) == 0 {
		return nil, apperror.NotFound("no buildings have been created")
	}

	result := make([]BuildingResponse, 0, len(buildings))
	for i := range buildings {
		result = append(result, *mapBuildingResponse(&buildings[i]))
	}
	return result, nil
}

func (s *buildingService) Get(ctx context.Context, id uuid.UUID) (*BuildingResponse, error) {
	building, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapBuildingResponse(building), nil
}

func (s *buildingService) Edit(ctx context.Context, id uuid.UUID, patch EditBuildingDTO) (*BuildingResponse, error) {
	building, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Name != nil && *patch.Name != building.Name {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil && *patch.Description != building.Description {
		fields["description"] = *patch.Description
	}
	if patch.Square != nil {
		square, err := decimal.NewFromString(*patch.Square)
		if err != nil || square.IsNegative() {
			return nil, apperror.Validation("square must be a non-negative number")
		}
		if !square.Equal(building.Square) {
			fields["square"] = square
		}
	}
	if len(fields) == 0 {
		return mapBuildingResponse(building), nil
	}

	if _, err := s.repo.Updates(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to edit building: %w", err)
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapBuildingResponse(updated), nil
}

// --- Helpers ---

func (s *buildingService) find(ctx context.Context, id uuid.UUID) (*model.Building, error) {
	building, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("building %s not found", id)
		}
		return nil, fmt.Errorf("failed to load building: %w", err)
	}
	return building, nil
}

func mapBuildingResponse(building *model.Building) *BuildingResponse {
	return &BuildingResponse{
		ID:          building.ID.String(),
		Name:        building.Name,
		Description: building.Description,
		Lat:         building.Lat,
		Lon:         building.Lon,
		Square:      building.Square.StringFixed(2),
		CreatedAt:   building.CreatedAt.Format(time.RFC3339),
	}
}
