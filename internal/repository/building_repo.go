package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BuildingRepository defines the interface for data access of Building entities
type BuildingRepository interface {
	Create(ctx context.Context, building *model.Building) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Building, error)
	List(ctx context.Context) ([]model.Building, error)
	Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error)
}

type buildingRepository struct {
	db *gorm.DB
}

// NewBuildingRepository returns a new instance of BuildingRepository
func NewBuildingRepository(db *gorm.DB) BuildingRepository {
	return &buildingRepository{db: db}
}

func (r *buildingRepository) Create(ctx context.Context, building *model.Building) error {
	return r.db.WithContext(ctx).Create(building).Error
}

func (r *buildingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Building, error) {
	var building model.Building
	if err := r.db.WithContext(ctx).First(&building, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &building, nil
}

func (r *buildingRepository) List(ctx context.Context) ([]model.Building, error) {
	var buildings []model.Building
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&buildings).Error; err != nil {
		return nil, err
	}
	return buildings, nil
}

func (r *buildingRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Building{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}
