package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestFilter selects requests for Find. Nil fields are ignored.
type RequestFilter struct {
	RequesterID   *uuid.UUID
	AssigneeID    *uuid.UUID
	BuildingID    *uuid.UUID
	ExcludeStatus string
	// Unassigned filters on assignee presence: true selects requests with an
	// empty assignee, false requests with one.
	Unassigned    *bool
	CreatedBefore *time.Time
}

// RequestStore is the persistence boundary for service requests. All status
// and assignee mutations are conditional: the update applies only when the
// persisted row still matches the state the caller observed, and the
// affected-row count tells the caller whether its guard held.
type RequestStore interface {
	Insert(ctx context.Context, req *model.ServiceRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	Find(ctx context.Context, filter RequestFilter) ([]model.ServiceRequest, error)
	// UpdateStatus advances id from the observed status to next. Returns the
	// number of rows modified (0 when the observed status no longer matches).
	UpdateStatus(ctx context.Context, id uuid.UUID, observed, next string) (int64, error)
	// UpdateContent patches title/description while the request is still a
	// draft. Returns 0 when the request left draft in the meantime.
	UpdateContent(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error)
	// SetAssignee binds a worker while the request is active. Returns 0 when
	// the request is no longer active.
	SetAssignee(ctx context.Context, id uuid.UUID, workerID uuid.UUID) (int64, error)
}

type requestStore struct {
	db *gorm.DB
}

// NewRequestStore returns a GORM-backed RequestStore
func NewRequestStore(db *gorm.DB) RequestStore {
	return &requestStore{db: db}
}

func (s *requestStore) Insert(ctx context.Context, req *model.ServiceRequest) error {
	return s.db.WithContext(ctx).Create(req).Error
}

func (s *requestStore) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := s.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *requestStore) Find(ctx context.Context, filter RequestFilter) ([]model.ServiceRequest, error) {
	query := s.db.WithContext(ctx).Model(&model.ServiceRequest{})

	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", filter.AssigneeID.String())
	}
	if filter.BuildingID != nil {
		query = query.Where("building_id = ?", *filter.BuildingID)
	}
	if filter.ExcludeStatus != "" {
		query = query.Where("status <> ?", filter.ExcludeStatus)
	}
	if filter.Unassigned != nil {
		if *filter.Unassigned {
			query = query.Where("assignee_id = ''")
		} else {
			query = query.Where("assignee_id <> ''")
		}
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	var requests []model.ServiceRequest
	if err := query.Order("created_at ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *requestStore) UpdateStatus(ctx context.Context, id uuid.UUID, observed, next string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Where("id = ? AND status = ?", id, observed).
		Update("status", next)
	return result.RowsAffected, result.Error
}

func (s *requestStore) UpdateContent(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Where("id = ? AND status = ?", id, model.StatusDraft).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (s *requestStore) SetAssignee(ctx context.Context, id uuid.UUID, workerID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Where("id = ? AND status = ?", id, model.StatusActive).
		Update("assignee_id", workerID.String())
	return result.RowsAffected, result.Error
}
