package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentService binds workers to active requests. Assignment is the only
// path by which a request gains an assignee. Reassigning an already-assigned
// active request is supported: the new worker simply replaces the old one.
type AssignmentService interface {
	Assign(ctx context.Context, requestID, workerID uuid.UUID, principal model.Principal) (RequestView, error)
}

type assignmentService struct {
	store repository.RequestStore
	users repository.UserRepository
	hub   Broadcaster
}

// NewAssignmentService returns a new instance of AssignmentService. hub may
// be nil.
func NewAssignmentService(store repository.RequestStore, users repository.UserRepository, hub Broadcaster) AssignmentService {
	return &assignmentService{store: store, users: users, hub: hub}
}

func (s *assignmentService) Assign(ctx context.Context, requestID, workerID uuid.UUID, principal model.Principal) (RequestView, error) {
	if principal.Role != model.RoleManager && principal.Role != model.RoleOperator {
		return nil, apperror.NotFound("request %s not found", requestID)
	}

	worker, err := s.users.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("worker %s not found", workerID)
		}
		return nil, fmt.Errorf("failed to load worker: %w", err)
	}
	if worker.Role != model.RoleWorker {
		return nil, apperror.Validation("user %s is not a worker", workerID)
	}

	request, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("request %s not found", requestID)
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	if principal.Role == model.RoleManager {
		if !principal.SameBuilding(request.BuildingID) {
			return nil, apperror.NotFound("request %s not found", requestID)
		}
		if worker.BuildingID == nil || *worker.BuildingID != *principal.BuildingID {
			return nil, apperror.Validation("tenant mismatch: worker belongs to a different building")
		}
	}

	if request.Status != model.StatusActive {
		return nil, apperror.InvalidState(request.Status, "request %s status is %s", requestID, request.Status)
	}

	rows, err := s.store.SetAssignee(ctx, requestID, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign worker: %w", err)
	}
	if rows == 0 {
		// The active guard did not hold; report the status we find now.
		current, err := s.store.FindByID(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload request: %w", err)
		}
		return nil, apperror.InvalidState(current.Status, "request %s status is %s", requestID, current.Status)
	}

	request.AssigneeID = workerID.String()
	emit(s.hub, Event{
		Type:       "request.assigned",
		RequestID:  request.ID.String(),
		BuildingID: request.BuildingID.String(),
		Status:     request.Status,
		AssigneeID: request.AssigneeID,
	})

	return ViewFor(request, principal.Role), nil
}
