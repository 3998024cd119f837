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
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRequestDTO struct {
	Title       string `json:"title" binding:"required,min=2"`
	Description string `json:"description" binding:"required,min=5"`
}

type EditRequestDTO struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// --- Role-shaped views ---
//
// Each role sees a different slice of a request. The variants embed each
// other so the JSON output grows monotonically with privilege: workers
// additionally see the requester, managers the assignee, operators the
// building.

type RequestView interface {
	requestView()
}

type RequesterView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func (RequesterView) requestView() {}

type WorkerView struct {
	RequesterView
	RequesterID string `json:"requester_id"`
}

type ManagerView struct {
	WorkerView
	AssigneeID string `json:"assignee_id"`
}

type OperatorView struct {
	ManagerView
	BuildingID string `json:"building_id"`
}

// ViewFor shapes a request for the given role.
func ViewFor(req *model.ServiceRequest, role string) RequestView {
	base := RequesterView{
		ID:          req.ID.String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		CreatedAt:   req.CreatedAt.Format(time.RFC3339),
	}

	switch role {
	case model.RoleWorker:
		return WorkerView{RequesterView: base, RequesterID: req.RequesterID.String()}
	case model.RoleManager:
		return ManagerView{
			WorkerView: WorkerView{RequesterView: base, RequesterID: req.RequesterID.String()},
			AssigneeID: req.AssigneeID,
		}
	case model.RoleOperator:
		return OperatorView{
			ManagerView: ManagerView{
				WorkerView: WorkerView{RequesterView: base, RequesterID: req.RequesterID.String()},
				AssigneeID: req.AssigneeID,
			},
			BuildingID: req.BuildingID.String(),
		}
	default:
		return base
	}
}

// --- Interface ---

// RequestService is the request lifecycle engine: it validates transitions,
// enforces role and building scoping and shapes the role-appropriate view.
type RequestService interface {
	Create(ctx context.Context, principal model.Principal, req CreateRequestDTO) (RequestView, error)
	List(ctx context.Context, principal model.Principal) ([]RequestView, error)
	Get(ctx context.Context, id uuid.UUID, principal model.Principal) (RequestView, error)
	Edit(ctx context.Context, id uuid.UUID, principal model.Principal, patch EditRequestDTO) (RequestView, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, principal model.Principal) (RequestView, error)
}

type requestService struct {
	store repository.RequestStore
	hub   Broadcaster
}

// NewRequestService returns a new instance of RequestService. hub may be nil.
func NewRequestService(store repository.RequestStore, hub Broadcaster) RequestService {
	return &requestService{store: store, hub: hub}
}

// --- Implementation ---

func (s *requestService) Create(ctx context.Context, principal model.Principal, req CreateRequestDTO) (RequestView, error) {
	if principal.Role != model.RoleRequester {
		return nil, apperror.Validation("only requesters can create requests")
	}
	if len(req.Title) < 2 {
		return nil, apperror.Validation("title must be at least 2 characters")
	}
	if len(req.Description) < 5 {
		return nil, apperror.Validation("description must be at least 5 characters")
	}
	if principal.BuildingID == nil {
		return nil, apperror.Validation("requester is not attached to a building")
	}

	request := &model.ServiceRequest{
		BuildingID:  *principal.BuildingID,
		RequesterID: principal.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.StatusDraft,
	}
	if err := s.store.Insert(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return ViewFor(request, principal.Role), nil
}

func (s *requestService) List(ctx context.Context, principal model.Principal) ([]RequestView, error) {
	var filter repository.RequestFilter
	switch principal.Role {
	case model.RoleRequester:
		id := principal.ID
		filter.RequesterID = &id
	case model.RoleWorker:
		id := principal.ID
		filter.AssigneeID = &id
	case model.RoleManager:
		if principal.BuildingID == nil {
			return nil, apperror.NotFound("no requests")
		}
		filter.BuildingID = principal.BuildingID
		filter.ExcludeStatus = model.StatusDraft
	case model.RoleOperator:
		// no filter, all buildings
	default:
		return nil, apperror.Validation("unknown role %q", principal.Role)
	}

	requests, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	if len(requests) == 0 {
		// An empty result set is reported as an error, not an empty list.
		return nil, apperror.NotFound("no requests")
	}

	views := make([]RequestView, 0, len(requests))
	for i := range requests {
		views = append(views, ViewFor(&requests[i], principal.Role))
	}
	return views, nil
}

func (s *requestService) Get(ctx context.Context, id uuid.UUID, principal model.Principal) (RequestView, error) {
	request, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(request, principal) {
		return nil, apperror.NotFound("request %s not found", id)
	}
	return ViewFor(request, principal.Role), nil
}

func (s *requestService) Edit(ctx context.Context, id uuid.UUID, principal model.Principal, patch EditRequestDTO) (RequestView, error) {
	request, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != principal.ID {
		return nil, apperror.NotFound("request %s not found", id)
	}
	if request.Status != model.StatusDraft {
		return nil, apperror.InvalidState(request.Status, "request %s status is %s", id, request.Status)
	}

	fields := map[string]interface{}{}
	if patch.Title != nil && *patch.Title != request.Title {
		fields["title"] = *patch.Title
	}
	if patch.Description != nil && *patch.Description != request.Description {
		fields["description"] = *patch.Description
	}
	if len(fields) == 0 {
		// Nothing actually changed: an idempotent no-op, not an error.
		return ViewFor(request, principal.Role), nil
	}

	rows, err := s.store.UpdateContent(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to edit request: %w", err)
	}
	if rows == 0 {
		// The draft guard did not hold: the request advanced between our
		// read and the update.
		current, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperror.InvalidState(current.Status, "request %s status is %s", id, current.Status)
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return ViewFor(updated, principal.Role), nil
}

func (s *requestService) AdvanceStatus(ctx context.Context, id uuid.UUID, principal model.Principal) (RequestView, error) {
	request, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	// Scope before state: callers outside the request's scope learn nothing
	// beyond "not found".
	switch principal.Role {
	case model.RoleRequester:
		if request.RequesterID != principal.ID {
			return nil, apperror.NotFound("request %s not found", id)
		}
	case model.RoleWorker:
		if request.AssigneeID != principal.ID.String() {
			return nil, apperror.NotFound("request %s not found", id)
		}
	case model.RoleManager:
		if !principal.SameBuilding(request.BuildingID) {
			return nil, apperror.NotFound("request %s not found", id)
		}
	case model.RoleOperator:
		// cross-building
	default:
		return nil, apperror.Validation("unknown role %q", principal.Role)
	}

	if request.Status == model.StatusFinished {
		return nil, apperror.InvalidState(request.Status, "request %s is already finished", id)
	}

	switch principal.Role {
	case model.RoleRequester:
		if request.Status != model.StatusDraft {
			return nil, apperror.InvalidState(request.Status, "request %s is already active", id)
		}
	default:
		// Only the owning requester may submit a draft.
		if request.Status == model.StatusDraft {
			return nil, apperror.InvalidState(request.Status, "request %s is still a draft", id)
		}
	}

	next, ok := model.NextStatus(request.Status)
	if !ok {
		return nil, apperror.InvalidState(request.Status, "request %s cannot advance from %s", id, request.Status)
	}

	rows, err := s.store.UpdateStatus(ctx, id, request.Status, next)
	if err != nil {
		return nil, fmt.Errorf("failed to advance request: %w", err)
	}
	if rows == 0 {
		// Lost the race: someone advanced the request first. Re-read and
		// report the now-current status instead of pretending we won.
		current, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperror.InvalidState(current.Status, "request %s status is %s", id, current.Status)
	}

	request.Status = next
	emit(s.hub, Event{
		Type:       "request.status_changed",
		RequestID:  request.ID.String(),
		BuildingID: request.BuildingID.String(),
		Status:     next,
	})

	return ViewFor(request, principal.Role), nil
}

// --- Helpers ---

func (s *requestService) find(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	request, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("request %s not found", id)
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return request, nil
}

// visibleTo applies the role read-scope rules: requesters see their own
// requests, workers their assignments, managers everything non-draft in
// their building, operators everything.
func visibleTo(req *model.ServiceRequest, p model.Principal) bool {
	switch p.Role {
	case model.RoleRequester:
		return req.RequesterID == p.ID
	case model.RoleWorker:
		return req.AssigneeID == p.ID.String()
	case model.RoleManager:
		return p.SameBuilding(req.BuildingID) && req.Status != model.StatusDraft
	case model.RoleOperator:
		return true
	default:
		return false
	}
}
