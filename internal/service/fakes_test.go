package service

import (
	"context"
	"sync"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeRequestStore is an in-memory RequestStore honoring the conditional
// update contract of the real one.
type fakeRequestStore struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*model.ServiceRequest

	// beforeUpdateStatus, when set, runs once inside the next UpdateStatus
	// call before the guard is evaluated. Lets tests lose the race on purpose.
	beforeUpdateStatus func(map[uuid.UUID]*model.ServiceRequest)
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: make(map[uuid.UUID]*model.ServiceRequest)}
}

func (f *fakeRequestStore) Insert(_ context.Context, req *model.ServiceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	stored := *req
	f.requests[req.ID] = &stored
	return nil
}

func (f *fakeRequestStore) FindByID(_ context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeRequestStore) Find(_ context.Context, filter repository.RequestFilter) ([]model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.ServiceRequest
	for _, r := range f.requests {
		if filter.RequesterID != nil && r.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.AssigneeID != nil && r.AssigneeID != filter.AssigneeID.String() {
			continue
		}
		if filter.BuildingID != nil && r.BuildingID != *filter.BuildingID {
			continue
		}
		if filter.ExcludeStatus != "" && r.Status == filter.ExcludeStatus {
			continue
		}
		if filter.Unassigned != nil && *filter.Unassigned != (r.AssigneeID == "") {
			continue
		}
		if filter.CreatedBefore != nil && !r.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (f *fakeRequestStore) UpdateStatus(_ context.Context, id uuid.UUID, observed, next string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.beforeUpdateStatus != nil {
		hook := f.beforeUpdateStatus
		f.beforeUpdateStatus = nil
		hook(f.requests)
	}
	stored, ok := f.requests[id]
	if !ok || stored.Status != observed {
		return 0, nil
	}
	stored.Status = next
	return 1, nil
}

func (f *fakeRequestStore) UpdateContent(_ context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.requests[id]
	if !ok || stored.Status != model.StatusDraft {
		return 0, nil
	}
	if title, ok := fields["title"].(string); ok {
		stored.Title = title
	}
	if description, ok := fields["description"].(string); ok {
		stored.Description = description
	}
	return 1, nil
}

func (f *fakeRequestStore) SetAssignee(_ context.Context, id uuid.UUID, workerID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.requests[id]
	if !ok || stored.Status != model.StatusActive {
		return 0, nil
	}
	stored.AssigneeID = workerID.String()
	return 1, nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*model.User
	refresh map[string]*model.RefreshToken
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		users:   make(map[uuid.UUID]*model.User),
		refresh: make(map[string]*model.RefreshToken),
	}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role string, buildingID *uuid.UUID) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.User
	for _, user := range f.users {
		if user.Role != role {
			continue
		}
		if buildingID != nil && (user.BuildingID == nil || *user.BuildingID != *buildingID) {
			continue
		}
		result = append(result, *user)
	}
	return result, nil
}

func (f *fakeUserRepo) CreateRefreshToken(_ context.Context, token *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	stored := *token
	f.refresh[token.Token] = &stored
	return nil
}

func (f *fakeUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.refresh[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.refresh, token)
	return nil
}

// fakeBuildingRepo is an in-memory BuildingRepository.
type fakeBuildingRepo struct {
	mu        sync.Mutex
	buildings map[uuid.UUID]*model.Building
}

func newFakeBuildingRepo(buildings ...*model.Building) *fakeBuildingRepo {
	repo := &fakeBuildingRepo{buildings: make(map[uuid.UUID]*model.Building)}
	for _, b := range buildings {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		repo.buildings[b.ID] = b
	}
	return repo
}

func (f *fakeBuildingRepo) Create(_ context.Context, building *model.Building) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if building.ID == uuid.Nil {
		building.ID = uuid.New()
	}
	if building.CreatedAt.IsZero() {
		building.CreatedAt = time.Now()
	}
	stored := *building
	f.buildings[building.ID] = &stored
	return nil
}

func (f *fakeBuildingRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Building, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.buildings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeBuildingRepo) List(_ context.Context) ([]model.Building, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Building
	for _, b := range f.buildings {
		result = append(result, *b)
	}
	return result, nil
}

func (f *fakeBuildingRepo) Updates(_ context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.buildings[id]
	if !ok {
		return 0, nil
	}
	if name, ok := fields["name"].(string); ok {
		stored.Name = name
	}
	if description, ok := fields["description"].(string); ok {
		stored.Description = description
	}
	if square, ok := fields["square"].(decimal.Decimal); ok {
		stored.Square = square
	}
	return 1, nil
}
