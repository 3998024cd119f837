package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"backend/internal/config"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- fakes ---

type fakeStore struct {
	requests []model.ServiceRequest
}

func (f *fakeStore) Insert(context.Context, *model.ServiceRequest) error { return nil }

func (f *fakeStore) FindByID(context.Context, uuid.UUID) (*model.ServiceRequest, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) Find(_ context.Context, filter repository.RequestFilter) ([]model.ServiceRequest, error) {
	var result []model.ServiceRequest
	for _, r := range f.requests {
		if filter.Unassigned != nil && *filter.Unassigned != (r.AssigneeID == "") {
			continue
		}
		if filter.ExcludeStatus != "" && r.Status == filter.ExcludeStatus {
			continue
		}
		if filter.CreatedBefore != nil && !r.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func (f *fakeStore) UpdateStatus(context.Context, uuid.UUID, string, string) (int64, error) {
	return 0, nil
}

func (f *fakeStore) UpdateContent(context.Context, uuid.UUID, map[string]interface{}) (int64, error) {
	return 0, nil
}

func (f *fakeStore) SetAssignee(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeUsers struct {
	byID map[uuid.UUID]*model.User
}

func (f *fakeUsers) Create(context.Context, *model.User) error { return nil }

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) ListByRole(_ context.Context, role string, buildingID *uuid.UUID) ([]model.User, error) {
	var result []model.User
	for _, user := range f.byID {
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

func (f *fakeUsers) CreateRefreshToken(context.Context, *model.RefreshToken) error { return nil }

func (f *fakeUsers) GetRefreshToken(context.Context, string) (*model.RefreshToken, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) DeleteRefreshToken(context.Context, string) error { return nil }

type sentMessage struct {
	Recipient string
	Subject   string
	Body      string
}

type recordingGateway struct {
	mu     sync.Mutex
	sent   []sentMessage
	failTo string // recipients matching this address error out
}

func (g *recordingGateway) Notify(_ context.Context, recipient, subject, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failTo != "" && recipient == g.failTo {
		return errors.New("smtp unavailable")
	}
	g.sent = append(g.sent, sentMessage{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

// --- tests ---

func testConfig() config.EscalationConfig {
	return config.EscalationConfig{
		ConsiderationWindow:   4 * time.Hour,
		ExecutionWindow:       24 * time.Hour,
		IntakeScanInterval:    time.Minute,
		ExecutionScanInterval: time.Minute,
	}
}

func TestIntakeScan(t *testing.T) {
	building := uuid.New()
	otherBuilding := uuid.New()
	manager := &model.User{ID: uuid.New(), Email: "manager@b.c", Role: model.RoleManager, BuildingID: &building}
	otherManager := &model.User{ID: uuid.New(), Email: "other@b.c", Role: model.RoleManager, BuildingID: &otherBuilding}

	store := &fakeStore{requests: []model.ServiceRequest{
		{
			ID:         uuid.New(),
			BuildingID: building,
			Title:      "Leak",
			Status:     model.StatusDraft,
			CreatedAt:  time.Now().Add(-5 * time.Hour), // past the window
		},
		{
			ID:         uuid.New(),
			BuildingID: building,
			Title:      "Noise",
			Status:     model.StatusDraft,
			CreatedAt:  time.Now().Add(-1 * time.Hour), // fresh
		},
	}}
	users := &fakeUsers{byID: map[uuid.UUID]*model.User{manager.ID: manager, otherManager.ID: otherManager}}
	gateway := &recordingGateway{}

	s := NewEscalationScheduler(store, users, gateway, testConfig())

	count, err := s.RunIntakeScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, gateway.sent, 1, "only the building's manager is warned")
	assert.Equal(t, "manager@b.c", gateway.sent[0].Recipient)
	assert.Equal(t, "Overdue request", gateway.sent[0].Subject)
	assert.Contains(t, gateway.sent[0].Body, "Leak")

	// A second scan re-reports: scans are stateless, delivery at-least-once.
	count, err = s.RunIntakeScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, gateway.sent, 2)
}

func TestIntakeScanSkipsAssigned(t *testing.T) {
	building := uuid.New()
	manager := &model.User{ID: uuid.New(), Email: "manager@b.c", Role: model.RoleManager, BuildingID: &building}

	store := &fakeStore{requests: []model.ServiceRequest{{
		ID:         uuid.New(),
		BuildingID: building,
		AssigneeID: uuid.NewString(),
		Title:      "Handled",
		Status:     model.StatusActive,
		CreatedAt:  time.Now().Add(-48 * time.Hour),
	}}}
	users := &fakeUsers{byID: map[uuid.UUID]*model.User{manager.ID: manager}}
	gateway := &recordingGateway{}

	s := NewEscalationScheduler(store, users, gateway, testConfig())
	count, err := s.RunIntakeScan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, gateway.sent)
}

func TestExecutionScan(t *testing.T) {
	building := uuid.New()
	workerID := uuid.New()
	worker := &model.User{ID: workerID, Email: "worker@b.c", Role: model.RoleWorker, BuildingID: &building}

	store := &fakeStore{requests: []model.ServiceRequest{
		{
			ID:         uuid.New(),
			BuildingID: building,
			AssigneeID: workerID.String(),
			Title:      "Slow job",
			Status:     model.StatusInProgress,
			CreatedAt:  time.Now().Add(-48 * time.Hour),
		},
		{
			ID:         uuid.New(),
			BuildingID: building,
			AssigneeID: workerID.String(),
			Title:      "Done job",
			Status:     model.StatusFinished,
			CreatedAt:  time.Now().Add(-48 * time.Hour),
		},
		{
			ID:         uuid.New(),
			BuildingID: building,
			Title:      "Unassigned",
			Status:     model.StatusActive,
			CreatedAt:  time.Now().Add(-48 * time.Hour),
		},
	}}
	users := &fakeUsers{byID: map[uuid.UUID]*model.User{workerID: worker}}
	gateway := &recordingGateway{}

	s := NewEscalationScheduler(store, users, gateway, testConfig())
	count, err := s.RunExecutionScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, gateway.sent, 1)
	assert.Equal(t, "worker@b.c", gateway.sent[0].Recipient)
	assert.Contains(t, gateway.sent[0].Body, "Slow job")
}

// A failing notification is logged and skipped; the scan still completes and
// reports the full overdue count.
func TestScanSurvivesNotificationFailure(t *testing.T) {
	buildingA := uuid.New()
	buildingB := uuid.New()
	managerA := &model.User{ID: uuid.New(), Email: "a@b.c", Role: model.RoleManager, BuildingID: &buildingA}
	managerB := &model.User{ID: uuid.New(), Email: "b@b.c", Role: model.RoleManager, BuildingID: &buildingB}

	store := &fakeStore{requests: []model.ServiceRequest{
		{ID: uuid.New(), BuildingID: buildingA, Title: "One", Status: model.StatusDraft, CreatedAt: time.Now().Add(-10 * time.Hour)},
		{ID: uuid.New(), BuildingID: buildingB, Title: "Two", Status: model.StatusDraft, CreatedAt: time.Now().Add(-10 * time.Hour)},
	}}
	users := &fakeUsers{byID: map[uuid.UUID]*model.User{managerA.ID: managerA, managerB.ID: managerB}}
	gateway := &recordingGateway{failTo: "a@b.c"}

	s := NewEscalationScheduler(store, users, gateway, testConfig())
	count, err := s.RunIntakeScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, gateway.sent, 1)
	assert.Equal(t, "b@b.c", gateway.sent[0].Recipient)
}

func TestOverlappingScanSkipped(t *testing.T) {
	s := NewEscalationScheduler(&fakeStore{}, &fakeUsers{}, &recordingGateway{}, testConfig())

	// Simulate a scan still in flight.
	require.True(t, s.intakeBusy.CompareAndSwap(false, true))
	count, err := s.RunIntakeScan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	s.intakeBusy.Store(false)

	// Once it finishes, scans run again.
	store := &fakeStore{requests: []model.ServiceRequest{{
		ID: uuid.New(), BuildingID: uuid.New(), Title: "Old", Status: model.StatusDraft,
		CreatedAt: time.Now().Add(-10 * time.Hour),
	}}}
	s = NewEscalationScheduler(store, &fakeUsers{}, &recordingGateway{}, testConfig())
	count, err = s.RunIntakeScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
