package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignOnDraft(t *testing.T) {
	ctx := context.Background()
	store := newFakeRequestStore()
	requests := NewRequestService(store, nil)
	building := uuid.New()
	requester := requesterPrincipal(building)
	workerID := uuid.New()
	users := newFakeUserRepo(&model.User{ID: workerID, Email: "w@b.c", Role: model.RoleWorker, BuildingID: &building})
	assignments := NewAssignmentService(store, users, nil)

	id := seedRequest(t, store, requests, requester)

	var invalidState *apperror.InvalidStateError
	_, err := assignments.Assign(ctx, id, workerID, managerPrincipal(building))
	require.ErrorAs(t, err, &invalidState)
	assert.Equal(t, model.StatusDraft, invalidState.Status)

	stored, _ := store.FindByID(ctx, id)
	assert.Empty(t, stored.AssigneeID)
}

func TestAssignTenantMismatch(t *testing.T) {
	ctx := context.Background()
	store := newFakeRequestStore()
	requests := NewRequestService(store, nil)
	buildingA := uuid.New()
	buildingB := uuid.New()
	requester := requesterPrincipal(buildingA)
	workerID := uuid.New()
	users := newFakeUserRepo(&model.User{ID: workerID, Email: "w@b.c", Role: model.RoleWorker, BuildingID: &buildingB})
	assignments := NewAssignmentService(store, users, nil)

	id := seedRequest(t, store, requests, requester)
	_, err := requests.AdvanceStatus(ctx, id, requester)
	require.NoError(t, err)

	// Manager of A cannot hand the job to building B's worker.
	var validation *apperror.ValidationError
	_, err = assignments.Assign(ctx, id, workerID, managerPrincipal(buildingA))
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Detail, "tenant mismatch")

	// An operator is cross-building and may.
	view, err := assignments.Assign(ctx, id, workerID, operatorPrincipal())
	require.NoError(t, err)
	assert.Equal(t, workerID.String(), view.(OperatorView).AssigneeID)
}

func TestAssignOutOfScopeManager(t *testing.T) {
	ctx := context.Background()
	store := newFakeRequestStore()
	requests := NewRequestService(store, nil)
	building := uuid.New()
	requester := requesterPrincipal(building)
	otherBuilding := uuid.New()
	workerID := uuid.New()
	users := newFakeUserRepo(&model.User{ID: workerID, Email: "w@b.c", Role: model.RoleWorker, BuildingID: &otherBuilding})
	assignments := NewAssignmentService(store, users, nil)

	id := seedRequest(t, store, requests, requester)
	_, err := requests.AdvanceStatus(ctx, id, requester)
	require.NoError(t, err)

	var notFound *apperror.NotFoundError
	_, err = assignments.Assign(ctx, id, workerID, managerPrincipal(otherBuilding))
	require.ErrorAs(t, err, &notFound)
}

// Reassignment of an active request simply replaces the worker.
func TestReassignWhileActive(t *testing.T) {
	ctx := context.Background()
	store := newFakeRequestStore()
	requests := NewRequestService(store, nil)
	building := uuid.New()
	requester := requesterPrincipal(building)
	manager := managerPrincipal(building)
	firstWorker := uuid.New()
	secondWorker := uuid.New()
	users := newFakeUserRepo(
		&model.User{ID: firstWorker, Email: "w1@b.c", Role: model.RoleWorker, BuildingID: &building},
		&model.User{ID: secondWorker, Email: "w2@b.c", Role: model.RoleWorker, BuildingID: &building},
	)
	assignments := NewAssignmentService(store, users, nil)

	id := seedRequest(t, store, requests, requester)
	_, err := requests.AdvanceStatus(ctx, id, requester)
	require.NoError(t, err)

	_, err = assignments.Assign(ctx, id, firstWorker, manager)
	require.NoError(t, err)

	view, err := assignments.Assign(ctx, id, secondWorker, manager)
	require.NoError(t, err)
	assert.Equal(t, secondWorker.String(), view.(ManagerView).AssigneeID)
}

func TestAssignNonWorker(t *testing.T) {
	ctx := context.Background()
	store := newFakeRequestStore()
	requests := NewRequestService(store, nil)
	building := uuid.New()
	requester := requesterPrincipal(building)
	managerID := uuid.New()
	users := newFakeUserRepo(&model.User{ID: managerID, Email: "m@b.c", Role: model.RoleManager, BuildingID: &building})
	assignments := NewAssignmentService(store, users, nil)

	id := seedRequest(t, store, requests, requester)
	_, err := requests.AdvanceStatus(ctx, id, requester)
	require.NoError(t, err)

	var validation *apperror.ValidationError
	_, err = assignments.Assign(ctx, id, managerID, managerPrincipal(building))
	require.ErrorAs(t, err, &validation)
}
