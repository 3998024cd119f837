package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		from string
		next string
		ok   bool
	}{
		{StatusDraft, StatusActive, true},
		{StatusActive, StatusInProgress, true},
		{StatusInProgress, StatusFinished, true},
		{StatusFinished, "", false},
		{"bogus", "", false},
	}

	for _, tc := range cases {
		next, ok := NextStatus(tc.from)
		assert.Equal(t, tc.ok, ok, "from %q", tc.from)
		assert.Equal(t, tc.next, next, "from %q", tc.from)
	}
}

func TestStatusRankOrdering(t *testing.T) {
	assert.Less(t, StatusRank(StatusDraft), StatusRank(StatusActive))
	assert.Less(t, StatusRank(StatusActive), StatusRank(StatusInProgress))
	assert.Less(t, StatusRank(StatusInProgress), StatusRank(StatusFinished))
}

func TestSameBuilding(t *testing.T) {
	building := uuid.New()

	manager := Principal{Role: RoleManager, BuildingID: &building}
	assert.True(t, manager.SameBuilding(building))
	assert.False(t, manager.SameBuilding(uuid.New()))

	// Operators are cross-tenant and never claim a building.
	operator := Principal{Role: RoleOperator}
	assert.False(t, operator.SameBuilding(building))
}
