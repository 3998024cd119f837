package model

import (
	"time"

	"github.com/google/uuid"
)

// Request lifecycle stages. Transitions are forward-only and single-step:
// draft -> active -> in_progress -> finished.
const (
	StatusDraft      = "draft"
	StatusActive     = "active"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// NextStatus returns the stage that follows status. ok is false for finished
// and for unknown statuses.
func NextStatus(status string) (next string, ok bool) {
	switch status {
	case StatusDraft:
		return StatusActive, true
	case StatusActive:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusFinished, true
	}
	return "", false
}

// StatusRank maps a status to its position in the lifecycle, for ordering
// comparisons. Unknown statuses rank below draft.
func StatusRank(status string) int {
	switch status {
	case StatusDraft:
		return 1
	case StatusActive:
		return 2
	case StatusInProgress:
		return 3
	case StatusFinished:
		return 4
	}
	return 0
}

// ServiceRequest is a tenant-scoped maintenance request. AssigneeID is empty
// until a manager or operator binds a worker, and is stored as a plain string
// so unassigned rows are selectable with a simple equality check.
type ServiceRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BuildingID  uuid.UUID `gorm:"type:uuid;not null;index" json:"building_id"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index" json:"requester_id"`
	AssigneeID  string    `gorm:"type:varchar(36);not null;default:'';index" json:"assignee_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Status      string    `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
