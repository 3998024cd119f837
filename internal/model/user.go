package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles. Requesters, workers and managers are bound to one building;
// operators span all buildings.
const (
	RoleRequester = "requester"
	RoleWorker    = "worker"
	RoleManager   = "manager"
	RoleOperator  = "operator"
)

// ValidRole reports whether role is one of the four known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleRequester, RoleWorker, RoleManager, RoleOperator:
		return true
	}
	return false
}

// User represents an account of any role. BuildingID is nil only for
// operators.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string         `gorm:"type:varchar(255);not null" json:"-"`
	Role       string         `gorm:"type:varchar(20);not null;index" json:"role"`
	BuildingID *uuid.UUID     `gorm:"type:uuid;index" json:"building_id,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// RefreshToken stores long-lived tokens allowing users to request new access
// tokens.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Principal is the resolved identity of the acting caller, extracted from a
// verified access token. BuildingID is nil for operators.
type Principal struct {
	ID         uuid.UUID
	Role       string
	BuildingID *uuid.UUID
}

// SameBuilding reports whether the principal's building matches id. Operators
// have no building and never match through this helper.
func (p Principal) SameBuilding(id uuid.UUID) bool {
	return p.BuildingID != nil && *p.BuildingID == id
}
