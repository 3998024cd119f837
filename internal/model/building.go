package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Building is the tenant boundary: every request, requester, worker and
// manager belongs to exactly one building.
type Building struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Lat         float64         `gorm:"not null" json:"lat"`
	Lon         float64         `gorm:"not null" json:"lon"`
	Square      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"square"` // floor area, m2
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
