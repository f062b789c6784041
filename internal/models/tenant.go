package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the isolation boundary: one government customer or deployment.
type Tenant struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Domain    string     `json:"domain" db:"domain"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}
