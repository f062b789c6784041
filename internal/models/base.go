package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantRecord is implemented by every entity owned by a tenant. The
// repositories use it to stamp ownership and bookkeeping timestamps.
type TenantRecord interface {
	RecordID() uuid.UUID
	AssignID(id uuid.UUID)
	OwnerTenant() uuid.UUID
	AssignTenant(tenantID uuid.UUID)
	SetCreated(t time.Time)
	SetUpdated(t time.Time)
}

// Base contains the columns shared by all tenant-owned tables
type Base struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TenantID  uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

func (b *Base) RecordID() uuid.UUID { return b.ID }

func (b *Base) AssignID(id uuid.UUID) { b.ID = id }

func (b *Base) OwnerTenant() uuid.UUID { return b.TenantID }

func (b *Base) AssignTenant(tenantID uuid.UUID) { b.TenantID = tenantID }

func (b *Base) SetCreated(t time.Time) { b.CreatedAt = t }

func (b *Base) SetUpdated(t time.Time) { b.UpdatedAt = &t }
