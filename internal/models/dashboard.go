package models

import (
	"time"

	"github.com/google/uuid"
)

// DashboardStats is the per-tenant summary shown to agency staff
type DashboardStats struct {
	TenantID             uuid.UUID `json:"tenant_id"`
	PendingApplications  int       `json:"pending_applications"`
	ApprovedApplications int       `json:"approved_applications"`
	RejectedApplications int       `json:"rejected_applications"`
	ActiveLicenses       int       `json:"active_licenses"`
	ExpiredLicenses      int       `json:"expired_licenses"`
	ExpiringSoon         int       `json:"expiring_soon"`
	LastUpdated          time.Time `json:"last_updated"`
}
