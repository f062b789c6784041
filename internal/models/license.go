package models

import (
	"time"

	"github.com/google/uuid"
)

type LicenseStatus string

const (
	LicenseStatusActive  LicenseStatus = "Active"
	LicenseStatusExpired LicenseStatus = "Expired"
	LicenseStatusRenewed LicenseStatus = "Renewed"
)

// License is the credential issued from an approved application.
type License struct {
	Base
	LicenseNumber string        `json:"license_number" db:"license_number"`
	Type          string        `json:"type" db:"type"`
	Status        LicenseStatus `json:"status" db:"status"`
	ApplicationID uuid.UUID     `json:"application_id" db:"application_id"`
	ApplicantID   uuid.UUID     `json:"applicant_id" db:"applicant_id"`
	AgencyID      uuid.UUID     `json:"agency_id" db:"agency_id"`
	IssuedBy      *uuid.UUID    `json:"issued_by,omitempty" db:"issued_by"`
	IssuedAt      time.Time     `json:"issued_at" db:"issued_at"`
	ExpiresAt     time.Time     `json:"expires_at" db:"expires_at"`
	RenewedAt     *time.Time    `json:"renewed_at,omitempty" db:"renewed_at"`
	Notes         *string       `json:"notes,omitempty" db:"notes"`
}

// DaysUntilExpiry truncates toward zero; negative once the license has lapsed.
func (l *License) DaysUntilExpiry(now time.Time) int {
	return int(l.ExpiresAt.Sub(now).Hours() / 24)
}

// IsExpired reports the derived expiry state. The stored status stays Active
// until something explicitly changes it.
func (l *License) IsExpired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// LicenseView is the API projection of a license with its derived expiry state.
type LicenseView struct {
	*License
	DaysUntilExpiry int  `json:"days_until_expiry"`
	Expired         bool `json:"is_expired"`
}

func (l *License) View(now time.Time) LicenseView {
	return LicenseView{License: l, DaysUntilExpiry: l.DaysUntilExpiry(now), Expired: l.IsExpired(now)}
}

type LicenseFilter struct {
	AgencyID    *uuid.UUID
	ApplicantID *uuid.UUID
	Status      LicenseStatus
	Limit       int
	Offset      int
}
