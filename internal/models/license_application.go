package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationStatusSubmitted ApplicationStatus = "Submitted"
	ApplicationStatusApproved  ApplicationStatus = "Approved"
	ApplicationStatusRejected  ApplicationStatus = "Rejected"
)

// LicenseApplication is the workflow unit reviewed by agency staff. It is
// never deleted so the review history stays auditable.
type LicenseApplication struct {
	Base
	ApplicationNumber string            `json:"application_number" db:"application_number"`
	LicenseType       string            `json:"license_type" db:"license_type"`
	Status            ApplicationStatus `json:"status" db:"status"`
	ApplicantID       uuid.UUID         `json:"applicant_id" db:"applicant_id"`
	AgencyID          uuid.UUID         `json:"agency_id" db:"agency_id"`
	ReviewerID        *uuid.UUID        `json:"reviewer_id,omitempty" db:"reviewer_id"`
	SubmittedAt       time.Time         `json:"submitted_at" db:"submitted_at"`
	ReviewedAt        *time.Time        `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ApprovedAt        *time.Time        `json:"approved_at,omitempty" db:"approved_at"`
	RejectedAt        *time.Time        `json:"rejected_at,omitempty" db:"rejected_at"`
	IssuedAt          *time.Time        `json:"issued_at,omitempty" db:"issued_at"`
	ReviewerNotes     *string           `json:"reviewer_notes,omitempty" db:"reviewer_notes"`
	RejectionReason   *string           `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ApplicationFee    decimal.Decimal   `json:"application_fee" db:"application_fee"`
	IsPaid            bool              `json:"is_paid" db:"is_paid"`
}

// ApplicationFilter narrows application listings. Zero values are ignored.
type ApplicationFilter struct {
	AgencyID    *uuid.UUID
	ApplicantID *uuid.UUID
	Status      ApplicationStatus
	Limit       int
	Offset      int
}
