package models

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleAgencyStaff   Role = "AgencyStaff"
	RoleApplicant     Role = "Applicant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleAgencyStaff, RoleApplicant:
		return true
	}
	return false
}

type User struct {
	Base
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize in JSON
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Role         Role       `json:"role" db:"role"`
	AgencyID     *uuid.UUID `json:"agency_id,omitempty" db:"agency_id"`
	IsActive     bool       `json:"is_active" db:"is_active"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
