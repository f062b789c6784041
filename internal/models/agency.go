package models

// Agency is an issuing authority inside a tenant, e.g. a Department of Health.
// Code is unique per tenant and prefixes every license number the agency issues.
type Agency struct {
	Base
	Name        string  `json:"name" db:"name"`
	Code        string  `json:"code" db:"code"`
	Description *string `json:"description,omitempty" db:"description"`
	IsActive    bool    `json:"is_active" db:"is_active"`
}
