package model

import (
	"github.com/google/uuid"
)

// ClinicianProfile holds the clinician-specific attributes for an account
// with the clinician role. Exactly one per such account.
type ClinicianProfile struct {
	Base
	AccountID     uuid.UUID `json:"account_id" db:"account_id"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Specialty     string    `json:"specialty" db:"specialty"`
	ContactNumber string    `json:"contact_number" db:"contact_number"`
}

type CreateClinicianRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
	Specialty     string `json:"specialty" binding:"required"`
	ContactNumber string `json:"contact_number" binding:"required"`
}

// UpdateClinicianRequest mutates only the fields explicitly supplied.
type UpdateClinicianRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Specialty     *string `json:"specialty"`
	ContactNumber *string `json:"contact_number"`
}

// ClinicianDetail is the get-by-id shape with the hydrated associations.
type ClinicianDetail struct {
	ClinicianProfile
	Account      *Account         `json:"account,omitempty"`
	Appointments []*Appointment   `json:"appointments,omitempty"`
	Records      []*MedicalRecord `json:"medical_records,omitempty"`
}
