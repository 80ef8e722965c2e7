package model

import (
	"time"

	"github.com/google/uuid"
)

// Gender values accepted on patient profiles
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// PatientProfile holds the patient-specific attributes for an account with
// the patient role. Exactly one per such account.
type PatientProfile struct {
	Base
	AccountID     uuid.UUID `json:"account_id" db:"account_id"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	DateOfBirth   time.Time `json:"date_of_birth" db:"date_of_birth"`
	Gender        string    `json:"gender" db:"gender"`
	ContactNumber string    `json:"contact_number" db:"contact_number"`
}

type CreatePatientRequest struct {
	Email         string    `json:"email" binding:"required,email"`
	Password      string    `json:"password" binding:"required,min=8"`
	FirstName     string    `json:"first_name" binding:"required"`
	LastName      string    `json:"last_name" binding:"required"`
	DateOfBirth   time.Time `json:"date_of_birth" binding:"required"`
	Gender        string    `json:"gender" binding:"required,oneof=male female other"`
	ContactNumber string    `json:"contact_number" binding:"required"`
}

// UpdatePatientRequest mutates only the fields explicitly supplied.
type UpdatePatientRequest struct {
	FirstName     *string    `json:"first_name"`
	LastName      *string    `json:"last_name"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Gender        *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	ContactNumber *string    `json:"contact_number"`
}

// PatientDetail is the get-by-id shape with the hydrated associations.
type PatientDetail struct {
	PatientProfile
	Account      *Account         `json:"account,omitempty"`
	Appointments []*Appointment   `json:"appointments,omitempty"`
	Records      []*MedicalRecord `json:"medical_records,omitempty"`
}
