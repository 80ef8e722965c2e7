package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment references exactly one clinician profile and one patient
// profile. It is never cascade-deleted by account or profile deletion.
type Appointment struct {
	Base
	ClinicianID uuid.UUID `json:"clinician_id" db:"clinician_id"`
	PatientID   uuid.UUID `json:"patient_id" db:"patient_id"`
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	Reason      string    `json:"reason" db:"reason"`
}

type CreateAppointmentRequest struct {
	ClinicianID uuid.UUID `json:"clinician_id" binding:"required"`
	PatientID   uuid.UUID `json:"patient_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Reason      string    `json:"reason"`
}

// UpdateAppointmentRequest mutates only the fields explicitly supplied.
type UpdateAppointmentRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Reason      *string    `json:"reason"`
}

// AppointmentDetail is the get-by-id shape with the hydrated associations.
type AppointmentDetail struct {
	Appointment
	Clinician *ClinicianProfile `json:"clinician,omitempty"`
	Patient   *PatientProfile   `json:"patient,omitempty"`
}
