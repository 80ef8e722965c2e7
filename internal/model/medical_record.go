package model

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is a clinical note tied to one clinician and one patient.
// It is never cascade-deleted by account or profile deletion.
type MedicalRecord struct {
	Base
	ClinicianID uuid.UUID `json:"clinician_id" db:"clinician_id"`
	PatientID   uuid.UUID `json:"patient_id" db:"patient_id"`
	VisitDate   time.Time `json:"visit_date" db:"visit_date"`
	Diagnosis   string    `json:"diagnosis" db:"diagnosis"`
	Treatment   string    `json:"treatment" db:"treatment"`
	Notes       string    `json:"notes" db:"notes"`
}

type CreateMedicalRecordRequest struct {
	ClinicianID uuid.UUID `json:"clinician_id" binding:"required"`
	PatientID   uuid.UUID `json:"patient_id" binding:"required"`
	VisitDate   time.Time `json:"visit_date" binding:"required"`
	Diagnosis   string    `json:"diagnosis" binding:"required"`
	Treatment   string    `json:"treatment" binding:"required"`
	Notes       string    `json:"notes"`
}

// UpdateMedicalRecordRequest mutates only the fields explicitly supplied.
type UpdateMedicalRecordRequest struct {
	VisitDate *time.Time `json:"visit_date"`
	Diagnosis *string    `json:"diagnosis"`
	Treatment *string    `json:"treatment"`
	Notes     *string    `json:"notes"`
}

// MedicalRecordDetail is the get-by-id shape with the hydrated associations.
type MedicalRecordDetail struct {
	MedicalRecord
	Clinician *ClinicianProfile `json:"clinician,omitempty"`
	Patient   *PatientProfile   `json:"patient,omitempty"`
}
