package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/softdelete"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type Service struct {
	records    repository.MedicalRecordRepository
	clinicians repository.ClinicianRepository
	patients   repository.PatientRepository
	deleter    *softdelete.Coordinator
}

func NewService(
	records repository.MedicalRecordRepository,
	clinicians repository.ClinicianRepository,
	patients repository.PatientRepository,
	deleter *softdelete.Coordinator,
) *Service {
	return &Service{
		records:    records,
		clinicians: clinicians,
		patients:   patients,
		deleter:    deleter,
	}
}

// Create writes a clinical note after verifying both referenced profiles
// exist. A clinician caller may only author records as themselves.
func (s *Service) Create(ctx context.Context, principal *model.Principal, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	if principal != nil && principal.Clinician != nil && principal.Clinician.ID != req.ClinicianID {
		return nil, apperrors.Forbidden("records may only be authored for the caller's own profile", nil)
	}

	if _, err := s.clinicians.Get(ctx, req.ClinicianID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to verify clinician: %w", err)
	}
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to verify patient: %w", err)
	}

	record := &model.MedicalRecord{
		ClinicianID: req.ClinicianID,
		PatientID:   req.PatientID,
		VisitDate:   req.VisitDate,
		Diagnosis:   req.Diagnosis,
		Treatment:   req.Treatment,
		Notes:       req.Notes,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}
	return record, nil
}

// Get returns the record with its clinician and patient hydrated.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecordDetail, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	clinician, err := s.clinicians.Get(ctx, record.ClinicianID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load clinician: %w", err)
	}
	patient, err := s.patients.Get(ctx, record.PatientID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}

	return &model.MedicalRecordDetail{
		MedicalRecord: *record,
		Clinician:     clinician,
		Patient:       patient,
	}, nil
}

// List scopes the result to the caller: a clinician sees only their own
// records, optionally narrowed to a single patient; everyone else with
// record:read sees all.
func (s *Service) List(ctx context.Context, principal *model.Principal, patientID *uuid.UUID) ([]*model.MedicalRecord, error) {
	if principal != nil && principal.Clinician != nil {
		return s.records.ListByClinician(ctx, principal.Clinician.ID, patientID)
	}
	if patientID != nil {
		return s.records.ListByPatient(ctx, *patientID)
	}
	return s.records.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicalRecordRequest) (*model.MedicalRecord, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.VisitDate != nil {
		record.VisitDate = *req.VisitDate
	}
	if req.Diagnosis != nil {
		record.Diagnosis = *req.Diagnosis
	}
	if req.Treatment != nil {
		record.Treatment = *req.Treatment
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	if err := s.records.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete soft-deletes the record only; the referenced profiles are never
// touched.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.records.Get(ctx, id); err != nil {
		return err
	}
	return s.deleter.DeleteMedicalRecord(ctx, id)
}
