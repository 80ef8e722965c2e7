package appointment

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
	appointments repository.AppointmentRepository
	clinicians   repository.ClinicianRepository
	patients     repository.PatientRepository
	deleter      *softdelete.Coordinator
}

func NewService(
	appointments repository.AppointmentRepository,
	clinicians repository.ClinicianRepository,
	patients repository.PatientRepository,
	deleter *softdelete.Coordinator,
) *Service {
	return &Service{
		appointments: appointments,
		clinicians:   clinicians,
		patients:     patients,
		deleter:      deleter,
	}
}

// Create schedules an appointment after verifying both referenced profiles
// exist and are live; a missing or deleted reference surfaces as NotFound.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
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

	appointment := &model.Appointment{
		ClinicianID: req.ClinicianID,
		PatientID:   req.PatientID,
		ScheduledAt: req.ScheduledAt,
		Reason:      req.Reason,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return appointment, nil
}

// Get returns the appointment with its clinician and patient hydrated.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	clinician, err := s.clinicians.Get(ctx, appointment.ClinicianID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load clinician: %w", err)
	}
	patient, err := s.patients.Get(ctx, appointment.PatientID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}

	return &model.AppointmentDetail{
		Appointment: *appointment,
		Clinician:   clinician,
		Patient:     patient,
	}, nil
}

// List scopes the result to the caller: clinicians and patients see only
// their own appointments, everyone else with appointment:read sees all.
func (s *Service) List(ctx context.Context, principal *model.Principal) ([]*model.Appointment, error) {
	switch {
	case principal != nil && principal.Clinician != nil:
		return s.appointments.ListByClinician(ctx, principal.Clinician.ID)
	case principal != nil && principal.Patient != nil:
		return s.appointments.ListByPatient(ctx, principal.Patient.ID)
	default:
		return s.appointments.List(ctx)
	}
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ScheduledAt != nil {
		appointment.ScheduledAt = *req.ScheduledAt
	}
	if req.Reason != nil {
		appointment.Reason = *req.Reason
	}

	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Delete soft-deletes the appointment only; the referenced profiles are
// never touched.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.appointments.Get(ctx, id); err != nil {
		return err
	}
	return s.deleter.DeleteAppointment(ctx, id)
}
